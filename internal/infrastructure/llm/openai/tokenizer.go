package openai

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is used when the model name is unknown to the tokenizer.
const DefaultEncoding = "o200k_base"

// Tokenizer converts between text and model tokens.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

var offlineLoader sync.Once

// Tiktoken is a BPE tokenizer backed by embedded vocabularies, so building
// one never touches the network.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken(model, fallbackEncoding string) (*Tiktoken, error) {
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return &Tiktoken{enc: enc}, nil
	}
	if fallbackEncoding == "" {
		fallbackEncoding = DefaultEncoding
	}
	enc, fallbackErr := tiktoken.GetEncoding(fallbackEncoding)
	if fallbackErr != nil {
		return nil, fmt.Errorf("load tokenizer for model %q: %w; fallback %q: %w", model, err, fallbackEncoding, fallbackErr)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
