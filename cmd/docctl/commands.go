package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type serviceFactory func(ctx context.Context) (ports.DocumentService, func(), error)

type cli struct {
	open       serviceFactory
	out        io.Writer
	jsonOutput bool
}

func newRootCmd(open serviceFactory, out io.Writer) *cobra.Command {
	c := &cli{open: open, out: out}

	root := &cobra.Command{
		Use:           "docctl",
		Short:         "Operate the document classifier from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&c.jsonOutput, "json", "j", false, "Output as JSON")

	root.AddCommand(
		&cobra.Command{
			Use:   "upload <path>",
			Short: "Upload a txt, pdf, docx or xlsx document",
			Args:  cobra.ExactArgs(1),
			RunE:  c.upload,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored documents",
			Args:  cobra.NoArgs,
			RunE:  c.list,
		},
		&cobra.Command{
			Use:   "classify <document_id>",
			Short: "Classify a stored document and save its category",
			Args:  cobra.ExactArgs(1),
			RunE:  c.classify,
		},
		&cobra.Command{
			Use:   "delete <document_id>",
			Short: "Delete a stored document",
			Args:  cobra.ExactArgs(1),
			RunE:  c.delete,
		},
		&cobra.Command{
			Use:   "history <document_id>",
			Short: "Show the classification history of a document",
			Args:  cobra.ExactArgs(1),
			RunE:  c.history,
		},
	)
	return root
}

func (c *cli) withService(cmd *cobra.Command, fn func(ports.DocumentService) error) error {
	svc, closeFn, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

func (c *cli) upload(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if err := domain.ValidateUpload(name, info.Size()); err != nil {
		if errors.Is(err, domain.ErrTooLarge) {
			return fmt.Errorf("%s exceeds the %d byte limit", name, domain.MaxUploadBytes)
		}
		return fmt.Errorf("%s: only txt, pdf, docx and xlsx documents are allowed", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.withService(cmd, func(svc ports.DocumentService) error {
		doc, err := svc.Upload(cmd.Context(), name, info.Size(), f)
		if err != nil {
			return err
		}
		if c.jsonOutput {
			return c.printJSON(doc)
		}
		fmt.Fprintf(c.out, "Uploaded %s\n", doc.ID)
		return nil
	})
}

func (c *cli) list(cmd *cobra.Command, _ []string) error {
	return c.withService(cmd, func(svc ports.DocumentService) error {
		records, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if c.jsonOutput {
			return c.printJSON(records)
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOCUMENT\tSIZE\tCATEGORY\tLAST MODIFIED")
		for _, r := range records {
			category := r.Metadata[domain.MetaCategory]
			if category == "" {
				category = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Filename, r.Size, category, r.LastModified.Format(time.RFC3339))
		}
		return w.Flush()
	})
}

func (c *cli) classify(cmd *cobra.Command, args []string) error {
	return c.withService(cmd, func(svc ports.DocumentService) error {
		classification, err := svc.Classify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if c.jsonOutput {
			return c.printJSON(map[string]string{
				"document_id":       args[0],
				"detected_category": classification.Category,
				"route":             string(classification.Route),
			})
		}
		fmt.Fprintln(c.out, classification.Category)
		return nil
	})
}

func (c *cli) delete(cmd *cobra.Command, args []string) error {
	return c.withService(cmd, func(svc ports.DocumentService) error {
		deleted, err := svc.Delete(cmd.Context(), args[0])
		if !deleted {
			if err == nil {
				err = errors.New("document was not deleted")
			}
			return err
		}
		if c.jsonOutput {
			return c.printJSON(map[string]string{"message": "Document deleted"})
		}
		fmt.Fprintln(c.out, "Document deleted")
		return nil
	})
}

func (c *cli) history(cmd *cobra.Command, args []string) error {
	return c.withService(cmd, func(svc ports.DocumentService) error {
		records, err := svc.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if c.jsonOutput {
			return c.printJSON(records)
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLASSIFIED AT\tCATEGORY\tROUTE\tMODEL")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ClassifiedAt.Format(time.RFC3339), r.Category, r.Route, r.Model)
		}
		return w.Flush()
	})
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
