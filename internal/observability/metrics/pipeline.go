package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type pipeline struct {
	service string

	classificationsTotal *prometheus.CounterVec
	extractionFailures   *prometheus.CounterVec
	promptTokens         *prometheus.HistogramVec
	promptTruncated      *prometheus.CounterVec
}

func newPipeline(service string, factory promauto.Factory) pipeline {
	return pipeline{
		service: service,
		classificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classifier",
				Name:      "classifications_total",
				Help:      "Classification attempts by route and outcome.",
			},
			[]string{"service", "route", "outcome"},
		),
		extractionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extractor",
				Name:      "failures_total",
				Help:      "Text extraction failures by document format.",
			},
			[]string{"service", "format"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "prompt",
				Name:      "tokens",
				Help:      "Token count of built classification prompts.",
				Buckets:   []float64{64, 128, 256, 512, 1024, 2048, 4096, 8192},
			},
			[]string{"service"},
		),
		promptTruncated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "prompt",
				Name:      "truncated_total",
				Help:      "Prompts whose document text was truncated to fit the token budget.",
			},
			[]string{"service"},
		),
	}
}

func (p pipeline) ObserveClassification(route domain.ClassificationRoute, outcome string) {
	label := string(route)
	if label == "" {
		label = "unknown"
	}
	p.classificationsTotal.WithLabelValues(p.service, label, outcome).Inc()
}

func (p pipeline) ObserveExtractionFailure(format string) {
	if format == "" {
		format = "unknown"
	}
	p.extractionFailures.WithLabelValues(p.service, format).Inc()
}

func (p pipeline) ObservePrompt(tokens int, truncated bool) {
	p.promptTokens.WithLabelValues(p.service).Observe(float64(tokens))
	if truncated {
		p.promptTruncated.WithLabelValues(p.service).Inc()
	}
}
