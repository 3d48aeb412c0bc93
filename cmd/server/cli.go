package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ZanzyTHEbar/glucoscreen/internal/analysis"
	"github.com/ZanzyTHEbar/glucoscreen/internal/config"
)

// trainedPipeline loads the configured dataset and trains a pipeline for a
// one-shot command
func trainedPipeline(ctx context.Context, cfg *config.Config) (*analysis.Pipeline, error) {
	p := analysis.NewPipeline(analysis.FileDataset(cfg.Data.DatasetPath), pipelineOptions(cfg))
	if err := initializePipeline(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
