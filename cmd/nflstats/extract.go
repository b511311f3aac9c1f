package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nflstats/predictor/internal/usecase"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Parse stored box scores into the games table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.extract(cmd.Context())
			return err
		},
	}
}

func (a *app) extract(ctx context.Context) (usecase.ExtractSummary, error) {
	docs, err := a.documents()
	if err != nil {
		return usecase.ExtractSummary{}, fmt.Errorf("failed to open document store: %w", err)
	}
	extractor := usecase.NewExtractorUseCase(docs, a.gameTable(), a.cfg.ExtractStrict, a.logger)
	return extractor.Extract(ctx)
}
