package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/entity"
	"github.com/nflstats/predictor/internal/parser"
	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/pkg/metrics"
)

// ExtractSummary counts what an extraction run did.
type ExtractSummary struct {
	Documents int
	Parsed    int
	Skipped   int
	Rows      int
}

// Extractor turns stored box scores into the flat games table.
type Extractor interface {
	Extract(ctx context.Context) (ExtractSummary, error)
}

type extractorUseCase struct {
	docs   repository.DocumentRepository
	table  repository.GameTableRepository
	strict bool
	logger *zap.Logger
}

// NewExtractorUseCase creates a new instance of the extractor use case. In
// strict mode the first unreadable document aborts the run.
func NewExtractorUseCase(
	docs repository.DocumentRepository,
	table repository.GameTableRepository,
	strict bool,
	logger *zap.Logger,
) Extractor {
	return &extractorUseCase{
		docs:   docs,
		table:  table,
		strict: strict,
		logger: logger,
	}
}

// Extract parses every stored document and replaces the games table.
func (uc *extractorUseCase) Extract(ctx context.Context) (ExtractSummary, error) {
	var sum ExtractSummary

	names, err := uc.docs.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list documents: %w", err)
	}
	sum.Documents = len(names)

	var records []entity.GameRecord
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rows, err := uc.document(ctx, name)
		if err != nil {
			metrics.DocumentsParsedTotal.WithLabelValues("failure").Inc()
			if uc.strict {
				return sum, fmt.Errorf("document %s: %w", name, err)
			}
			sum.Skipped++
			uc.logger.Warn("skipping unreadable document", zap.String("name", name), zap.Error(err))
			continue
		}
		metrics.DocumentsParsedTotal.WithLabelValues("success").Inc()
		sum.Parsed++
		records = append(records, rows...)
	}

	if err := uc.table.Replace(ctx, records); err != nil {
		return sum, fmt.Errorf("write games table: %w", err)
	}
	sum.Rows = len(records)

	uc.logger.Info("extraction finished",
		zap.Int("documents", sum.Documents),
		zap.Int("parsed", sum.Parsed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("rows", sum.Rows),
	)
	return sum, nil
}

func (uc *extractorUseCase) document(ctx context.Context, name string) ([]entity.GameRecord, error) {
	date, err := entity.GameDateFromFilename(name)
	if err != nil {
		return nil, err
	}
	content, err := uc.docs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := parser.ParseBoxScore(content)
	if err != nil {
		return nil, err
	}

	season := entity.SeasonFor(date)
	records := make([]entity.GameRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, entity.GameRecord{
			Player: r.Player,
			Team:   r.Team,
			Stats:  r.Stats,
			Season: season,
			Date:   date,
		})
	}
	return records, nil
}
