package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// ProcessBatch processes txns with up to the configured number of workers.
// Results keep input order. progress, when non-nil, is called once per
// processed transaction and may be called concurrently.
func (p *Pipeline) ProcessBatch(ctx context.Context, txns []model.Transaction, progress func()) ([]model.ProcessedTransaction, error) {
	results := make([]model.ProcessedTransaction, len(txns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range txns {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Process(txns[i])
			if progress != nil {
				progress()
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}
