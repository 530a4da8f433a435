package refund

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EvaluateBatch assesses records in parallel with at most workers goroutines
// and returns assessments in input order. Records share nothing, so the only
// error is ctx cancellation.
func EvaluateBatch(ctx context.Context, e *Evaluator, records []TradeRecord, workers int) ([]Assessment, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Assessment, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Assess(rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts decisions in a batch.
type Summary struct {
	Total         int `json:"total"`
	Approved      int `json:"approved"`
	Denied        int `json:"denied"`
	Indeterminate int `json:"indeterminate"`
}

func Summarize(assessments []Assessment) Summary {
	s := Summary{Total: len(assessments)}
	for _, a := range assessments {
		switch a.Decision {
		case Approved:
			s.Approved++
		case Denied:
			s.Denied++
		default:
			s.Indeterminate++
		}
	}
	return s
}
