package corpus

import (
	"context"
	"iter"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

// Stats summarizes a training run.
type Stats struct {
	Authors      int64 `json:"authors"`
	Skipped      int64 `json:"skipped"`
	Observations int64 `json:"observations"`
}

// Trainer counts labeled names with a pool of workers. Each worker keeps
// its own Tally; the tallies are merged once all input is consumed.
type Trainer struct {
	parser  *authorname.Parser
	workers int
	logger  *zap.SugaredLogger
}

// NewTrainer creates a trainer. workers below 1 means one worker.
// If logger is provided, progress is logged; otherwise operates silently.
func NewTrainer(parser *authorname.Parser, workers int, logger *zap.SugaredLogger) *Trainer {
	if workers < 1 {
		workers = 1
	}
	return &Trainer{parser: parser, workers: workers, logger: logger}
}

// Tally consumes authors and returns the merged counts. The first read
// error or context cancellation aborts the run.
func (t *Trainer) Tally(ctx context.Context, authors iter.Seq2[Author, error]) (*authorname.Tally, Stats, error) {
	var stats Stats
	jobs := make(chan Author, t.workers*2)
	tallies := make([]*authorname.Tally, t.workers)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for a, err := range authors {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- a:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := range tallies {
		tally := authorname.NewTally()
		tallies[i] = tally
		g.Go(func() error {
			for a := range jobs {
				if a.Empty() {
					atomic.AddInt64(&stats.Skipped, 1)
					continue
				}
				n := t.parser.TallyName(tally, a.Given(), a.Family())
				atomic.AddInt64(&stats.Authors, 1)
				atomic.AddInt64(&stats.Observations, int64(n))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	merged := authorname.NewTally()
	for _, tally := range tallies {
		merged.Add(tally)
	}
	if t.logger != nil {
		t.logger.Infow("Corpus tallied",
			"authors", stats.Authors,
			"skipped", stats.Skipped,
			"observations", stats.Observations,
			"tokens", merged.Len(),
			"workers", t.workers,
		)
	}
	return merged, stats, nil
}

// Train tallies authors and loads the result into store in one call.
func (t *Trainer) Train(ctx context.Context, authors iter.Seq2[Author, error], store authorname.Store) (Stats, error) {
	tally, stats, err := t.Tally(ctx, authors)
	if err != nil {
		return stats, err
	}
	return stats, store.Load(tally.Rows())
}
