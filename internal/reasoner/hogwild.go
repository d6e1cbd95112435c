package reasoner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runEpochParallel partitions the epoch's term order across workers that
// update the shared arena through compare-and-swap steps. Concurrent workers
// may read a slightly stale dot value; under the diminishing schedule the
// fixed point is unaffected, only the exact trajectory. This scheduler is
// never selected implicitly (see Config.Workers).
func (r *Reasoner) runEpochParallel(ctx context.Context) (float32, error) {
	if r.cfg.Shuffle {
		r.rng.Shuffle(len(r.order), func(i, j int) {
			r.order[i], r.order[j] = r.order[j], r.order[i]
		})
	}

	workers := r.cfg.Workers
	if workers > len(r.order) {
		workers = len(r.order)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(r.order) + workers - 1) / workers
	movements := make([]float32, workers)

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(r.order) {
			hi = len(r.order)
		}
		if lo >= hi {
			break
		}
		w := w
		part := r.order[lo:hi]
		g.Go(func() error {
			var movement float32
			for _, idx := range part {
				moved, err := r.visit(r.terms[idx])
				if err != nil {
					return err
				}
				movement += moved
			}
			movements[w] = movement
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total float32
	for _, m := range movements {
		total += m
	}
	return total, nil
}
