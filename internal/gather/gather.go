// Package gather runs N independent fetches concurrently and tolerates
// partial failure: a piece that errors falls back to its default instead of
// failing the whole assembly. Dashboard-style views join many independent
// reads; one slow or broken source should cost its own panel, not the page.
package gather

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Piece is one independent fetch. Fetch writes its result through a closure;
// Fallback (optional) resets that result to a safe default when Fetch fails.
type Piece struct {
	Name     string
	Fetch    func(ctx context.Context) error
	Fallback func()
}

// All runs every piece concurrently and waits for all of them. Failures are
// logged and defaulted, never returned; All itself cannot fail. The returned
// count is the number of pieces that fell back.
func All(ctx context.Context, pieces ...Piece) int {
	g := new(errgroup.Group)
	failed := make([]bool, len(pieces))

	for i, p := range pieces {
		i, p := i, p
		g.Go(func() error {
			if err := p.Fetch(ctx); err != nil {
				slog.Warn("gather: piece failed, using fallback",
					"piece", p.Name, "error", err)
				if p.Fallback != nil {
					p.Fallback()
				}
				failed[i] = true
			}
			return nil
		})
	}

	// Fetches never propagate errors, so Wait cannot fail.
	_ = g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return n
}
