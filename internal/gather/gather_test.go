package gather

import (
	"context"
	"errors"
	"testing"
)

func TestAllTolerantOfPartialFailure(t *testing.T) {
	var a, b, c int

	failed := All(context.Background(),
		Piece{
			Name:  "a",
			Fetch: func(ctx context.Context) error { a = 1; return nil },
		},
		Piece{
			Name: "b",
			Fetch: func(ctx context.Context) error {
				b = 99 // partial write before the error
				return errors.New("backend down")
			},
			Fallback: func() { b = 0 },
		},
		Piece{
			Name:  "c",
			Fetch: func(ctx context.Context) error { c = 3; return nil },
		},
	)

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if a != 1 || c != 3 {
		t.Errorf("successful pieces: a=%d c=%d, want 1 and 3", a, c)
	}
	if b != 0 {
		t.Errorf("failed piece not defaulted: b=%d, want 0", b)
	}
}

func TestAllNoPieces(t *testing.T) {
	if failed := All(context.Background()); failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}
}

func TestAllFailureWithoutFallback(t *testing.T) {
	failed := All(context.Background(), Piece{
		Name:  "x",
		Fetch: func(ctx context.Context) error { return errors.New("boom") },
	})
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}
