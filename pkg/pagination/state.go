package pagination

import (
	"context"
	"errors"
)

// ErrExhausted is returned when a step is requested after the last page.
var ErrExhausted = errors.New("pagination exhausted")

// Continuable is implemented by page types that expose the server cursor.
// A nil continuation means no further pages exist.
type Continuable interface {
	Continuation() *string
}

// PageFunc fetches one page. continuation is nil for the first page.
type PageFunc[P Continuable] func(ctx context.Context, continuation *string) (P, error)

// State is the cursor of one listing run.
type State struct {
	// Continuation is sent with the next request. Nil before the first page.
	Continuation *string

	// Done is set once the last page was produced or a step failed.
	Done bool
}

// Start returns the initial state. A non-nil continuation resumes a listing
// from a token captured earlier.
func Start(continuation *string) State {
	return State{Continuation: cloneToken(continuation)}
}

// Step fetches the page addressed by state and returns the state for the
// following step. On error the returned state is Done and no page is produced.
// The last page is returned together with a Done state.
func Step[P Continuable](ctx context.Context, state State, fetch PageFunc[P]) (P, State, error) {
	var zero P

	if state.Done {
		return zero, state, ErrExhausted
	}

	page, err := fetch(ctx, cloneToken(state.Continuation))
	if err != nil {
		return zero, State{Continuation: state.Continuation, Done: true}, err
	}

	next := page.Continuation()
	if next == nil {
		return page, State{Done: true}, nil
	}

	return page, State{Continuation: cloneToken(next)}, nil
}

func cloneToken(token *string) *string {
	if token == nil {
		return nil
	}
	t := *token
	return &t
}
