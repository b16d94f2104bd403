package pagination

import (
	"context"
	"iter"

	"github.com/rs/zerolog"
)

// Pager produces the pages of one listing lazily, one request per page.
// A Pager is not safe for concurrent use; run independent listings with
// separate pagers instead.
type Pager[P Continuable] struct {
	fetch  PageFunc[P]
	state  State
	pages  int
	logger zerolog.Logger
}

// Option configures a Pager.
type Option func(*options)

type options struct {
	continuation *string
	logger       zerolog.Logger
}

// WithContinuation resumes the listing at the given token instead of the
// first page.
func WithContinuation(token *string) Option {
	return func(o *options) {
		o.continuation = token
	}
}

// WithLogger sets the logger used for per-page debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewPager creates a pager over fetch.
func NewPager[P Continuable](fetch PageFunc[P], opts ...Option) *Pager[P] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pager[P]{
		fetch:  fetch,
		state:  Start(o.continuation),
		logger: o.logger,
	}
}

// More reports whether another page can be requested.
func (p *Pager[P]) More() bool {
	return !p.state.Done
}

// Continuation returns the token the next request will carry. It is nil before
// the first page of a fresh listing and after the last page. After a failed
// step it still holds the token of the page that failed, so the listing can be
// retried from there with a new Pager.
func (p *Pager[P]) Continuation() *string {
	return cloneToken(p.state.Continuation)
}

// NextPage fetches the next page. After the last page, or after any error,
// it returns ErrExhausted.
func (p *Pager[P]) NextPage(ctx context.Context) (P, error) {
	page, next, err := Step(ctx, p.state, p.fetch)
	if err != nil {
		if err != ErrExhausted {
			p.logger.Debug().
				Err(err).
				Int("page", p.pages+1).
				Msg("Page fetch failed, pagination stopped")
		}
		p.state = next
		return page, err
	}

	p.pages++
	p.state = next
	p.logger.Debug().
		Int("page", p.pages).
		Bool("more", !next.Done).
		Msg("Page fetched")

	return page, nil
}

// Pages returns an iterator over the remaining pages. Iteration stops after
// the last page or after yielding the first error. Breaking out of the loop
// abandons the listing; the pager keeps its position and can continue later.
func (p *Pager[P]) Pages(ctx context.Context) iter.Seq2[P, error] {
	return func(yield func(P, error) bool) {
		for p.More() {
			if err := ctx.Err(); err != nil {
				var zero P
				p.state.Done = true
				yield(zero, err)
				return
			}

			page, err := p.NextPage(ctx)
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the pager and returns every page in order. On error the
// pages fetched so far are returned together with the error.
func Collect[P Continuable](ctx context.Context, p *Pager[P]) ([]P, error) {
	var pages []P
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
