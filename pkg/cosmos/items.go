package cosmos

import (
	"context"
	"iter"
)

// AllItems iterates the items of every remaining page of pager in order.
// A failed page is yielded as a zero item with the error and ends the
// iteration.
func AllItems[T any](ctx context.Context, pager *Pager[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page, err := range pager.Pages(ctx) {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
