// Package source defines the paginated data-source contract shared by every
// resource listing, and the loops that drive it.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/oakwood-commons/cloudx/internal/limiter"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// ErrCursorLoop is returned when a source hands back a cursor that was
// already followed.
var ErrCursorLoop = errors.New("data source repeated its cursor")

// Page is one response of a paginated listing. Next is nil on the last page.
type Page[T any] struct {
	Items []T
	Next  *string
}

// Fetcher lists one page starting at cursor. A nil cursor requests the first
// page; limit is a page-size hint and 0 lets the source choose.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, cursor *string, limit int) (Page[T], error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc[T any] func(ctx context.Context, cursor *string, limit int) (Page[T], error)

// Fetch calls f.
func (f FetchFunc[T]) Fetch(ctx context.Context, cursor *string, limit int) (Page[T], error) {
	return f(ctx, cursor, limit)
}

// FollowOptions tunes Follow.
type FollowOptions struct {
	// MaxItems stops the loop once this many items are accumulated and
	// truncates to it. Zero follows every page.
	MaxItems int
	// PageSize is passed to every Fetch call.
	PageSize int
	// Cursor starts the loop somewhere other than the first page.
	Cursor *string
}

// Collected is the outcome of Follow.
type Collected[T any] struct {
	Items []T
	Pages int
	// Truncated is set when the loop stopped at MaxItems with items or
	// pages left over.
	Truncated bool
}

// Follow calls f repeatedly, accumulating items while the returned cursor is
// non-nil. An error aborts the loop and no partial result is returned.
func Follow[T any](ctx context.Context, f Fetcher[T], opts FollowOptions) (Collected[T], error) {
	log := logger.FromContext(ctx).V(1)
	limit := limiter.Config{Limit: opts.MaxItems}

	var out Collected[T]
	cursor := opts.Cursor
	seen := map[string]bool{}
	if cursor != nil {
		seen[*cursor] = true
	}
	for {
		if err := ctx.Err(); err != nil {
			return Collected[T]{}, err
		}
		page, err := f.Fetch(ctx, cursor, opts.PageSize)
		if err != nil {
			return Collected[T]{}, fmt.Errorf("fetch page %d: %w", out.Pages+1, err)
		}
		out.Pages++
		out.Items = append(out.Items, page.Items...)
		log.Info("fetched page", "page", out.Pages, "items", len(page.Items), "total", len(out.Items))

		if limit.Exceeded(len(out.Items)) {
			out.Truncated = page.Next != nil || len(out.Items) > opts.MaxItems
			out.Items = limiter.Apply(limit, out.Items)
			return out, nil
		}
		if page.Next == nil {
			return out, nil
		}
		if seen[*page.Next] {
			return Collected[T]{}, fmt.Errorf("%w: %q", ErrCursorLoop, *page.Next)
		}
		seen[*page.Next] = true
		cursor = page.Next
	}
}

// Peek is what a minimal request at a cursor revealed.
type Peek struct {
	// Exists is false when the source handed out a cursor whose page is
	// empty.
	Exists bool
	Next   *string
}

// PeekNext issues a single request of page size 1 at cursor and returns
// only whether a page exists there and the cursor that follows it.
func PeekNext[T any](ctx context.Context, f Fetcher[T], cursor *string) (Peek, error) {
	page, err := f.Fetch(ctx, cursor, 1)
	if err != nil {
		return Peek{}, fmt.Errorf("peek next cursor: %w", err)
	}
	return Peek{Exists: len(page.Items) > 0, Next: page.Next}, nil
}

// Loaded is one page fetched by FetchPage.
type Loaded[T any] struct {
	Page    Page[T]
	HasNext bool
}

// FetchPage loads the page at cursor. With peek set, a non-nil next cursor
// is confirmed by PeekNext before HasNext is reported.
func FetchPage[T any](ctx context.Context, f Fetcher[T], cursor *string, pageSize int, peek bool) (Loaded[T], error) {
	page, err := f.Fetch(ctx, cursor, pageSize)
	if err != nil {
		return Loaded[T]{}, err
	}
	loaded := Loaded[T]{Page: page, HasNext: page.Next != nil}
	if peek && page.Next != nil {
		p, err := PeekNext(ctx, f, page.Next)
		if err != nil {
			return Loaded[T]{}, err
		}
		loaded.HasNext = p.Exists
	}
	return loaded, nil
}
