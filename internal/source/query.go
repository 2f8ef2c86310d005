package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrQueryFailed is returned when the backend reports a failed query.
var ErrQueryFailed = errors.New("query failed")

// QueryState is the state of an asynchronous query.
type QueryState string

const (
	QueryPending  QueryState = "pending"
	QueryComplete QueryState = "complete"
	QueryFailed   QueryState = "failed"
)

// QueryRequest starts a query against a service.
type QueryRequest struct {
	Service string
	Text    string
	// End bounds the queried time range; zero means now.
	End   time.Time
	Range time.Duration
}

// QueryResult is the answer to one poll.
type QueryResult[T any] struct {
	Status QueryState
	Rows   []T
	Reason string
}

// QueryClient starts and polls queries. Poll issues exactly one status
// request; the polling cadence belongs to the caller.
type QueryClient[T any] interface {
	StartQuery(ctx context.Context, req QueryRequest) (string, error)
	PollQuery(ctx context.Context, id string) (QueryResult[T], error)
}

// Query is a started query. It moves from QueryPending to QueryComplete (or
// QueryFailed) and never back.
type Query[T any] struct {
	ID      string
	Request QueryRequest
	State   QueryState
	Rows    []T
	Polls   int
	Err     error
}

// StartQuery submits req and returns a pending query.
func StartQuery[T any](ctx context.Context, c QueryClient[T], req QueryRequest) (*Query[T], error) {
	id, err := c.StartQuery(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	return &Query[T]{ID: id, Request: req, State: QueryPending}, nil
}

// Done reports whether the query left the pending state.
func (q *Query[T]) Done() bool {
	return q.State != QueryPending
}

// Apply records a poll result. Results arriving after the query finished
// are ignored.
func (q *Query[T]) Apply(res QueryResult[T]) {
	if q.Done() {
		return
	}
	q.Polls++
	switch res.Status {
	case QueryComplete:
		q.State = QueryComplete
		q.Rows = res.Rows
	case QueryFailed:
		q.State = QueryFailed
		q.Err = fmt.Errorf("%w: %s", ErrQueryFailed, res.Reason)
	}
}

// Poll issues one status request and applies the result.
func (q *Query[T]) Poll(ctx context.Context, c QueryClient[T]) error {
	if q.Done() {
		return q.Err
	}
	res, err := c.PollQuery(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("poll query %s: %w", q.ID, err)
	}
	q.Apply(res)
	return q.Err
}

// Await polls every interval until the query leaves the pending state or
// ctx is done.
func Await[T any](ctx context.Context, c QueryClient[T], q *Query[T], interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := q.Poll(ctx, c); err != nil || q.Done() {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
