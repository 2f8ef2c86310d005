package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedQueries struct {
	started  []QueryRequest
	results  []QueryResult[string]
	polls    int
	startErr error
}

func (s *scriptedQueries) StartQuery(_ context.Context, req QueryRequest) (string, error) {
	if s.startErr != nil {
		return "", s.startErr
	}
	s.started = append(s.started, req)
	return "q-1", nil
}

func (s *scriptedQueries) PollQuery(_ context.Context, id string) (QueryResult[string], error) {
	if id != "q-1" {
		return QueryResult[string]{}, errors.New("unknown query")
	}
	res := s.results[min(s.polls, len(s.results)-1)]
	s.polls++
	return res, nil
}

func TestQueryLifecycle(t *testing.T) {
	client := &scriptedQueries{results: []QueryResult[string]{
		{Status: QueryPending},
		{Status: QueryPending},
		{Status: QueryComplete, Rows: []string{"a", "b"}},
	}}
	ctx := context.Background()

	q, err := StartQuery[string](ctx, client, QueryRequest{Service: "logs", Text: "ERROR"})
	require.NoError(t, err)
	assert.Equal(t, QueryPending, q.State)
	assert.Equal(t, "q-1", q.ID)

	require.NoError(t, q.Poll(ctx, client))
	assert.False(t, q.Done())
	require.NoError(t, q.Poll(ctx, client))
	require.NoError(t, q.Poll(ctx, client))
	assert.True(t, q.Done())
	assert.Equal(t, QueryComplete, q.State)
	assert.Equal(t, []string{"a", "b"}, q.Rows)
	assert.Equal(t, 3, q.Polls)

	require.NoError(t, q.Poll(ctx, client))
	assert.Equal(t, 3, client.polls, "a finished query issues no more requests")
}

func TestQueryApplyAfterDone(t *testing.T) {
	q := &Query[string]{ID: "x", State: QueryPending}
	q.Apply(QueryResult[string]{Status: QueryComplete, Rows: []string{"one"}})
	q.Apply(QueryResult[string]{Status: QueryPending})
	q.Apply(QueryResult[string]{Status: QueryFailed, Reason: "late"})
	assert.Equal(t, QueryComplete, q.State)
	assert.Equal(t, []string{"one"}, q.Rows)
	assert.NoError(t, q.Err)
}

func TestQueryFailed(t *testing.T) {
	client := &scriptedQueries{results: []QueryResult[string]{{Status: QueryFailed, Reason: "syntax"}}}
	q, err := StartQuery[string](context.Background(), client, QueryRequest{})
	require.NoError(t, err)
	err = q.Poll(context.Background(), client)
	require.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "syntax")
}

func TestStartQueryError(t *testing.T) {
	boom := errors.New("throttled")
	_, err := StartQuery[string](context.Background(), &scriptedQueries{startErr: boom}, QueryRequest{})
	require.ErrorIs(t, err, boom)
}

func TestAwait(t *testing.T) {
	client := &scriptedQueries{results: []QueryResult[string]{
		{Status: QueryPending},
		{Status: QueryComplete, Rows: []string{"row"}},
	}}
	q, err := StartQuery[string](context.Background(), client, QueryRequest{})
	require.NoError(t, err)
	require.NoError(t, Await[string](context.Background(), client, q, time.Millisecond))
	assert.Equal(t, []string{"row"}, q.Rows)

	pending := &scriptedQueries{results: []QueryResult[string]{{Status: QueryPending}}}
	q, err = StartQuery[string](context.Background(), pending, QueryRequest{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Await[string](ctx, pending, q, time.Millisecond), context.DeadlineExceeded)
}
