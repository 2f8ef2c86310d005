package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
)

const testData = `
regions: [r1, r2]
profiles: [default]
page_size: 2
phantom: [tail]
generate:
  - service: gen
    count: 5
    id: g-%d
    name: gen-%d
    regions: [r1, r2]
    attributes:
      color: [red, blue]
services:
  tail:
    - {id: a}
    - {id: b}
children:
  g-1:
    - {id: c1}
events:
  g-1:
    - {time: "t", resource: g-1, status: OK}
queries:
  polls: 1
  rows:
    logs:
      - {id: "1", attributes: {message: disk full}}
      - {id: "2", attributes: {message: all good}}
`

func newTestSource(t *testing.T) *Source {
	t.Helper()
	s, err := Parse([]byte(testData))
	require.NoError(t, err)
	return s
}

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 25, 1000} {
		c := EncodeCursor(offset)
		got, err := DecodeCursor(&c)
		require.NoError(t, err)
		assert.Equal(t, offset, got)
	}
	got, err := DecodeCursor(nil)
	require.NoError(t, err)
	assert.Zero(t, got)

	for _, bad := range []string{"!!", "b2Zmc2V0", EncodeCursor(0)[:3]} {
		_, err := DecodeCursor(&bad)
		assert.ErrorIs(t, err, ErrBadCursor, bad)
	}
}

func TestGenerator(t *testing.T) {
	s := newTestSource(t)
	got, err := source.Follow(context.Background(), s.Resources("gen", "", ""), source.FollowOptions{})
	require.NoError(t, err)
	require.Len(t, got.Items, 5)
	assert.Equal(t, 3, got.Pages)

	first := got.Items[0]
	assert.Equal(t, "g-1", first.ID)
	assert.Equal(t, "gen-1", first.Name)
	assert.Equal(t, "r1", first.Region)
	assert.Equal(t, "red", first.Attributes["color"])
	assert.Equal(t, "arn:cloudx:gen:r1:g-1", first.ARN)
	assert.Equal(t, "blue", got.Items[1].Attributes["color"])
}

func TestResourcesByRegion(t *testing.T) {
	s := newTestSource(t)
	got, err := source.Follow(context.Background(), s.Resources("gen", "r2", ""), source.FollowOptions{})
	require.NoError(t, err)
	ids := make([]string, 0, len(got.Items))
	for _, it := range got.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"g-2", "g-4"}, ids)
}

func TestPhantomCursor(t *testing.T) {
	s := newTestSource(t)
	f := s.Resources("tail", "", "")

	loaded, err := source.FetchPage(context.Background(), f, nil, 2, false)
	require.NoError(t, err)
	assert.True(t, loaded.HasNext, "phantom services hand out a trailing cursor")

	loaded, err = source.FetchPage(context.Background(), f, nil, 2, true)
	require.NoError(t, err)
	assert.False(t, loaded.HasNext, "peeking sees the empty page")
}

func TestFailNext(t *testing.T) {
	s := newTestSource(t)
	s.FailNext(1)
	f := s.Resources("gen", "", "")
	_, err := f.Fetch(context.Background(), nil, 0)
	require.ErrorIs(t, err, ErrInjected)
	_, err = f.Fetch(context.Background(), nil, 0)
	require.NoError(t, err)
}

func TestChildrenAndEvents(t *testing.T) {
	s := newTestSource(t)
	children, err := source.Follow(context.Background(), s.Children("gen", "g-1"), source.FollowOptions{})
	require.NoError(t, err)
	assert.Equal(t, []resource.Item{{ID: "c1"}}, children.Items)

	events, err := source.Follow(context.Background(), s.Events("g-1"), source.FollowOptions{})
	require.NoError(t, err)
	assert.Len(t, events.Items, 1)

	none, err := source.Follow(context.Background(), s.Events("nope"), source.FollowOptions{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestQueries(t *testing.T) {
	s := newTestSource(t)
	ctx := context.Background()
	client := s.Queries("logs")

	q, err := source.StartQuery(ctx, client, source.QueryRequest{Service: "logs", Text: "DISK"})
	require.NoError(t, err)
	require.NoError(t, q.Poll(ctx, client))
	assert.Equal(t, source.QueryComplete, q.State)
	require.Len(t, q.Rows, 1)
	assert.Equal(t, "1", q.Rows[0].ID)

	q, err = source.StartQuery(ctx, client, source.QueryRequest{Service: "queues"})
	require.NoError(t, err)
	require.ErrorIs(t, q.Poll(ctx, client), source.ErrQueryFailed)

	_, err = client.PollQuery(ctx, "q-9999")
	require.Error(t, err)
}

func TestQueriesStayPending(t *testing.T) {
	s, err := New(Data{Queries: Queries{Polls: 3, Rows: map[string][]resource.Item{"logs": {{ID: "x"}}}}})
	require.NoError(t, err)
	ctx := context.Background()
	q, err := source.StartQuery(ctx, s.Queries("logs"), source.QueryRequest{Service: "logs"})
	require.NoError(t, err)
	require.NoError(t, source.Await(ctx, s.Queries("logs"), q, time.Millisecond))
	assert.Equal(t, 3, q.Polls)
	assert.Len(t, q.Rows, 1)
}

func TestDemo(t *testing.T) {
	s := Demo()
	assert.Equal(t, []string{"us-east-1", "us-west-2", "eu-west-1"}, s.Regions())
	catalog := resource.DefaultCatalog()
	for _, name := range catalog.Names() {
		assert.Contains(t, s.Services(), name, "demo data for %s", name)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testData), 0o600))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, s.Regions())

	require.NoError(t, os.WriteFile(path, []byte("regions: [r9]\nservices:\n  tail:\n    - {id: z}\n"), 0o600))
	require.NoError(t, s.Reload(path))
	assert.Equal(t, []string{"r9"}, s.Regions())
	got, err := source.Follow(context.Background(), s.Resources("tail", "", ""), source.FollowOptions{})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "z", got.Items[0].ID)

	require.NoError(t, os.WriteFile(path, []byte("regions: ["), 0o600))
	require.Error(t, s.Reload(path))
	assert.Equal(t, []string{"r9"}, s.Regions(), "a bad document keeps the old data")
}
