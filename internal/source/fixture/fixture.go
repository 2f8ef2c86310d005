// Package fixture serves resource listings from a static document through the
// source contracts. It backs the demo mode and the tests.
package fixture

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/pkg/loader"
)

//go:embed demo.yaml
var demoYAML []byte

// ErrInjected is returned by fetches failed through FailNext.
var ErrInjected = errors.New("injected fixture failure")

// ErrBadCursor is returned for cursors the fixture did not hand out.
var ErrBadCursor = errors.New("malformed cursor")

const defaultPageSize = 25

// Generator synthesizes Count items for a service. ID and Name are fmt
// patterns receiving the 1-based index; attribute values cycle by index.
type Generator struct {
	Service    string              `yaml:"service"`
	Count      int                 `yaml:"count"`
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	Regions    []string            `yaml:"regions,omitempty"`
	Attributes map[string][]string `yaml:"attributes,omitempty"`
}

// Queries describes the query backend.
type Queries struct {
	// Polls is how many polls a query stays pending before completing.
	Polls int                        `yaml:"polls"`
	Rows  map[string][]resource.Item `yaml:"rows"`
}

// Data is the YAML document a fixture is built from.
type Data struct {
	Regions   []string                    `yaml:"regions"`
	Profiles  []string                    `yaml:"profiles"`
	PageSize  int                         `yaml:"page_size,omitempty"`
	Services  map[string][]resource.Item  `yaml:"services"`
	Generate  []Generator                 `yaml:"generate,omitempty"`
	Children  map[string][]resource.Item  `yaml:"children,omitempty"`
	Events    map[string][]resource.Event `yaml:"events,omitempty"`
	Queries   Queries                     `yaml:"queries,omitempty"`
	// Phantom lists services whose last page still returns a cursor to an
	// empty page.
	Phantom []string `yaml:"phantom,omitempty"`
	// Latency delays every fetch.
	Latency time.Duration `yaml:"latency,omitempty"`
}

// Source serves a Data document. It is safe for concurrent use.
type Source struct {
	mu       sync.Mutex
	data     Data
	failNext int
	queries  map[string]*pendingQuery
	seq      int
}

type pendingQuery struct {
	req   source.QueryRequest
	polls int
}

// Parse decodes a fixture document.
func Parse(raw []byte) (*Source, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return New(data)
}

// Load reads a fixture document from path. Besides YAML, fixtures may be
// written as JSON or TOML.
func Load(path string) (*Source, error) {
	var data Data
	if err := loader.ReadFile(path, &data); err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return New(data)
}

// Demo returns the built-in demo fixture.
func Demo() *Source {
	s, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("fixture: invalid demo data: %v", err))
	}
	return s
}

// New expands generators and returns a source over data.
func New(data Data) (*Source, error) {
	if data.Services == nil {
		data.Services = make(map[string][]resource.Item)
	}
	for _, g := range data.Generate {
		items, err := g.items()
		if err != nil {
			return nil, err
		}
		data.Services[g.Service] = append(data.Services[g.Service], items...)
	}
	for service, items := range data.Services {
		for i := range items {
			if items[i].ARN == "" {
				items[i].ARN = arn(service, items[i].Region, items[i].ID)
			}
		}
	}
	return &Source{data: data, queries: make(map[string]*pendingQuery)}, nil
}

func (g Generator) items() ([]resource.Item, error) {
	if g.Service == "" || g.ID == "" {
		return nil, fmt.Errorf("generator needs a service and an id pattern")
	}
	if g.Count < 0 {
		return nil, fmt.Errorf("generator %s: negative count", g.Service)
	}
	keys := make([]string, 0, len(g.Attributes))
	for k := range g.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]resource.Item, 0, g.Count)
	for i := 0; i < g.Count; i++ {
		item := resource.Item{ID: fmt.Sprintf(g.ID, i+1)}
		if g.Name != "" {
			item.Name = fmt.Sprintf(g.Name, i+1)
		}
		if len(g.Regions) > 0 {
			item.Region = g.Regions[i%len(g.Regions)]
		}
		if len(keys) > 0 {
			item.Attributes = make(map[string]string, len(keys))
			for _, k := range keys {
				if vals := g.Attributes[k]; len(vals) > 0 {
					item.Attributes[k] = vals[i%len(vals)]
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func arn(service, region, id string) string {
	return fmt.Sprintf("arn:cloudx:%s:%s:%s", service, region, id)
}

func (s *Source) snapshot() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Reload replaces the served document with the one at path. Listings
// already started finish on the data they began with.
func (s *Source) Reload(path string) error {
	next, err := Load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next.data
	return nil
}

// Regions returns the configured regions.
func (s *Source) Regions() []string { return append([]string(nil), s.snapshot().Regions...) }

// Profiles returns the configured profiles.
func (s *Source) Profiles() []string { return append([]string(nil), s.snapshot().Profiles...) }

// Services returns the names of services with data, sorted.
func (s *Source) Services() []string {
	d := s.snapshot()
	names := make([]string, 0, len(d.Services))
	for name := range d.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FailNext makes the next n fetches, polls or query starts fail with
// ErrInjected.
func (s *Source) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *Source) injected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return ErrInjected
	}
	return nil
}

// Resources lists a service's items in region. An empty region lists every
// region; profiles do not partition fixture data.
func (s *Source) Resources(service, region, _ string) source.Fetcher[resource.Item] {
	d := s.snapshot()
	all := d.Services[service]
	items := all
	if region != "" {
		items = make([]resource.Item, 0, len(all))
		for _, it := range all {
			if it.Region == "" || it.Region == region {
				items = append(items, it)
			}
		}
	}
	return pages(s, d, items, slices.Contains(d.Phantom, service))
}

// Children lists the sub-resources of the item with id.
func (s *Source) Children(_, id string) source.Fetcher[resource.Item] {
	d := s.snapshot()
	return pages(s, d, d.Children[id], false)
}

// Events lists the events recorded for the item with id.
func (s *Source) Events(id string) source.Fetcher[resource.Event] {
	d := s.snapshot()
	return pages(s, d, d.Events[id], false)
}

func pages[T any](s *Source, d Data, items []T, phantom bool) source.Fetcher[T] {
	return source.FetchFunc[T](func(ctx context.Context, cursor *string, limit int) (source.Page[T], error) {
		if err := wait(ctx, d.Latency); err != nil {
			return source.Page[T]{}, err
		}
		if err := s.injected(); err != nil {
			return source.Page[T]{}, err
		}
		offset, err := DecodeCursor(cursor)
		if err != nil {
			return source.Page[T]{}, err
		}
		if limit <= 0 {
			limit = pageSize(d)
		}
		start := min(offset, len(items))
		end := min(start+limit, len(items))
		page := source.Page[T]{Items: append([]T(nil), items[start:end]...)}
		if end < len(items) || (phantom && end == len(items) && start < end) {
			next := EncodeCursor(end)
			page.Next = &next
		}
		return page, nil
	})
}

func pageSize(d Data) int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return defaultPageSize
}

func wait(ctx context.Context, latency time.Duration) error {
	if latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// EncodeCursor returns the opaque cursor for an offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte("offset:" + strconv.Itoa(offset)))
}

// DecodeCursor returns the offset a cursor points at; nil is offset 0.
func DecodeCursor(cursor *string) (int, error) {
	if cursor == nil {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(*cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	n, ok := strings.CutPrefix(string(raw), "offset:")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, *cursor)
	}
	offset, err := strconv.Atoi(n)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, *cursor)
	}
	return offset, nil
}

// Queries returns the query client. Every service shares it.
func (s *Source) Queries(string) source.QueryClient[resource.Item] { return s }

// StartQuery implements source.QueryClient.
func (s *Source) StartQuery(ctx context.Context, req source.QueryRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.injected(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("q-%04d", s.seq)
	s.queries[id] = &pendingQuery{req: req}
	return id, nil
}

// PollQuery implements source.QueryClient.
func (s *Source) PollQuery(ctx context.Context, id string) (source.QueryResult[resource.Item], error) {
	if err := ctx.Err(); err != nil {
		return source.QueryResult[resource.Item]{}, err
	}
	if err := s.injected(); err != nil {
		return source.QueryResult[resource.Item]{}, err
	}
	s.mu.Lock()
	q, ok := s.queries[id]
	if ok {
		q.polls++
	}
	s.mu.Unlock()
	if !ok {
		return source.QueryResult[resource.Item]{}, fmt.Errorf("unknown query %s", id)
	}

	d := s.snapshot()
	rows, ok := d.Queries.Rows[q.req.Service]
	switch {
	case !ok:
		return source.QueryResult[resource.Item]{Status: source.QueryFailed, Reason: "no query data for " + q.req.Service}, nil
	case q.polls < d.Queries.Polls:
		return source.QueryResult[resource.Item]{Status: source.QueryPending}, nil
	}
	return source.QueryResult[resource.Item]{Status: source.QueryComplete, Rows: matchRows(rows, q.req.Text)}, nil
}

func matchRows(rows []resource.Item, text string) []resource.Item {
	text = strings.ToLower(strings.TrimSpace(text))
	out := make([]resource.Item, 0, len(rows))
	for _, r := range rows {
		if text == "" ||
			strings.Contains(strings.ToLower(r.FilterText()), text) ||
			strings.Contains(strings.ToLower(r.Attributes["message"]), text) {
			out = append(out, r)
		}
	}
	return out
}
