// Package probe measures endpoint latency concurrently and picks the
// fastest candidate.
package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// Unreachable is the latency recorded for candidates that failed or timed
// out.
const Unreachable = time.Duration(math.MaxInt64)

// DefaultTimeout bounds each candidate when Options.Timeout is zero.
const DefaultTimeout = 2 * time.Second

// ErrNoCandidates is returned when there is nothing to probe.
var ErrNoCandidates = errors.New("no probe candidates")

// Candidate is one endpoint to measure.
type Candidate struct {
	Name     string
	Endpoint string
}

// Pinger performs one round trip to endpoint.
type Pinger interface {
	Ping(ctx context.Context, endpoint string) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context, endpoint string) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context, endpoint string) error { return f(ctx, endpoint) }

// HTTPPinger issues a HEAD request; any response counts as reachable.
type HTTPPinger struct {
	Client *http.Client
}

// Ping implements Pinger.
func (p HTTPPinger) Ping(ctx context.Context, endpoint string) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Result is the measurement of one candidate.
type Result struct {
	Candidate
	Latency time.Duration
	Err     error
}

// Reachable reports whether the candidate answered in time.
func (r Result) Reachable() bool { return r.Err == nil }

// String renders the latency or the failure.
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: unreachable (%v)", r.Name, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Name, r.Latency.Round(time.Millisecond))
}

// Options tunes Measure.
type Options struct {
	Timeout time.Duration
	Pinger  Pinger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Measure probes every candidate in its own goroutine, each bounded by the
// per-candidate timeout. Failures are recorded with Unreachable latency and
// never abort the other probes. Results keep candidate order.
func Measure(ctx context.Context, candidates []Candidate, opts Options) []Result {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Pinger == nil {
		opts.Pinger = HTTPPinger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := logger.FromContext(ctx)

	results := make([]Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, opts.Timeout)
			defer cancel()

			start := opts.Now()
			err := opts.Pinger.Ping(cctx, c.Endpoint)
			res := Result{Candidate: c, Latency: opts.Now().Sub(start)}
			if err == nil {
				err = cctx.Err()
			}
			if err != nil {
				res.Latency = Unreachable
				res.Err = err
				log.V(1).Info("probe failed", "candidate", c.Name, "error", err.Error())
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Fastest measures candidates and returns the quickest reachable one. When
// every candidate fails, the first candidate is returned with its error.
func Fastest(ctx context.Context, candidates []Candidate, opts Options) (Result, []Result, error) {
	if len(candidates) == 0 {
		return Result{}, nil, ErrNoCandidates
	}
	results := Measure(ctx, candidates, opts)
	ranked := Rank(results)
	best := ranked[0]
	if !best.Reachable() {
		return best, results, fmt.Errorf("all %d candidates unreachable: %w", len(results), best.Err)
	}
	return best, results, nil
}

// Rank returns results ordered by latency; ties keep candidate order.
func Rank(results []Result) []Result {
	ranked := append([]Result(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Latency < ranked[j].Latency
	})
	return ranked
}

// Candidates builds candidates from a name to endpoint map, ordered by
// names.
func Candidates(names []string, endpoints map[string]string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		if ep, ok := endpoints[n]; ok && ep != "" {
			out = append(out, Candidate{Name: n, Endpoint: ep})
		}
	}
	return out
}
