package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/oakwood-commons/cloudx/internal/config"
	"github.com/oakwood-commons/cloudx/internal/probe"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/internal/source/fixture"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

const defaultFallbackTermWidth = 120

var (
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	termGetSize      = term.GetSize
	// newPinger builds the region probe's pinger; tests replace it.
	newPinger = func() probe.Pinger { return probe.HTTPPinger{} }
)

// openBackend loads --fixture, then fetch.fixture, falling back to the
// built-in demo data. The returned path is empty for the demo.
func openBackend(cfg config.Config) (*fixture.Source, string, error) {
	path := fixturePath
	if path == "" {
		path = cfg.Fetch.Fixture
	}
	if path == "" {
		return fixture.Demo(), "", nil
	}
	src, err := fixture.Load(path)
	if err != nil {
		return nil, "", err
	}
	return src, path, nil
}

func openSessions(cfg config.Config) (*session.Store, error) {
	path, err := cfg.SessionFile()
	if err != nil {
		return nil, fmt.Errorf("resolve session file: %w", err)
	}
	maxClosed := cfg.Session.MaxClosed
	if maxClosed <= 0 {
		maxClosed = session.DefaultMaxClosed
	}
	return session.NewStore(path, session.WithMaxClosed(maxClosed)), nil
}

// resolveRegion returns --region, or the fastest configured endpoint when
// probe.auto_select is on. An empty region lists every region.
func resolveRegion(ctx context.Context, cfg config.Config, regions []string) string {
	if region != "" || !cfg.Probe.AutoSelect {
		return region
	}
	log := logger.FromContext(ctx)
	best, _, err := probe.Fastest(ctx, probe.Candidates(regions, cfg.Probe.Endpoints), probe.Options{
		Timeout: cfg.Probe.Timeout,
		Pinger:  newPinger(),
	})
	if err != nil {
		log.Info("region probe failed, listing all regions", "error", err.Error())
		return ""
	}
	log.V(1).Info("selected region", "region", best.Name, "latency", best.Latency.String())
	return best.Name
}

func lookupService(catalog *resource.Catalog, name string) (resource.Service, error) {
	svc, ok := catalog.Get(name)
	if !ok {
		return resource.Service{}, fmt.Errorf("unknown service %q (known: %s)", name, strings.Join(catalog.Names(), ", "))
	}
	return svc, nil
}

// detectTerminalSize returns the terminal size, falling back to $COLUMNS
// and a generous default width.
func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := termGetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 0
}
