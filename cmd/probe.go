package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cloudx/internal/probe"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var (
	probeOutput  string
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Measure latency to every region endpoint",
	Long: `Pings the probe.endpoints of every known region concurrently and prints
them fastest first. Unreachable regions are listed last.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() { //nolint:gochecknoinits
	f := probeCmd.Flags()
	f.StringVarP(&probeOutput, "output", "o", "table", "output format: table|yaml|json")
	f.DurationVar(&probeTimeout, "timeout", 0, "per-endpoint timeout (default: probe.timeout)")
}

func runProbe(cmd *cobra.Command, _ []string) error {
	if err := validOutput(probeOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	if probeTimeout < 0 {
		return flagError("--timeout must be non-negative, got %s", probeTimeout)
	}
	cfg := appConfig
	src, _, err := openBackend(cfg)
	if err != nil {
		return err
	}
	candidates := probe.Candidates(src.Regions(), cfg.Probe.Endpoints)
	if len(candidates) == 0 {
		return probe.ErrNoCandidates
	}
	timeout := probeTimeout
	if timeout == 0 {
		timeout = cfg.Probe.Timeout
	}

	ctx := cmd.Context()
	results := probe.Rank(probe.Measure(ctx, candidates, probe.Options{Timeout: timeout, Pinger: newPinger()}))
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		latency := r.Latency.Round(time.Millisecond).String()
		if !r.Reachable() {
			latency = "unreachable"
		}
		rows = append(rows, []string{r.Name, r.Endpoint, latency})
	}
	return writeRows(cmd.OutOrStdout(), []string{"region", "endpoint", "latency"}, rows, probeOutput, settings.FromContextOrDefault(ctx))
}
