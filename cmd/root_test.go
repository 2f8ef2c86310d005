package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cloudx/internal/probe"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

const testFixture = `
regions: [us-east-1, eu-west-1]
profiles: [default]
generate:
  - service: instances
    count: 12
    id: i-%03d
    name: web-%02d
    regions: [us-east-1, eu-west-1]
    attributes:
      state: [running, stopped]
      type: [t3.micro]
      zone: [a]
services:
  stacks:
    - id: network
      region: us-east-1
      attributes:
        status: UPDATE_COMPLETE
        outputs: '{"VpcId": "vpc-main", "Subnets": ["subnet-a"]}'
children:
  network:
    - {id: vpc-main, name: VPC}
    - {id: subnet-a, name: PublicSubnetA, parent: vpc-main}
`

type testEnv struct {
	dir         string
	configPath  string
	sessionPath string
}

// newTestEnv writes a config pointing at a latency-free fixture and a
// temporary session file, and stubs the terminal and network seams.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:         dir,
		configPath:  filepath.Join(dir, "config.yaml"),
		sessionPath: filepath.Join(dir, "sessions.yaml"),
	}
	fixturePath := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(testFixture), 0o600))

	cfg := fmt.Sprintf(`
fetch:
  fixture: %s
  watch_fixture: false
probe:
  timeout: 1s
  endpoints:
    us-east-1: http://east.invalid
    eu-west-1: http://west.invalid
session:
  file: %s
`, fixturePath, env.sessionPath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o600))

	origTerminal, origPinger := stdoutIsTerminal, newPinger
	stdoutIsTerminal = func() bool { return false }
	newPinger = func() probe.Pinger {
		return probe.PingFunc(func(context.Context, string) error { return nil })
	}
	t.Cleanup(func() {
		stdoutIsTerminal, newPinger = origTerminal, origPinger
	})
	return env
}

// resetFlags restores every flag of the command tree to its default so
// tests do not leak state through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the root command with args and the test config.
func runCLI(t *testing.T, env testEnv, stdin string, args ...string) runResult {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config-file", env.configPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "usage", err: flagError("bad %s", "flag"), want: 2},
		{name: "wrapped usage", err: fmt.Errorf("ctx: %w", usageError{err: errors.New("x")}), want: 2},
		{name: "runtime", err: errors.New("boom"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	res := runCLI(t, env, "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, settings.CliBinaryName+" "))
	assert.Contains(t, res.stdout, "commit")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	env := newTestEnv(t)
	res := runCLI(t, env, "", "list", "instances", "--bogus")
	require.Error(t, res.err)
	assert.Equal(t, 2, ExitCode(res.err))
}

func TestMissingConfigFile(t *testing.T) {
	env := newTestEnv(t)
	env.configPath = filepath.Join(env.dir, "missing.yaml")
	res := runCLI(t, env, "", "version")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "read config")
	assert.Equal(t, 1, ExitCode(res.err))
}

func TestValidOutput(t *testing.T) {
	require.NoError(t, validOutput("yaml", "table", "yaml"))
	err := validOutput("xml", "table", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table|yaml")
	assert.Equal(t, 2, ExitCode(err))
}

func TestResolveSnapshotSize(t *testing.T) {
	orig := termGetSize
	t.Cleanup(func() { termGetSize = orig })
	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	t.Setenv("COLUMNS", "")

	w, h := resolveSnapshotSize(0, 0)
	assert.Equal(t, defaultFallbackTermWidth, w)
	assert.Equal(t, 24, h)

	w, h = resolveSnapshotSize(90, 30)
	assert.Equal(t, 90, w)
	assert.Equal(t, 30, h)
}
