package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreePathsFromStdin(t *testing.T) {
	env := newTestEnv(t)
	keys := "# routes\nGET /pets\nGET /pets/{id}\n\n/admin/users\n"
	res := runCLI(t, env, keys, "tree")
	require.NoError(t, res.err)

	assert.True(t, strings.HasPrefix(res.stdout, "."))
	assert.Contains(t, res.stdout, "pets (virtual)")
	assert.Contains(t, res.stdout, "{id} (virtual)")
	assert.Contains(t, res.stdout, "GET")
	assert.Contains(t, res.stdout, "admin (virtual)")
	assert.Contains(t, res.stdout, "users\n")
	assert.NotContains(t, res.stdout, "routes")
	assert.Empty(t, res.stderr)
}

func TestTreeParentsFromFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "items.yaml")
	input := `
- {id: vpc, name: VPC}
- {id: subnet, name: Subnet, parent: vpc}
- {id: vpc, name: Again}
- {id: orphan, parent: gone}
`
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	res := runCLI(t, env, "", "tree", "--kind", "parent", "--ids", path)
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "VPC [vpc]")
	assert.Contains(t, res.stdout, "Subnet [subnet]")
	assert.Contains(t, res.stdout, "gone (virtual)")
	assert.NotContains(t, res.stdout, "Again")
	assert.Contains(t, res.stderr, "warning: duplicate node id: vpc")
}

func TestTreeDepth(t *testing.T) {
	env := newTestEnv(t)
	res := runCLI(t, env, "/a/b/c\n", "tree", "--depth", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "a (virtual)")
	assert.Contains(t, res.stdout, "...")
	assert.NotContains(t, res.stdout, "c")
}

func TestTreeService(t *testing.T) {
	env := newTestEnv(t)
	res := runCLI(t, env, "", "tree", "--service", "stacks", "network")
	require.NoError(t, res.err)

	lines := strings.Split(res.stdout, "\n")
	assert.Equal(t, "network", lines[0])
	assert.Contains(t, res.stdout, "VPC")
	assert.Contains(t, res.stdout, "PublicSubnetA")
	assert.Less(t, strings.Index(res.stdout, "VPC"), strings.Index(res.stdout, "PublicSubnetA"))
}

func TestTreeErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		contains string
	}{
		{name: "bad kind", args: []string{"--kind", "graph"}, exitCode: 2, contains: "invalid --kind"},
		{name: "negative depth", args: []string{"--depth", "-2"}, exitCode: 2, contains: "--depth"},
		{name: "service without id", args: []string{"--service", "stacks"}, exitCode: 2, contains: "parent item id"},
		{name: "service without hierarchy", args: []string{"--service", "queues", "orders"}, exitCode: 1, contains: "no sub-resources"},
		{name: "missing file", args: []string{"does-not-exist.txt"}, exitCode: 1, contains: "open input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			res := runCLI(t, env, "", append([]string{"tree"}, tt.args...)...)
			require.Error(t, res.err)
			assert.Equal(t, tt.exitCode, ExitCode(res.err))
			assert.Contains(t, res.err.Error(), tt.contains)
		})
	}
}

func TestTreeParentsFromNDJSONStdin(t *testing.T) {
	env := newTestEnv(t)
	input := `{"id": "api", "sub_items": ["GET", "POST"]}
{"id": "v1", "parent": "api"}
`
	res := runCLI(t, env, input, "tree", "--kind", "parent")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "api")
	assert.Contains(t, res.stdout, "GET")
	assert.Contains(t, res.stdout, "POST")
	assert.Less(t, strings.Index(res.stdout, "POST"), strings.Index(res.stdout, "v1"))
}
