package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/formatter"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/pkg/loader"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

var (
	treeKind    string
	treeDepth   int
	treeIDs     bool
	treeService string
)

var treeCmd = &cobra.Command{
	Use:   "tree [file|item-id]",
	Short: "Print a resource hierarchy",
	Long: `Builds a hierarchy and prints it as a tree.

With --kind path every input line is a key such as "GET /pets/{id}"; with
--kind parent the input is a list of items with id, name and parent in
YAML, JSON, NDJSON or TOML.
Input is read from the file argument or stdin. With --service the argument
is an item id whose sub-resources are fetched instead.`,
	Example: `  printf 'GET /pets\nGET /pets/{id}\n' | cloudx tree
  cloudx tree --kind parent resources.yaml
  cloudx tree --service stacks network-stack`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() { //nolint:gochecknoinits
	f := treeCmd.Flags()
	f.StringVar(&treeKind, "kind", string(resource.HierarchyPath), "hierarchy kind of the input: path|parent")
	f.IntVar(&treeDepth, "depth", 0, "limit tree depth (0 = unlimited)")
	f.BoolVar(&treeIDs, "ids", false, "show node ids next to labels")
	f.StringVar(&treeService, "service", "", "fetch the sub-resources of the item given as argument from this service")
}

func runTree(cmd *cobra.Command, args []string) error {
	kind := resource.HierarchyKind(treeKind)
	if kind != resource.HierarchyPath && kind != resource.HierarchyParent {
		return flagError("invalid --kind %q (expected path|parent)", treeKind)
	}
	if treeDepth < 0 {
		return flagError("--depth must be non-negative, got %d", treeDepth)
	}

	var (
		items []resource.Item
		root  string
		err   error
	)
	if treeService != "" {
		if len(args) != 1 {
			return flagError("--service needs the parent item id as argument")
		}
		items, kind, err = fetchChildren(cmd.Context(), treeService, args[0])
		root = args[0]
	} else {
		items, err = readTreeInput(cmd.InOrStdin(), args, kind)
	}
	if err != nil {
		return err
	}

	r := controller.BuildTree(kind, items)
	log := logger.FromContext(cmd.Context())
	for _, issue := range r.Issues {
		log.Info("hierarchy issue", "error", issue.Error())
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", issue)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), formatter.FormatHierarchy(r, formatter.TreeOptions{
		MaxDepth:    treeDepth,
		ShowIDs:     treeIDs,
		MarkVirtual: true,
		Root:        root,
	}))
	return err
}

func fetchChildren(ctx context.Context, serviceName, id string) ([]resource.Item, resource.HierarchyKind, error) {
	cfg := appConfig
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, "", err
	}
	svc, err := lookupService(catalog, serviceName)
	if err != nil {
		return nil, "", err
	}
	if svc.Hierarchy == resource.HierarchyNone {
		return nil, "", fmt.Errorf("%s has no sub-resources", svc.DisplayTitle())
	}
	src, _, err := openBackend(cfg)
	if err != nil {
		return nil, "", err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
	defer cancel()
	got, err := source.Follow(ctx, src.Children(svc.Name, id), source.FollowOptions{PageSize: svc.PageSize})
	if err != nil {
		return nil, "", fmt.Errorf("children of %s: %w", id, err)
	}
	return got.Items, svc.Hierarchy, nil
}

func readTreeInput(stdin io.Reader, args []string, kind resource.HierarchyKind) ([]resource.Item, error) {
	in := stdin
	var format loader.Format
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
		format, _ = loader.FormatForPath(args[0])
	}

	if kind == resource.HierarchyParent {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read items: %w", err)
		}
		items, err := loader.DecodeList[resource.Item](data, format)
		if err != nil && !errors.Is(err, loader.ErrEmpty) {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return items, nil
	}

	var items []resource.Item
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, resource.Item{ID: line, Key: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	return items, nil
}
