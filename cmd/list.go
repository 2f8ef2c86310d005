package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/cloudx/internal/cel"
	"github.com/oakwood-commons/cloudx/internal/formatter"
	"github.com/oakwood-commons/cloudx/internal/limiter"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/pkg/loader"
	"github.com/oakwood-commons/cloudx/pkg/logger"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var (
	listOutput    string
	limitRecords  int
	offsetRecords int
	tailRecords   int
	listFilter    string
	listSort      string
	listDesc      bool
	listColumns   []string
	listDecode    bool
)

var listCmd = &cobra.Command{
	Use:   "list <service>",
	Short: "Print a service's resources",
	Example: `  cloudx list instances
  cloudx list functions --filter '?item.runtime == "go1.x"' -o yaml
  cloudx list logs --sort stored --desc --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() { //nolint:gochecknoinits
	f := listCmd.Flags()
	f.StringVarP(&listOutput, "output", "o", "table", "output format: table|yaml|json")
	f.IntVar(&limitRecords, "limit", 0, "limit total number of records printed")
	f.IntVar(&offsetRecords, "offset", 0, "skip the first N records")
	f.IntVar(&tailRecords, "tail", 0, "print the last N records (mutually exclusive with --limit; ignores --offset)")
	f.StringVar(&listFilter, "filter", "", `substring filter, or a CEL expression starting with "?"`)
	f.StringVar(&listSort, "sort", "", "sort by column")
	f.BoolVar(&listDesc, "desc", false, "sort descending")
	f.StringSliceVar(&listColumns, "columns", nil, "columns to print (default: the service's columns)")
	f.BoolVar(&listDecode, "decode", false, "expand attribute values holding JSON, YAML or TOML documents (yaml and json output)")
}

func runList(cmd *cobra.Command, args []string) error {
	lc := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := lc.Validate(); err != nil {
		return usageError{err: fmt.Errorf("record limiting: %w", err)}
	}
	if err := validOutput(listOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	if listDecode && listOutput == "table" {
		return flagError("--decode needs -o yaml or -o json")
	}

	ctx := cmd.Context()
	cfg := appConfig
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	svc, err := lookupService(catalog, args[0])
	if err != nil {
		return err
	}
	src, _, err := openBackend(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
	defer cancel()
	got, err := source.Follow(ctx, src.Resources(svc.Name, resolveRegion(ctx, cfg, src.Regions()), profile), source.FollowOptions{
		MaxItems: svc.MaxItems,
		PageSize: svc.PageSize,
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", svc.Name, err)
	}
	if got.Truncated {
		logger.FromContext(ctx).Info("listing truncated", logger.ServiceKey, svc.Name, "max_items", svc.MaxItems)
	}

	items, err := filterItems(got.Items, listFilter)
	if err != nil {
		return usageError{err: err}
	}
	if listSort != "" {
		sortItems(items, listSort, listDesc)
	}
	items = limiter.Apply(lc, items)

	cols := listColumns
	if len(cols) == 0 {
		cols = svc.Columns
	}
	return writeItems(cmd.OutOrStdout(), items, cols, listOutput, settings.FromContextOrDefault(ctx))
}

// filterItems keeps items whose filter text contains text, or that satisfy
// text as a CEL expression.
func filterItems(items []resource.Item, text string) ([]resource.Item, error) {
	if text == "" {
		return items, nil
	}
	if cel.IsExpression(text) {
		f, err := cel.Compile(text)
		if err != nil {
			return nil, fmt.Errorf("--filter: %w", err)
		}
		match := f.Predicate()
		return slices.DeleteFunc(items, func(it resource.Item) bool { return !match(it.Vars()) }), nil
	}
	needle := strings.ToLower(text)
	return slices.DeleteFunc(items, func(it resource.Item) bool {
		return !strings.Contains(strings.ToLower(it.FilterText()), needle)
	}), nil
}

func sortItems(items []resource.Item, column string, desc bool) {
	slices.SortStableFunc(items, func(a, b resource.Item) int {
		c := resource.CompareField(a, b, column)
		if desc {
			return -c
		}
		return c
	})
}

func writeItems(w io.Writer, items []resource.Item, cols []string, format string, run *settings.Run) error {
	if format == "table" {
		_, err := io.WriteString(w, formatter.FormatTable(items, formatter.TableOptions{
			Columns: cols,
			Width:   tableWidth(),
			Plain:   !colorOutput(run),
		}))
		return err
	}
	if items == nil {
		items = []resource.Item{}
	}
	if listDecode {
		expanded, err := expandItems(items)
		if err != nil {
			return err
		}
		return writeStructured(w, expanded, format, colorOutput(run))
	}
	return writeStructured(w, items, format, colorOutput(run))
}

// expandItems turns items into generic records whose serialized attribute
// values are decoded in place.
func expandItems(items []resource.Item) ([]any, error) {
	data, err := yaml.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	var records []any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	for i, rec := range records {
		records[i] = loader.ExpandStrings(rec)
	}
	return records, nil
}
