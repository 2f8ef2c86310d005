package resource

import (
	"fmt"
	"sort"

	"github.com/oakwood-commons/cloudx/internal/focus"
)

// HierarchyKind selects how a resource's sub-resources are arranged.
type HierarchyKind string

const (
	HierarchyNone   HierarchyKind = ""
	HierarchyPath   HierarchyKind = "path"
	HierarchyParent HierarchyKind = "parent"
)

// Control is an extra filter-bar control of a service.
type Control struct {
	Kind    focus.Kind `yaml:"kind"`
	Name    string     `yaml:"name"`
	Label   string     `yaml:"label,omitempty"`
	Options []string   `yaml:"options,omitempty"`
}

// Target returns the focus target of the control.
func (c Control) Target() focus.Target {
	return focus.Target{Kind: c.Kind, Name: c.Name}
}

// Service describes one listable resource type.
type Service struct {
	Name     string    `yaml:"name"`
	Title    string    `yaml:"title,omitempty"`
	Columns  []string  `yaml:"columns,omitempty"`
	Controls []Control `yaml:"controls,omitempty"`
	// Hierarchy arranges sub-resources when an item is selected.
	Hierarchy HierarchyKind `yaml:"hierarchy,omitempty"`
	// MaxItems caps how many items a listing accumulates; 0 is unbounded.
	MaxItems int `yaml:"max_items,omitempty"`
	// PageSize is the page size requested from the data source.
	PageSize int `yaml:"page_size,omitempty"`
	// PeekPages probes the next cursor before loading a page.
	PeekPages bool `yaml:"peek_pages,omitempty"`
	Queryable bool `yaml:"queryable,omitempty"`
	Events    bool `yaml:"events,omitempty"`
}

// DisplayTitle returns Title or the name.
func (s Service) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// FocusControls returns the filter bar's focus ring: the text input, the
// service's own controls, then pagination.
func (s Service) FocusControls() []focus.Target {
	targets := make([]focus.Target, 0, len(s.Controls)+2)
	targets = append(targets, focus.Input)
	for _, c := range s.Controls {
		targets = append(targets, c.Target())
	}
	return append(targets, focus.Pagination)
}

// Control returns the control with name.
func (s Service) Control(name string) (Control, bool) {
	for _, c := range s.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}

// Validate checks the service definition.
func (s Service) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("service without a name")
	}
	switch s.Hierarchy {
	case HierarchyNone, HierarchyPath, HierarchyParent:
	default:
		return fmt.Errorf("service %s: unknown hierarchy %q", s.Name, s.Hierarchy)
	}
	if s.MaxItems < 0 || s.PageSize < 0 {
		return fmt.Errorf("service %s: max_items and page_size must be non-negative", s.Name)
	}
	for _, c := range s.Controls {
		switch c.Kind {
		case focus.KindCheckbox:
		case focus.KindDropdown:
			if len(c.Options) == 0 {
				return fmt.Errorf("service %s: dropdown %s has no options", s.Name, c.Name)
			}
		default:
			return fmt.Errorf("service %s: control %s has unsupported kind %q", s.Name, c.Name, c.Kind)
		}
	}
	return nil
}

// Catalog is the ordered set of known services.
type Catalog struct {
	services []Service
	index    map[string]int
}

// NewCatalog builds a catalog, rejecting invalid or duplicate services.
func NewCatalog(services ...Service) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	for _, s := range services {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[s.Name]; dup {
			return nil, fmt.Errorf("duplicate service %s", s.Name)
		}
		c.index[s.Name] = len(c.services)
		c.services = append(c.services, s)
	}
	return c, nil
}

// Get returns the named service.
func (c *Catalog) Get(name string) (Service, bool) {
	i, ok := c.index[name]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// Services returns every service in catalog order.
func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// Names returns the service names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.services))
	for _, s := range c.services {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a catalog where overrides replace services of the same
// name and new services are appended.
func (c *Catalog) Merge(overrides []Service) (*Catalog, error) {
	merged := c.Services()
	for _, o := range overrides {
		if i, ok := c.index[o.Name]; ok {
			merged[i] = o
			continue
		}
		merged = append(merged, o)
	}
	return NewCatalog(merged...)
}

// DefaultServices returns the built-in service definitions.
func DefaultServices() []Service {
	return []Service{
		{
			Name:    "instances",
			Title:   "Compute instances",
			Columns: []string{ColumnName, ColumnID, "state", "type", "zone"},
		},
		{
			Name:    "buckets",
			Title:   "Storage buckets",
			Columns: []string{ColumnName, ColumnRegion, "created"},
		},
		{
			Name:    "functions",
			Title:   "Functions",
			Columns: []string{ColumnName, "runtime", "memory", "modified"},
			Controls: []Control{
				{Kind: focus.KindCheckbox, Name: "exact", Label: "Exact match"},
				{Kind: focus.KindCheckbox, Name: "archived", Label: "Show archived"},
			},
		},
		{
			Name:    "queues",
			Title:   "Queues",
			Columns: []string{ColumnName, "messages", "type"},
		},
		{
			Name:      "logs",
			Title:     "Log groups",
			Columns:   []string{ColumnName, "retention", "stored"},
			MaxItems:  100,
			Queryable: true,
			Controls: []Control{
				{Kind: focus.KindDropdown, Name: "range", Label: "Range", Options: []string{"1h", "6h", "24h", "7d"}},
			},
		},
		{
			Name:      "stacks",
			Title:     "Deployment stacks",
			Columns:   []string{ColumnName, "status", "updated"},
			Hierarchy: HierarchyParent,
			Events:    true,
		},
		{
			Name:      "apis",
			Title:     "API gateways",
			Columns:   []string{ColumnName, ColumnID, "protocol"},
			Hierarchy: HierarchyPath,
			PeekPages: true,
		},
	}
}

// DefaultCatalog returns the catalog of built-in services.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultServices()...)
	if err != nil {
		panic(fmt.Sprintf("resource: invalid built-in catalog: %v", err))
	}
	return c
}
