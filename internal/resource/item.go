// Package resource describes the cloud resources cloudx lists and the
// catalog of services that list them.
package resource

import (
	"sort"
	"strconv"
	"strings"
)

// Item is one listed resource.
type Item struct {
	ID         string            `yaml:"id" json:"id"`
	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	ARN        string            `yaml:"arn,omitempty" json:"arn,omitempty"`
	Region     string            `yaml:"region,omitempty" json:"region,omitempty"`
	ParentID   string            `yaml:"parent,omitempty" json:"parent,omitempty"`
	Key        string            `yaml:"key,omitempty" json:"key,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	SubItems   []string          `yaml:"sub_items,omitempty" json:"sub_items,omitempty"`
}

// Built-in column names resolved from Item fields rather than Attributes.
const (
	ColumnID     = "id"
	ColumnName   = "name"
	ColumnARN    = "arn"
	ColumnRegion = "region"
	ColumnParent = "parent"
)

// Title returns the display name, falling back to the id.
func (i Item) Title() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Field returns the value shown in column.
func (i Item) Field(column string) string {
	switch column {
	case ColumnID:
		return i.ID
	case ColumnName:
		return i.Title()
	case ColumnARN:
		return i.ARN
	case ColumnRegion:
		return i.Region
	case ColumnParent:
		return i.ParentID
	default:
		return i.Attributes[column]
	}
}

// FilterText is what text filters match against.
func (i Item) FilterText() string {
	if i.Name == "" || i.Name == i.ID {
		return i.ID
	}
	return i.Name + " " + i.ID
}

// HierarchyKey is the path key used by path hierarchies.
func (i Item) HierarchyKey() string {
	if i.Key != "" {
		return i.Key
	}
	return i.ID
}

// Vars flattens the item for expression filters.
func (i Item) Vars() map[string]string {
	vars := make(map[string]string, len(i.Attributes)+5)
	for k, v := range i.Attributes {
		vars[k] = v
	}
	vars[ColumnID] = i.ID
	vars[ColumnName] = i.Title()
	vars[ColumnARN] = i.ARN
	vars[ColumnRegion] = i.Region
	vars[ColumnParent] = i.ParentID
	return vars
}

// AttributeNames returns the item's attribute keys sorted.
func (i Item) AttributeNames() []string {
	keys := make([]string, 0, len(i.Attributes))
	for k := range i.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CompareField orders items by column, numerically when both values parse
// as numbers.
func CompareField(a, b Item, column string) int {
	av, bv := a.Field(column), b.Field(column)
	if an, aok := parseNumber(av); aok {
		if bn, bok := parseNumber(bv); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// Event is a timestamped status change of a resource, such as a stack
// event.
type Event struct {
	Time     string `yaml:"time" json:"time"`
	Resource string `yaml:"resource" json:"resource"`
	Status   string `yaml:"status" json:"status"`
	Reason   string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// FilterText is what the event filter matches against.
func (e Event) FilterText() string {
	return strings.Join([]string{e.Resource, e.Status, e.Reason}, " ")
}
