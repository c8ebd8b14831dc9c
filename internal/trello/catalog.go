// Package trello declares the Trello REST endpoints exposed as MCP tools.
// Every endpoint is a static endpoint.Descriptor grouped by resource.
package trello

import (
	"context"
	"errors"
	"fmt"
	"sort"

	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

// Categories, one per Trello resource.
const (
	CategoryBoards        = "boards"
	CategoryLists         = "lists"
	CategoryCards         = "cards"
	CategoryChecklists    = "checklists"
	CategoryLabels        = "labels"
	CategoryMembers       = "members"
	CategoryActions       = "actions"
	CategoryCustomFields  = "customfields"
	CategoryOrganizations = "organizations"
	CategoryWebhooks      = "webhooks"
	CategorySearch        = "search"
)

// Descriptors returns the built-in Trello descriptor table.
func Descriptors() []ep.Descriptor {
	var all []ep.Descriptor
	for _, group := range [][]ep.Descriptor{
		boardEndpoints,
		listEndpoints,
		cardEndpoints,
		checklistEndpoints,
		labelEndpoints,
		memberEndpoints,
		actionEndpoints,
		customFieldEndpoints,
		organizationEndpoints,
		webhookEndpoints,
		searchEndpoints,
	} {
		all = append(all, group...)
	}
	return all
}

// Catalog indexes descriptors by tool name.
type Catalog struct {
	byName map[string]ep.Descriptor
	sorted []ep.Descriptor
}

// NewCatalog builds a catalog from the built-in table plus extra descriptors.
// Every descriptor is validated and duplicate names are rejected.
func NewCatalog(extra ...ep.Descriptor) (*Catalog, error) {
	return NewCatalogFrom(append(Descriptors(), extra...))
}

// NewCatalogFrom builds a catalog from exactly the given descriptors.
func NewCatalogFrom(descs []ep.Descriptor) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]ep.Descriptor, len(descs))}
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid descriptor: %w", err)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		c.byName[d.Name] = d
		c.sorted = append(c.sorted, d)
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		if c.sorted[i].Category != c.sorted[j].Category {
			return c.sorted[i].Category < c.sorted[j].Category
		}
		return c.sorted[i].Name < c.sorted[j].Name
	})
	return c, nil
}

// All returns every descriptor sorted by category, then name.
func (c *Catalog) All() []ep.Descriptor {
	out := make([]ep.Descriptor, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.sorted)
}

// Lookup finds a descriptor by tool name.
func (c *Catalog) Lookup(name string) (ep.Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Categories returns the distinct categories in sorted order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, d := range c.sorted {
		if len(out) == 0 || out[len(out)-1] != d.Category {
			out = append(out, d.Category)
		}
	}
	return out
}

// Filter returns a new catalog holding the descriptors keep accepts.
func (c *Catalog) Filter(keep func(ep.Descriptor) bool) *Catalog {
	out := &Catalog{byName: make(map[string]ep.Descriptor)}
	for _, d := range c.sorted {
		if keep(d) {
			out.byName[d.Name] = d
			out.sorted = append(out.sorted, d)
		}
	}
	return out
}

// ReadOnly keeps only GET endpoints.
func ReadOnly(d ep.Descriptor) bool {
	return d.ReadOnly()
}

// InCategories keeps descriptors whose category is listed. An empty list keeps all.
func InCategories(categories ...string) func(ep.Descriptor) bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return func(d ep.Descriptor) bool {
		return len(set) == 0 || set[d.Category]
	}
}

// Options select the exposed tool surface.
type Options struct {
	OpenAPIFile string   // optional OpenAPI document adding descriptors
	ReadOnly    bool     // expose GET endpoints only
	Categories  []string // empty keeps every category
}

// Load builds the catalog for opts. An empty result is an error.
func Load(ctx context.Context, opts Options) (*Catalog, error) {
	var extra []ep.Descriptor
	if opts.OpenAPIFile != "" {
		imported, err := ep.LoadOpenAPIFile(ctx, opts.OpenAPIFile)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", opts.OpenAPIFile, err)
		}
		extra = imported
	}

	catalog, err := NewCatalog(extra...)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	if opts.ReadOnly {
		catalog = catalog.Filter(ReadOnly)
	}
	catalog = catalog.Filter(InCategories(opts.Categories...))
	if catalog.Len() == 0 {
		return nil, errors.New("no tools left after applying the read-only and category filters")
	}
	return catalog, nil
}
