package source

import (
	"fmt"
	"strings"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

// ColumnResolver resolves a logical field of a source to its physical column.
// mapped is false when the logical name is returned as an identity fallback.
type ColumnResolver interface {
	LookupColumn(source, logical string) (physical string, mapped bool)
}

// Query is a built per-source retrieval query with bound arguments
type Query struct {
	Source string
	SQL    string
	Args   []interface{}
}

// Builder constructs source queries from templates and mapped column names
type Builder struct {
	resolver ColumnResolver
	registry *Registry
	limit    int
}

// NewBuilder creates a builder; limit caps the rows read from each source
// (0 means no cap).
func NewBuilder(resolver ColumnResolver, registry *Registry, limit int) *Builder {
	return &Builder{
		resolver: resolver,
		registry: registry,
		limit:    limit,
	}
}

// Build returns the query for a source. rewrite replaces physical column
// names after mapping resolution; it carries a repair that could not be stored
// under a logical name.
func (b *Builder) Build(sourceID string, filters *model.SearchFilters, rewrite map[string]string) (*Query, error) {
	tmpl, ok := b.registry.Get(sourceID)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceID)
	}

	columns := func(logical string) string {
		physical, mapped := b.resolver.LookupColumn(sourceID, logical)
		if !mapped {
			// An unmapped field names the column Postgres created from an
			// unquoted identifier.
			physical = strings.ToLower(physical)
		}
		for from, to := range rewrite {
			if strings.EqualFold(physical, from) {
				physical = to
				break
			}
		}
		alias := tmpl.Fields[logical]
		if alias == "" {
			alias = tmpl.Primary
		}
		return alias + "." + quoteIdent(physical)
	}

	args := &Args{}
	var where []string
	if !filters.IsEmpty() {
		where = tmpl.filters(columns, filters, args)
	}
	if len(where) == 0 {
		where = []string{"1=1"}
	}

	var sb strings.Builder
	sb.WriteString(tmpl.selectSQL(columns))
	sb.WriteString("\n\t\tWHERE ")
	sb.WriteString(strings.Join(where, " AND "))
	if b.limit > 0 {
		sb.WriteString("\n\t\tLIMIT ")
		sb.WriteString(args.Add(b.limit))
	}

	return &Query{
		Source: sourceID,
		SQL:    sb.String(),
		Args:   args.Values(),
	}, nil
}

// Registry returns the template registry the builder reads from
func (b *Builder) Registry() *Registry {
	return b.registry
}
