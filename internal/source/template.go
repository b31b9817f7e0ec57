package source

import (
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

// Logical fields of the unified listing that sources may map to drifting columns
const (
	FieldPropertyName  = "Property_Name"
	FieldPropertyTitle = "Property_Title"
	FieldPrice         = "Price"
	FieldTotalArea     = "Total_Area"
	FieldPricePerSqft  = "Price_per_SQFT"
	FieldDescription   = "Description"
	FieldRooms         = "Number_Of_Rooms"
	FieldBalcony       = "Number_Of_Balconies"
)

// LogicalFields lists every mappable logical field
var LogicalFields = []string{
	FieldPropertyName,
	FieldPropertyTitle,
	FieldPrice,
	FieldTotalArea,
	FieldPricePerSqft,
	FieldDescription,
	FieldRooms,
	FieldBalcony,
}

// Columns renders a logical field as a qualified physical column reference
type Columns func(logical string) string

// Args collects bound parameter values and hands out their placeholders
type Args struct {
	values []interface{}
}

// Add binds a value and returns its $n placeholder
func (a *Args) Add(value interface{}) string {
	a.values = append(a.values, value)
	return fmt.Sprintf("$%d", len(a.values))
}

// Values returns the bound values in placeholder order
func (a *Args) Values() []interface{} {
	return a.values
}

// Template is the single place that knows one source's physical layout: the
// select list normalizing it into the unified record, its join graph and how
// each filter applies to it.
type Template struct {
	ID     string
	Schema string
	// Tables maps join aliases to table names; Primary is the listing table alias.
	Tables  map[string]string
	Primary string
	// Fields maps each logical field to the alias of the table holding it.
	Fields map[string]string
	// Defaults are the hand-authored physical names seeded into the mapping.
	Defaults map[string]string

	selectSQL func(c Columns) string
	filters   func(c Columns, f *model.SearchFilters, args *Args) []string
}

// Table returns the table behind a join alias
func (t *Template) Table(alias string) (string, bool) {
	table, ok := t.Tables[alias]
	return table, ok
}

// TableNames returns every table the template reads, sorted
func (t *Template) TableNames() []string {
	names := make([]string, 0, len(t.Tables))
	for _, table := range t.Tables {
		names = append(names, table)
	}
	sort.Strings(names)
	return names
}

// Registry holds the templates known to the process
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates a registry with the given templates
func NewRegistry(templates ...*Template) *Registry {
	r := &Registry{templates: map[string]*Template{}}
	for _, t := range templates {
		r.templates[t.ID] = t
	}
	return r
}

// DefaultRegistry returns the built-in source templates
func DefaultRegistry() *Registry {
	return NewRegistry(Source2(), Source3())
}

// Get returns the template of a source
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Descriptor is the static description of one source: where its store is
// and which template reads it.
type Descriptor struct {
	ID       string
	DSN      string
	Template *Template
}

// quoteIdent quotes a physical column name so it reaches Postgres with its
// exact case, as information_schema reports it.
func quoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}
