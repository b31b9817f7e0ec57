package schema

import "context"

// Document is the persisted mapping: source -> logical field -> physical column
type Document map[string]map[string]string

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for source, columns := range d {
		copied := make(map[string]string, len(columns))
		for logical, physical := range columns {
			copied[logical] = physical
		}
		out[source] = copied
	}
	return out
}

// Store is the durable backend of the column mapping. Save replaces the whole
// document atomically.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}
