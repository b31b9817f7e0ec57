package schema

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// DefaultThreshold is the minimum similarity for an automatic rebinding
const DefaultThreshold = 0.8

// DefaultCandidateSlots are the logical names that may be assigned to a
// matched column when no existing logical name pointed at the failed one.
var DefaultCandidateSlots = []string{"Property_Name", "Property_Title", "Price", "Total_Area"}

// Mapper resolves logical field names to physical column names per source
// and repairs the mapping when a source's schema drifts.
type Mapper struct {
	store     Store
	threshold float64
	slots     []string
	debug     bool

	// saveMu orders mutations with their Save so an older snapshot never
	// overwrites a newer one.
	saveMu sync.Mutex

	mu    sync.RWMutex
	doc   Document
	cache map[string]cachedColumn
	// pending holds repairs whose Save failed; Reload re-applies them.
	pending Document
}

type cachedColumn struct {
	physical string
	mapped   bool
}

// Option configures a Mapper
type Option func(*Mapper)

// WithThreshold sets the minimum similarity for a match
func WithThreshold(threshold float64) Option {
	return func(m *Mapper) {
		m.threshold = threshold
	}
}

// WithCandidateSlots replaces the logical names new matches may be bound to
func WithCandidateSlots(slots []string) Option {
	return func(m *Mapper) {
		m.slots = append([]string(nil), slots...)
	}
}

// WithDebug enables [DEBUG] logging of every comparison
func WithDebug(debug bool) Option {
	return func(m *Mapper) {
		m.debug = debug
	}
}

// NewMapper loads the mapping document from store
func NewMapper(ctx context.Context, store Store, opts ...Option) (*Mapper, error) {
	m := &Mapper{
		store:     store,
		threshold: DefaultThreshold,
		slots:     DefaultCandidateSlots,
		cache:     map[string]cachedColumn{},
		pending:   Document{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Reload(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload replaces the in-memory document with the stored one. Repairs that
// could not be persisted stay in effect on top of it.
func (m *Mapper) Reload(ctx context.Context) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	doc, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load column mapping: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for source, columns := range m.pending {
		if doc[source] == nil {
			doc[source] = map[string]string{}
		}
		for logical, physical := range columns {
			doc[source][logical] = physical
		}
	}
	m.doc = doc
	m.cache = map[string]cachedColumn{}
	return nil
}

// save persists snapshot. The caller holds saveMu. A failed save keeps the
// given repair pending; a successful one stores every pending repair too.
func (m *Mapper) save(ctx context.Context, snapshot Document, source, logical, physical string) error {
	err := m.store.Save(ctx, snapshot)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if logical != "" {
			if m.pending[source] == nil {
				m.pending[source] = map[string]string{}
			}
			m.pending[source][logical] = physical
		}
		return err
	}
	m.pending = Document{}
	return nil
}

// Seed adds hand-authored defaults for a source without overriding mappings
// already present, and persists the document if anything was added.
func (m *Mapper) Seed(ctx context.Context, source string, defaults map[string]string) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	columns := m.doc[source]
	if columns == nil {
		columns = map[string]string{}
		m.doc[source] = columns
	}
	added := 0
	for logical, physical := range defaults {
		if _, ok := columns[logical]; !ok {
			columns[logical] = physical
			added++
		}
	}
	if added == 0 {
		m.mu.Unlock()
		return nil
	}
	m.cache = map[string]cachedColumn{}
	snapshot := m.doc.Clone()
	m.mu.Unlock()

	log.Printf("Seeded %d column mappings for %s", added, source)
	if err := m.save(ctx, snapshot, source, "", ""); err != nil {
		return &PersistenceError{Source: source, Err: err}
	}
	return nil
}

// GetColumn returns the physical column of a logical field, or the logical
// name itself when the source has no mapping for it.
func (m *Mapper) GetColumn(source, logical string) string {
	physical, _ := m.LookupColumn(source, logical)
	return physical
}

// LookupColumn is GetColumn that also reports whether the name came from the
// mapping rather than the identity fallback.
func (m *Mapper) LookupColumn(source, logical string) (string, bool) {
	key := source + ":" + logical

	m.mu.RLock()
	entry, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		return entry.physical, entry.mapped
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry = cachedColumn{physical: logical}
	if mapped, ok := m.doc[source][logical]; ok && mapped != "" {
		entry = cachedColumn{physical: mapped, mapped: true}
	}
	m.cache[key] = entry
	return entry.physical, entry.mapped
}

// ResolveUnknownColumn finds the actual column most similar to failed. Below
// the threshold it returns ErrNoColumnMatch. On a match the mapping is updated
// and persisted; if persisting fails the match is still returned together
// with a *PersistenceError and stays in effect for this process.
func (m *Mapper) ResolveUnknownColumn(ctx context.Context, source, failed string, actual []string) (string, error) {
	best, score := BestMatch(failed, actual)
	if m.debug {
		for _, col := range actual {
			log.Printf("[DEBUG] comparing %s with %s: score %.3f", failed, col, Similarity(failed, col))
		}
	}
	if best == "" || score < m.threshold {
		log.Printf("⚠️  No column of %s matches %q (best %q score %.3f, threshold %.2f)",
			source, failed, best, score, m.threshold)
		return "", fmt.Errorf("%w: %s.%s", ErrNoColumnMatch, source, failed)
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	columns := m.doc[source]
	if columns == nil {
		columns = map[string]string{}
		m.doc[source] = columns
	}
	logical := m.logicalFor(columns, failed)
	if logical != "" {
		columns[logical] = best
		log.Printf("Updating mapping for %s.%s: %s -> %s (score %.3f)", source, logical, failed, best, score)
	} else {
		log.Printf("⚠️  Matched %s -> %s for %s but every candidate slot is assigned", failed, best, source)
	}
	m.cache = map[string]cachedColumn{}
	snapshot := m.doc.Clone()
	m.mu.Unlock()

	if logical == "" {
		return best, nil
	}
	if err := m.save(ctx, snapshot, source, logical, best); err != nil {
		perr := &PersistenceError{Source: source, Err: err}
		log.Printf("❌ %v", perr)
		return best, perr
	}
	return best, nil
}

// logicalFor picks the logical name to repoint. In order: a logical name
// already mapped to failed; an unmapped candidate slot whose identity
// fallback produced failed; the first unmapped candidate slot.
func (m *Mapper) logicalFor(columns map[string]string, failed string) string {
	logicals := make([]string, 0, len(columns))
	for logical := range columns {
		logicals = append(logicals, logical)
	}
	sort.Strings(logicals)
	for _, logical := range logicals {
		if strings.EqualFold(columns[logical], failed) {
			return logical
		}
	}

	for _, slot := range m.slots {
		if _, ok := columns[slot]; !ok && strings.EqualFold(slot, failed) {
			return slot
		}
	}
	for _, slot := range m.slots {
		if _, ok := columns[slot]; !ok {
			return slot
		}
	}
	return ""
}

// Snapshot returns a copy of the current document
func (m *Mapper) Snapshot() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Threshold returns the configured match threshold
func (m *Mapper) Threshold() float64 {
	return m.threshold
}
