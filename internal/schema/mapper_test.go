package schema

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory Store whose Save can be made to fail
type memoryStore struct {
	doc     Document
	saves   int
	saveErr error
}

func (s *memoryStore) Load(ctx context.Context) (Document, error) {
	if s.doc == nil {
		return Document{}, nil
	}
	return s.doc.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, doc Document) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.doc = doc.Clone()
	return nil
}

// gatedStore blocks its first Save until release is closed
type gatedStore struct {
	mu      sync.Mutex
	doc     Document
	saves   int
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Load(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), nil
}

func (s *gatedStore) Save(ctx context.Context, doc Document) error {
	s.mu.Lock()
	s.saves++
	first := s.saves == 1
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return nil
}

func newFileMapper(t *testing.T, path string) *Mapper {
	t.Helper()
	m, err := NewMapper(context.Background(), NewFileStore(path))
	require.NoError(t, err)
	return m
}

func TestGetColumn_IdentityFallback(t *testing.T) {
	m := newFileMapper(t, filepath.Join(t.TempDir(), "schema_store.json"))

	for _, source := range []string{"source_2", "source_3", "never_configured"} {
		assert.Equal(t, "Property_Name", m.GetColumn(source, "Property_Name"))
		assert.Equal(t, "Some_Field", m.GetColumn(source, "Some_Field"))
	}
}

func TestGetColumn_UsesMapping(t *testing.T) {
	store := &memoryStore{doc: Document{"source_2": {"Total_Area": "total_area_sqft"}}}
	m, err := NewMapper(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, "total_area_sqft", m.GetColumn("source_2", "Total_Area"))
	assert.Equal(t, "Total_Area", m.GetColumn("source_3", "Total_Area"))
}

func TestResolveUnknownColumn_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schema_store.json")
	m := newFileMapper(t, path)

	// Warm the cache with the identity fallback before the repair.
	require.Equal(t, "Total_Area", m.GetColumn("source_2", "Total_Area"))

	actual := []string{"property_id", "property_name", "price", "total_area_sqft", "description"}
	got, err := m.ResolveUnknownColumn(ctx, "source_2", "total_area", actual)
	require.NoError(t, err)
	assert.Equal(t, "total_area_sqft", got)
	assert.Equal(t, "total_area_sqft", m.GetColumn("source_2", "Total_Area"))

	restarted := newFileMapper(t, path)
	assert.Equal(t, "total_area_sqft", restarted.GetColumn("source_2", "Total_Area"))
}

func TestResolveUnknownColumn_RepointsExistingLogicalName(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{doc: Document{"source_2": {
		"Price":      "price_inr",
		"Total_Area": "total_area_sqft",
	}}}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	got, err := m.ResolveUnknownColumn(ctx, "source_2", "price_inr", []string{"property_name", "prices_inr", "total_area_sqft"})
	require.NoError(t, err)
	assert.Equal(t, "prices_inr", got)
	assert.Equal(t, "prices_inr", m.GetColumn("source_2", "Price"))
	assert.Equal(t, "total_area_sqft", m.GetColumn("source_2", "Total_Area"))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "prices_inr", store.doc["source_2"]["Price"])
}

func TestResolveUnknownColumn_AssignsFreeSlot(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{doc: Document{"source_3": {"Property_Name": "name"}}}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	got, err := m.ResolveUnknownColumn(ctx, "source_3", "ttle", []string{"name", "title", "description"})
	require.NoError(t, err)
	assert.Equal(t, "title", got)
	// Property_Name is taken, so the first free slot receives the match.
	assert.Equal(t, "title", store.doc["source_3"]["Property_Title"])
}

func TestResolveUnknownColumn_BelowThreshold(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	got, err := m.ResolveUnknownColumn(ctx, "source_2", "balcony", []string{"property_name", "price", "description"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoColumnMatch))
	assert.Empty(t, got)
	assert.Equal(t, 0, store.saves)
	assert.Empty(t, m.Snapshot()["source_2"])
}

func TestResolveUnknownColumn_NoActualColumns(t *testing.T) {
	m, err := NewMapper(context.Background(), &memoryStore{})
	require.NoError(t, err)

	_, err = m.ResolveUnknownColumn(context.Background(), "source_2", "price", nil)
	assert.ErrorIs(t, err, ErrNoColumnMatch)
}

func TestResolveUnknownColumn_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{saveErr: errors.New("read-only filesystem")}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	got, err := m.ResolveUnknownColumn(ctx, "source_2", "total_area", []string{"total_area_sqft"})
	assert.Equal(t, "total_area_sqft", got)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "source_2", perr.Source)

	// The repair still applies to this process.
	assert.Equal(t, "total_area_sqft", m.GetColumn("source_2", "Total_Area"))
}

func TestResolveUnknownColumn_CustomThreshold(t *testing.T) {
	m, err := NewMapper(context.Background(), &memoryStore{}, WithThreshold(0.95))
	require.NoError(t, err)

	_, err = m.ResolveUnknownColumn(context.Background(), "source_2", "total_area", []string{"total_area_sqft"})
	assert.ErrorIs(t, err, ErrNoColumnMatch)
}

func TestSeed_DoesNotOverrideLearnedMappings(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{doc: Document{"source_2": {"Total_Area": "area_sqft_v2"}}}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	require.NoError(t, m.Seed(ctx, "source_2", map[string]string{
		"Total_Area":          "total_area_sqft",
		"Number_Of_Balconies": "balcony",
	}))

	assert.Equal(t, "area_sqft_v2", m.GetColumn("source_2", "Total_Area"))
	assert.Equal(t, "balcony", m.GetColumn("source_2", "Number_Of_Balconies"))
	assert.Equal(t, 1, store.saves)

	// Seeding again is a no-op.
	require.NoError(t, m.Seed(ctx, "source_2", map[string]string{"Total_Area": "total_area_sqft"}))
	assert.Equal(t, 1, store.saves)
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "Price", m.GetColumn("source_2", "Price"))

	store.doc = Document{"source_2": {"Price": "price_inr"}}
	require.NoError(t, m.Reload(ctx))
	assert.Equal(t, "price_inr", m.GetColumn("source_2", "Price"))
}

func TestResolveUnknownColumn_ConcurrentRepairsAreAllPersisted(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		doc:     Document{"source_2": {"Price": "price", "Total_Area": "area"}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := m.ResolveUnknownColumn(ctx, "source_2", "price", []string{"prices"})
		assert.NoError(t, err)
	}()
	<-store.entered

	go func() {
		defer wg.Done()
		_, err := m.ResolveUnknownColumn(ctx, "source_2", "area", []string{"areas"})
		assert.NoError(t, err)
	}()
	// Give the second repair time to run ahead of the blocked save.
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	want := map[string]string{"Price": "prices", "Total_Area": "areas"}
	assert.Equal(t, want, m.Snapshot()["source_2"])
	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, persisted["source_2"])
}

func TestReload_KeepsUnsavedRepairs(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{doc: Document{"source_2": {"Total_Area": "total_area", "Price": "price"}}}
	m, err := NewMapper(ctx, store)
	require.NoError(t, err)

	store.saveErr = errors.New("read-only filesystem")
	_, err = m.ResolveUnknownColumn(ctx, "source_2", "total_area", []string{"total_area_sqft"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	store.doc["source_2"]["Price"] = "price_inr"
	require.NoError(t, m.Reload(ctx))
	assert.Equal(t, "total_area_sqft", m.GetColumn("source_2", "Total_Area"))
	assert.Equal(t, "price_inr", m.GetColumn("source_2", "Price"))

	// Once a save succeeds the repair is on disk and no longer pending.
	store.saveErr = nil
	_, err = m.ResolveUnknownColumn(ctx, "source_2", "price_inr", []string{"price_inr_v2"})
	require.NoError(t, err)
	assert.Equal(t, "total_area_sqft", store.doc["source_2"]["Total_Area"])

	store.doc["source_2"]["Total_Area"] = "area"
	require.NoError(t, m.Reload(ctx))
	assert.Equal(t, "area", m.GetColumn("source_2", "Total_Area"))
}

func TestLookupColumn_ReportsIdentityFallback(t *testing.T) {
	m, err := NewMapper(context.Background(), &memoryStore{doc: Document{"source_2": {"Price": "Prices"}}})
	require.NoError(t, err)

	physical, mapped := m.LookupColumn("source_2", "Price")
	assert.Equal(t, "Prices", physical)
	assert.True(t, mapped)

	physical, mapped = m.LookupColumn("source_2", "Total_Area")
	assert.Equal(t, "Total_Area", physical)
	assert.False(t, mapped)
}
