package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

func listing(name, location, src string) model.Listing {
	return model.Listing{PropertyName: name, Location: location, SourceID: src}
}

func TestDeduplicate_AbbreviatedNameSameLocation(t *testing.T) {
	d := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false)

	records := []model.Listing{
		listing("Green Meadows Apt", "Baner", "source_2"),
		listing("Green Meadows Apartment", "Baner", "source_3"),
	}
	got, removed := d.Deduplicate(records)

	require.Len(t, got, 1)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "Green Meadows Apt", got[0].PropertyName)
	assert.Equal(t, "source_2", got[0].SourceID)
}

func TestDeduplicate_DifferentLocationsAreKept(t *testing.T) {
	d := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false)

	records := []model.Listing{
		listing("3BHK Flat", "Baner", "source_2"),
		listing("3BHK Flat", "Kharadi", "source_3"),
	}
	got, removed := d.Deduplicate(records)

	assert.Equal(t, records, got)
	assert.Zero(t, removed)
}

func TestDeduplicate_KeepsFirstAndPreservesOrder(t *testing.T) {
	d := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false)

	records := []model.Listing{
		listing("Sky Tower", "Wakad", "source_2"),
		listing("Green Meadows", "Baner", "source_2"),
		listing(" sky tower ", "WAKAD", "source_3"),
		listing("Palm Grove", "Aundh", "source_3"),
		listing("Sky Twr", "Wakad", "source_3"),
	}
	got, removed := d.Deduplicate(records)

	assert.Equal(t, 2, removed)
	require.Len(t, got, 3)
	assert.Equal(t, "Sky Tower", got[0].PropertyName)
	assert.Equal(t, "Green Meadows", got[1].PropertyName)
	assert.Equal(t, "Palm Grove", got[2].PropertyName)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	d := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false)

	records := []model.Listing{
		listing("Green Meadows Apt", "Baner", "source_2"),
		listing("Green Meadows Apartment", "Baner", "source_3"),
		listing("Green Meadows", "Baner", "source_3"),
		listing("Unknown", "Unknown", "source_2"),
		listing("Unknown", "Unknown", "source_3"),
		listing("Riverside", "Hadapsar", "source_2"),
	}
	once, _ := d.Deduplicate(records)
	twice, removed := d.Deduplicate(once)

	assert.Equal(t, once, twice)
	assert.Zero(t, removed)
}

func TestDeduplicate_NoDuplicatesNoDrops(t *testing.T) {
	d := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false)

	records := []model.Listing{
		listing("Alpha", "Baner", "source_2"),
		listing("Beta", "Baner", "source_2"),
		listing("Alpha", "Aundh", "source_3"),
	}
	got, removed := d.Deduplicate(records)
	assert.Equal(t, records, got)
	assert.Zero(t, removed)

	got, removed = d.Deduplicate(nil)
	assert.Empty(t, got)
	assert.Zero(t, removed)
}

func TestDeduplicate_UnknownKeys(t *testing.T) {
	records := []model.Listing{
		listing("Unknown", "Unknown", "source_2"),
		listing("Unknown", "Unknown", "source_3"),
		listing("", "", "source_3"),
	}

	// Default: unknown names and locations still block together.
	got, removed := NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, false).Deduplicate(records)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, removed)

	got, removed = NewDeduplicator(DefaultFieldThreshold, DefaultMinMatchingFields, true).Deduplicate(records)
	assert.Equal(t, records, got)
	assert.Zero(t, removed)
}

func TestDeduplicate_MinMatchingFields(t *testing.T) {
	records := []model.Listing{
		listing("Green Meadows", "Baner", "source_2"),
		listing("Green Meadows", "Baner", "source_3"),
	}

	// Three corroborating fields can never be reached with two compared fields.
	got, removed := NewDeduplicator(DefaultFieldThreshold, 3, false).Deduplicate(records)
	assert.Len(t, got, 2)
	assert.Zero(t, removed)
}

func TestFieldSimilarity(t *testing.T) {
	assert.Greater(t, fieldSimilarity("Green Meadows Apt", "Green Meadows Apartment"), DefaultFieldThreshold)
	assert.Equal(t, 1.0, fieldSimilarity(" Baner ", "baner"))
	assert.Less(t, fieldSimilarity("Baner", "Kharadi"), DefaultFieldThreshold)
}
