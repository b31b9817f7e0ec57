package service

import (
	"log"

	"github.com/xrash/smetrics"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/utils"
)

// Duplicate detection defaults
const (
	DefaultFieldThreshold    = 0.85
	DefaultMinMatchingFields = 2

	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// Deduplicator removes listings that describe the same property as an
// earlier listing. Only listings sharing a block key are compared.
type Deduplicator struct {
	fieldThreshold    float64
	minMatchingFields int
	skipUnknownKeys   bool
	debug             bool
}

// NewDeduplicator creates a deduplicator. A pair is a duplicate when at least
// minMatchingFields of its compared fields score above fieldThreshold.
// skipUnknownKeys excludes listings without a usable name or location.
func NewDeduplicator(fieldThreshold float64, minMatchingFields int, skipUnknownKeys bool) *Deduplicator {
	if fieldThreshold <= 0 {
		fieldThreshold = DefaultFieldThreshold
	}
	if minMatchingFields <= 0 {
		minMatchingFields = DefaultMinMatchingFields
	}
	return &Deduplicator{
		fieldThreshold:    fieldThreshold,
		minMatchingFields: minMatchingFields,
		skipUnknownKeys:   skipUnknownKeys,
	}
}

// SetDebug enables [DEBUG] logging of every compared pair
func (d *Deduplicator) SetDebug(debug bool) {
	d.debug = debug
}

// Deduplicate returns records without the later member of every duplicate
// pair, preserving the order and values of the survivors, and the number of
// records removed.
func (d *Deduplicator) Deduplicate(records []model.Listing) ([]model.Listing, int) {
	blocks := make(map[string][]int)
	var order []string
	for i, r := range records {
		if d.skipUnknownKeys && (utils.IsUnknownKey(utils.NormalizeKey(r.PropertyName)) || utils.IsUnknownKey(utils.NormalizeKey(r.Location))) {
			continue
		}
		key := utils.BlockKey(r.PropertyName, r.Location)
		if _, ok := blocks[key]; !ok {
			order = append(order, key)
		}
		blocks[key] = append(blocks[key], i)
	}

	dropped := make([]bool, len(records))
	for _, key := range order {
		members := blocks[key]
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				j := members[b]
				if dropped[j] {
					continue
				}
				if d.isDuplicate(&records[members[a]], &records[j]) {
					dropped[j] = true
				}
			}
		}
	}

	result := make([]model.Listing, 0, len(records))
	for i, r := range records {
		if !dropped[i] {
			result = append(result, r)
		}
	}
	removed := len(records) - len(result)
	if removed > 0 {
		log.Printf("Removed %d duplicate listings out of %d", removed, len(records))
	}
	return result, removed
}

// isDuplicate compares the name and location of a pair
func (d *Deduplicator) isDuplicate(first, second *model.Listing) bool {
	scores := []float64{
		fieldSimilarity(first.PropertyName, second.PropertyName),
		fieldSimilarity(first.Location, second.Location),
	}

	matching := 0
	for _, score := range scores {
		if score > d.fieldThreshold {
			matching++
		}
	}
	if d.debug {
		log.Printf("[DEBUG] dedup %q@%q (%s) vs %q@%q (%s): name %.3f location %.3f",
			first.PropertyName, first.Location, first.SourceID,
			second.PropertyName, second.Location, second.SourceID,
			scores[0], scores[1])
	}
	return matching >= d.minMatchingFields
}

// fieldSimilarity is the Jaro-Winkler similarity of two lowercased, trimmed values
func fieldSimilarity(a, b string) float64 {
	return smetrics.JaroWinkler(utils.NormalizeKey(a), utils.NormalizeKey(b), jaroWinklerBoost, jaroWinklerPrefix)
}
