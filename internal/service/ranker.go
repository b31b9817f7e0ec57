package service

import (
	"fmt"
	"sort"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

// Ranker orders the merged listings as a final pass
type Ranker struct{}

// NewRanker creates a new ranker
func NewRanker() *Ranker {
	return &Ranker{}
}

// ValidSort reports whether order is a supported sort
func ValidSort(order string) bool {
	switch order {
	case model.SortNone, model.SortPriceDesc, model.SortPriceAsc, model.SortAreaDesc:
		return true
	}
	return false
}

// Rank sorts listings in place. SortNone keeps source iteration order; ties
// keep their relative order.
func (r *Ranker) Rank(listings []model.Listing, order string) error {
	var less func(a, b *model.Listing) bool
	switch order {
	case model.SortNone:
		return nil
	case model.SortPriceDesc:
		less = func(a, b *model.Listing) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return a.TotalArea > b.TotalArea
		}
	case model.SortPriceAsc:
		less = func(a, b *model.Listing) bool {
			return a.Price < b.Price
		}
	case model.SortAreaDesc:
		less = func(a, b *model.Listing) bool {
			return a.TotalArea > b.TotalArea
		}
	default:
		return fmt.Errorf("unsupported sort %q", order)
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return less(&listings[i], &listings[j])
	})
	return nil
}
