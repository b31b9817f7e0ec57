package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/repository"
)

// SearchLogger records completed searches and feedback on them
type SearchLogger interface {
	LogSearch(ctx context.Context, entry *repository.SearchLog) error
	LogFeedback(ctx context.Context, searchID, sourceID, propertyName, action string) error
}

// SearchService handles search business logic
type SearchService struct {
	executor    *Executor
	dedup       *Deduplicator
	ranker      *Ranker
	logs        SearchLogger
	resultLimit int

	pending sync.WaitGroup
}

// NewSearchService creates a new search service. logs may be nil.
func NewSearchService(
	executor *Executor,
	dedup *Deduplicator,
	ranker *Ranker,
	logs SearchLogger,
	resultLimit int,
) *SearchService {
	return &SearchService{
		executor:    executor,
		dedup:       dedup,
		ranker:      ranker,
		logs:        logs,
		resultLimit: resultLimit,
	}
}

// Search runs a federated search: every source is queried, duplicates are
// optionally hidden, and the merged list is sorted and capped.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()

	options := req.Options
	if options == nil {
		options = &model.SearchOptions{}
	}
	if !ValidSort(options.Sort) {
		return nil, fmt.Errorf("unsupported sort %q", options.Sort)
	}

	filters := req.Filters
	if filters == nil {
		filters = &model.SearchFilters{}
	}

	result := s.executor.Execute(ctx, filters)
	listings := result.Listings

	removed := 0
	if options.HideDuplicates {
		listings, removed = s.dedup.Deduplicate(listings)
	}

	if err := s.ranker.Rank(listings, options.Sort); err != nil {
		return nil, err
	}

	limit := s.resultLimit
	if options.Limit > 0 && (limit <= 0 || options.Limit < limit) {
		limit = options.Limit
	}
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}

	took := time.Since(startTime).Milliseconds()
	resp := &model.SearchResponse{
		SearchID:          uuid.New().String(),
		Results:           listings,
		Total:             len(listings),
		DuplicatesRemoved: removed,
		SourceErrors:      result.Errors,
		SourceWarnings:    result.Warnings,
		Took:              took,
	}

	// Log search (non-blocking)
	if s.logs != nil {
		failed := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			failed = append(failed, e.Source)
		}
		entry := &repository.SearchLog{
			SearchID:          resp.SearchID,
			Filters:           filters,
			SourcesOK:         result.Succeeded,
			SourcesFailed:     failed,
			ResultCount:       resp.Total,
			DuplicatesRemoved: removed,
			ResponseTimeMs:    took,
		}
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			if err := s.logs.LogSearch(context.Background(), entry); err != nil {
				log.Printf("⚠️  %v", err)
			}
		}()
	}

	return resp, nil
}

// Wait blocks until every background search log write has finished
func (s *SearchService) Wait() {
	s.pending.Wait()
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if s.logs == nil {
		return ErrSearchLogDisabled
	}
	return s.logs.LogFeedback(ctx, req.SearchID, req.SourceID, req.PropertyName, req.Action)
}
