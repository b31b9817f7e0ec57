package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/repository"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/schema"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/source"
)

// ListingStore is the store of one source
type ListingStore interface {
	ID() string
	QueryListings(ctx context.Context, q *source.Query) ([]model.Listing, error)
	Columns(ctx context.Context, schema string, tables []string) ([]string, error)
}

// ColumnMapper resolves logical fields and repairs drifted columns
type ColumnMapper interface {
	source.ColumnResolver
	ResolveUnknownColumn(ctx context.Context, source, failed string, actual []string) (string, error)
}

// Result is the merged outcome of one federated execution
type Result struct {
	Listings  []model.Listing
	Succeeded []string
	Errors    []model.SourceError
	Warnings  []string
}

// Executor runs a filter against every source in turn and merges the rows.
// A failing source is reported in the result and never aborts the others.
type Executor struct {
	builder *source.Builder
	mapper  ColumnMapper
	stores  []ListingStore
	debug   bool
}

// NewExecutor creates an executor over stores, queried in the given order
func NewExecutor(builder *source.Builder, mapper ColumnMapper, stores []ListingStore) *Executor {
	return &Executor{
		builder: builder,
		mapper:  mapper,
		stores:  stores,
	}
}

// SetDebug enables [DEBUG] logging of built queries
func (e *Executor) SetDebug(debug bool) {
	e.debug = debug
}

// Sources returns the ids of the sources in execution order
func (e *Executor) Sources() []string {
	ids := make([]string, len(e.stores))
	for i, s := range e.stores {
		ids[i] = s.ID()
	}
	return ids
}

// Execute queries every source with filters
func (e *Executor) Execute(ctx context.Context, filters *model.SearchFilters) *Result {
	result := &Result{Listings: []model.Listing{}}

	for _, store := range e.stores {
		start := time.Now()
		listings, warning, srcErr := e.executeSource(ctx, store, filters)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if srcErr != nil {
			log.Printf("❌ %s failed after %v (%s): %s", store.ID(), time.Since(start), srcErr.Kind, srcErr.Message)
			result.Errors = append(result.Errors, *srcErr)
			continue
		}
		log.Printf("✅ %s returned %d listings in %v", store.ID(), len(listings), time.Since(start))
		result.Listings = append(result.Listings, listings...)
		result.Succeeded = append(result.Succeeded, store.ID())
	}
	return result
}

// executeSource runs one source, repairing a drifted column and retrying at
// most once.
func (e *Executor) executeSource(ctx context.Context, store ListingStore, filters *model.SearchFilters) ([]model.Listing, string, *model.SourceError) {
	id := store.ID()

	q, err := e.builder.Build(id, filters, nil)
	if err != nil {
		return nil, "", sourceError(id, err, false, "")
	}
	if e.debug {
		log.Printf("[DEBUG] %s query: %s args=%v", id, q.SQL, q.Args)
	}

	listings, queryErr := store.QueryListings(ctx, q)
	if queryErr == nil {
		return listings, "", nil
	}

	var drift *repository.SchemaDriftError
	if !errors.As(queryErr, &drift) || drift.Column == "" {
		return nil, "", sourceError(id, queryErr, false, "")
	}

	log.Printf("⚠️  %s: column %q does not exist, attempting self-heal", id, drift.Column)
	actual, err := store.Columns(ctx, e.templateSchema(id), e.candidateTables(id, drift.Qualifier))
	if err != nil {
		return nil, "", &model.SourceError{
			Source:       id,
			Kind:         model.ErrKindSchemaDrift,
			Message:      fmt.Sprintf("%v (column lookup failed: %v)", queryErr, err),
			SelfHealed:   true,
			FailedColumn: drift.Column,
		}
	}

	var warning string
	replacement, err := e.mapper.ResolveUnknownColumn(ctx, id, drift.Column, actual)
	if err != nil {
		var perr *schema.PersistenceError
		if !errors.As(err, &perr) {
			// No confident match: surface the original query error.
			return nil, "", &model.SourceError{
				Source:       id,
				Kind:         model.ErrKindAmbiguousColumn,
				Message:      queryErr.Error(),
				SelfHealed:   true,
				FailedColumn: drift.Column,
			}
		}
		warning = perr.Error()
	}

	q, err = e.builder.Build(id, filters, map[string]string{drift.Column: replacement})
	if err != nil {
		return nil, warning, sourceError(id, err, true, drift.Column)
	}
	if e.debug {
		log.Printf("[DEBUG] %s retry query: %s args=%v", id, q.SQL, q.Args)
	}

	listings, err = store.QueryListings(ctx, q)
	if err != nil {
		return nil, warning, sourceError(id, err, true, drift.Column)
	}
	log.Printf("✅ %s self-healed %s -> %s", id, drift.Column, replacement)
	return listings, warning, nil
}

func (e *Executor) templateSchema(id string) string {
	if tmpl, ok := e.builder.Registry().Get(id); ok && tmpl.Schema != "" {
		return tmpl.Schema
	}
	return "public"
}

// candidateTables returns the table behind the failing column's qualifier,
// or every table of the source when the qualifier is unknown.
func (e *Executor) candidateTables(id, qualifier string) []string {
	tmpl, ok := e.builder.Registry().Get(id)
	if !ok {
		return nil
	}
	if table, ok := tmpl.Table(qualifier); ok {
		return []string{table}
	}
	return tmpl.TableNames()
}

// sourceError classifies a per-source failure
func sourceError(id string, err error, selfHealed bool, failedColumn string) *model.SourceError {
	kind := model.ErrKindQuery
	var drift *repository.SchemaDriftError
	var connErr *repository.ConnectivityError
	switch {
	case errors.As(err, &connErr):
		kind = model.ErrKindConnectivity
	case errors.As(err, &drift):
		kind = model.ErrKindSchemaDrift
		if failedColumn == "" {
			failedColumn = drift.Column
		}
	}
	return &model.SourceError{
		Source:       id,
		Kind:         kind,
		Message:      err.Error(),
		SelfHealed:   selfHealed,
		FailedColumn: failedColumn,
	}
}
