package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/schema"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/source"
)

// SourceInspector is a source store that can describe itself
type SourceInspector interface {
	ID() string
	Ping(ctx context.Context) error
	Tables(ctx context.Context, schema string) (map[string][]string, error)
	Columns(ctx context.Context, schema string, tables []string) ([]string, error)
}

// MappingAdmin is the mapper surface used for administration
type MappingAdmin interface {
	Snapshot() schema.Document
	Threshold() float64
	Reload(ctx context.Context) error
	ResolveUnknownColumn(ctx context.Context, source, failed string, actual []string) (string, error)
}

// AdminService exposes mapping and source administration
type AdminService struct {
	mapper   MappingAdmin
	registry *source.Registry
	sources  []SourceInspector
}

// NewAdminService creates a new admin service
func NewAdminService(mapper MappingAdmin, registry *source.Registry, sources []SourceInspector) *AdminService {
	return &AdminService{
		mapper:   mapper,
		registry: registry,
		sources:  sources,
	}
}

// Mappings returns the current column mapping document
func (s *AdminService) Mappings() *model.MappingResponse {
	return &model.MappingResponse{
		Mappings:  s.mapper.Snapshot(),
		Threshold: s.mapper.Threshold(),
	}
}

// ReloadMappings re-reads the mapping document from its store
func (s *AdminService) ReloadMappings(ctx context.Context) (*model.MappingResponse, error) {
	if err := s.mapper.Reload(ctx); err != nil {
		return nil, err
	}
	return s.Mappings(), nil
}

// SourceStatus pings every source
func (s *AdminService) SourceStatus(ctx context.Context) []model.SourceStatus {
	statuses := make([]model.SourceStatus, 0, len(s.sources))
	for _, src := range s.sources {
		status := model.SourceStatus{Source: src.ID(), Healthy: true}
		if err := src.Ping(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Schema lists the tables and columns of a source
func (s *AdminService) Schema(ctx context.Context, id string) (*model.SchemaResponse, error) {
	src, tmpl, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	tables, err := src.Tables(ctx, tmpl.Schema)
	if err != nil {
		return nil, err
	}
	return &model.SchemaResponse{Source: id, Tables: tables}, nil
}

// ResolveColumn runs the mapper's repair for a failed column against the
// source's live columns, as the executor would after a failed query.
func (s *AdminService) ResolveColumn(ctx context.Context, id, failed string) (string, error) {
	src, tmpl, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	actual, err := src.Columns(ctx, tmpl.Schema, tmpl.TableNames())
	if err != nil {
		return "", err
	}
	return s.mapper.ResolveUnknownColumn(ctx, id, failed, actual)
}

// SourceIDs returns the configured source ids, sorted
func (s *AdminService) SourceIDs() []string {
	ids := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		ids = append(ids, src.ID())
	}
	sort.Strings(ids)
	return ids
}

func (s *AdminService) lookup(id string) (SourceInspector, *source.Template, error) {
	tmpl, ok := s.registry.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	for _, src := range s.sources {
		if src.ID() == id {
			return src, tmpl, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
}
