// Package app assembles the search components from configuration. It is
// shared by the HTTP server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/config"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/repository"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/schema"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/service"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/source"
)

// App holds the wired components
type App struct {
	Config      *config.Config
	Registry    *source.Registry
	Descriptors []source.Descriptor
	Mapper      *schema.Mapper
	Sources     []*repository.SourceRepository
	Executor    *service.Executor
	Search      *service.SearchService
	Admin       *service.AdminService

	closers []func() error
}

// New opens the mapping store and every configured source
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Registry: source.DefaultRegistry()}
	debug := cfg.Logging.Debug()

	for _, sc := range cfg.Sources {
		tmpl, ok := a.Registry.Get(sc.ID)
		if !ok {
			a.Close()
			return nil, fmt.Errorf("no query template for source %q", sc.ID)
		}
		a.Descriptors = append(a.Descriptors, source.Descriptor{ID: sc.ID, DSN: sc.GetDSN(), Template: tmpl})
	}

	store, err := a.openMappingStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Mapper, err = schema.NewMapper(ctx, store,
		schema.WithThreshold(cfg.Mapping.MatchThreshold),
		schema.WithCandidateSlots(source.LogicalFields),
		schema.WithDebug(debug),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	for _, d := range a.Descriptors {
		if err := a.Mapper.Seed(ctx, d.ID, d.Template.Defaults); err != nil {
			var perr *schema.PersistenceError
			if !errors.As(err, &perr) {
				a.Close()
				return nil, err
			}
			log.Printf("⚠️  %v", err)
		}
	}

	stores := make([]service.ListingStore, 0, len(a.Descriptors))
	inspectors := make([]service.SourceInspector, 0, len(a.Descriptors))
	for _, d := range a.Descriptors {
		repo, err := repository.NewSourceRepository(d.ID, d.DSN, cfg.Pool.MaxConnections, cfg.Pool.MaxIdleConnections)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		a.Sources = append(a.Sources, repo)
		stores = append(stores, repo)
		inspectors = append(inspectors, repo)
	}

	builder := source.NewBuilder(a.Mapper, a.Registry, cfg.Search.PerSourceLimit)
	a.Executor = service.NewExecutor(builder, a.Mapper, stores)
	a.Executor.SetDebug(debug)

	dedup := service.NewDeduplicator(cfg.Dedup.FieldThreshold, cfg.Dedup.MinMatchingFields, cfg.Dedup.SkipUnknownKeys)
	dedup.SetDebug(debug)

	var logs service.SearchLogger
	if cfg.Search.LogEnabled {
		logs = a.openSearchLog(ctx)
	}

	a.Search = service.NewSearchService(a.Executor, dedup, service.NewRanker(), logs, cfg.Search.ResultLimit)
	a.Admin = service.NewAdminService(a.Mapper, a.Registry, inspectors)
	return a, nil
}

func (a *App) openMappingStore() (schema.Store, error) {
	switch a.Config.Mapping.Store {
	case "database":
		store, err := schema.OpenDBStore(a.Config.Mapping.DBDriver, a.Config.Mapping.DBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		log.Printf("✅ Column mappings stored in %s table column_mappings", a.Config.Mapping.DBDriver)
		return store, nil
	default:
		store := schema.NewFileStore(a.Config.Mapping.File)
		log.Printf("✅ Column mappings stored in %s", store.Path())
		return store, nil
	}
}

// openSearchLog returns nil when the search log database is unusable; search
// logging is best effort.
func (a *App) openSearchLog(ctx context.Context) service.SearchLogger {
	dsn := a.Config.Search.LogDSN
	if dsn == "" && len(a.Config.Sources) > 0 {
		dsn = a.Config.Sources[0].GetDSN()
	}
	logs, err := repository.NewSearchLogRepository(dsn)
	if err != nil {
		log.Printf("⚠️  Search logging disabled: %v", err)
		return nil
	}
	if err := logs.EnsureTable(ctx); err != nil {
		log.Printf("⚠️  Search logging disabled: %v", err)
		logs.Close()
		return nil
	}
	a.closers = append(a.closers, logs.Close)
	log.Println("✅ Search logging enabled")
	return logs
}

// CheckSources pings every source and logs the outcome
func (a *App) CheckSources(ctx context.Context) {
	for _, status := range a.Admin.SourceStatus(ctx) {
		if status.Healthy {
			log.Printf("✅ Connected to %s", status.Source)
		} else {
			log.Printf("⚠️  %s unreachable: %s", status.Source, status.Error)
		}
	}
}

// Close waits for pending search log writes and releases every opened
// resource
func (a *App) Close() {
	if a.Search != nil {
		a.Search.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("⚠️  close: %v", err)
		}
	}
	a.closers = nil
}
