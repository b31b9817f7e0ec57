package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// MappingReloader reloads the column mapping from its durable store
type MappingReloader interface {
	Reload(ctx context.Context) error
}

// MappingRefresher periodically reloads the column mapping so that repairs
// made by other processes sharing the store become visible.
type MappingRefresher struct {
	cronRunner *cron.Cron
	mapper     MappingReloader
	timeout    time.Duration
}

// NewMappingRefresher schedules reloads on a six-field cron spec
// (seconds first), e.g. "0 */5 * * * *".
func NewMappingRefresher(spec string, mapper MappingReloader) (*MappingRefresher, error) {
	logger := cron.VerbosePrintfLogger(log.Default())
	r := &MappingRefresher{
		cronRunner: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(
				cron.SkipIfStillRunning(logger),
				cron.Recover(logger),
			),
		),
		mapper:  mapper,
		timeout: 30 * time.Second,
	}
	if _, err := r.cronRunner.AddFunc(spec, r.refresh); err != nil {
		return nil, fmt.Errorf("invalid mapping reload schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start starts the schedule
func (r *MappingRefresher) Start() {
	r.cronRunner.Start()
	log.Printf("✅ Mapping reload scheduled")
}

// Stop stops the schedule and waits for a running reload
func (r *MappingRefresher) Stop() {
	<-r.cronRunner.Stop().Done()
}

func (r *MappingRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.mapper.Reload(ctx); err != nil {
		log.Printf("⚠️  Mapping reload failed: %v", err)
	}
}
