package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"ride-enrichment/internal/pipeline"
	"ride-enrichment/internal/store"
)

// Scheduler periodically executes the enrichment pipeline and records each
// run in the history store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  *pipeline.Pipeline
	store     *store.MemoryStore
	interval  time.Duration
}

// New creates a new Scheduler.
func New(p *pipeline.Pipeline, s *store.MemoryStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pipeline:  p,
		store:     s,
		interval:  interval,
	}
}

// Start schedules the periodic pipeline job and starts the underlying
// scheduler. The first run fires immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(func() {
		log.Println("scheduler: running enrichment pipeline")

		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		summary, err := s.pipeline.Run(ctx)
		if err != nil {
			log.Printf("scheduler: pipeline run failed: %v", err)
		}
		if summary != nil {
			s.store.SaveRun(*summary)
		}

		log.Println("scheduler: completed enrichment pipeline run")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
