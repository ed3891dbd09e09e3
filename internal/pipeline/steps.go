package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ohack/grantfinder/internal/analyzer"
	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/crawler"
	"github.com/ohack/grantfinder/internal/database"
	"github.com/ohack/grantfinder/internal/model"
	"github.com/ohack/grantfinder/internal/notify"
	"github.com/ohack/grantfinder/internal/seeds"
)

// SeedStep gathers the run's starting URLs.
type SeedStep struct {
	collector *seeds.Collector
}

// NewSeedStep creates the seed collection step.
func NewSeedStep(cfg *config.Config, logger *slog.Logger) *SeedStep {
	return &SeedStep{collector: seeds.NewCollector(cfg, logger)}
}

// Name returns the step's name.
func (s *SeedStep) Name() string { return "collect-seeds" }

// Do collects seeds and records them in the report.
func (s *SeedStep) Do(ctx context.Context, report *model.RunReport) error {
	result, err := s.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("seed collection failed: %w", err)
	}
	if len(result.URLs) == 0 {
		return fmt.Errorf("no seed URLs available")
	}
	report.Seeds = result.URLs
	report.SeedsFromSearch = result.FromSearch
	report.SeedsFromFeeds = result.FromFeeds
	return nil
}

// CrawlStep runs the crawl engine with the analyzer as the page
// processor.
type CrawlStep struct {
	crawler  *crawler.Crawler
	analyzer *analyzer.Analyzer
}

// NewCrawlStep creates the crawl-and-analyze step.
func NewCrawlStep(cfg *config.Config, logger *slog.Logger) (*CrawlStep, error) {
	c, err := crawler.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &CrawlStep{crawler: c, analyzer: analyzer.New(cfg, logger)}, nil
}

// Name returns the step's name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do crawls from the report's seeds and stores results and statistics.
// A canceled context still keeps the partial results.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	grants, stats, err := s.crawler.Crawl(ctx, report.Seeds, s.analyzer.Process)
	report.Grants = grants
	report.Stats = stats
	return err
}

// PersistStep saves the run's grants and summary to the database.
type PersistStep struct {
	db *database.GrantDB
}

// NewPersistStep creates the persistence step. The database stays open
// for the pipeline's lifetime; callers close it after Execute.
func NewPersistStep(db *database.GrantDB) *PersistStep {
	return &PersistStep{db: db}
}

// Name returns the step's name.
func (s *PersistStep) Name() string { return "persist" }

// Do upserts the grants and records the run.
func (s *PersistStep) Do(ctx context.Context, report *model.RunReport) error {
	saved, err := s.db.SaveGrants(ctx, report.Grants)
	report.GrantsPersisted = saved
	if err != nil {
		return fmt.Errorf("persisting grants: %w", err)
	}
	if err := s.db.SaveRun(ctx, report); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// NotifyStep emails the run summary when notification is configured.
type NotifyStep struct {
	mailer *notify.Mailer
}

// NewNotifyStep creates the notification step.
func NewNotifyStep(cfg *config.Config, logger *slog.Logger) *NotifyStep {
	return &NotifyStep{mailer: notify.NewMailer(cfg, logger)}
}

// Name returns the step's name.
func (s *NotifyStep) Name() string { return "notify" }

// Do sends the notification email and records whether one went out.
func (s *NotifyStep) Do(_ context.Context, report *model.RunReport) error {
	sent, err := s.mailer.Send(report)
	report.NotificationSent = sent
	return err
}
