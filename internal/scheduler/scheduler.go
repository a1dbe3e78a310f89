// Package scheduler runs the weekly report job: generate the coach and
// sales reports for the last seven days, mail them to the admin and
// archive them to object storage.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"alcyxob/gym-platform/internal/config"
	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/lock"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/metrics"
	"alcyxob/gym-platform/internal/storage"

	"github.com/robfig/cron/v3"
)

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"

	weeklyDays = 7
)

var ErrRunInProgress = errors.New("weekly report run already in progress")

type ReportGenerator interface {
	GenerateReport(ctx context.Context, reportType domain.ReportType, startDate, endDate string) (*domain.Report, error)
}

type Mailer interface {
	SendReport(ctx context.Context, to string, report *domain.Report) error
}

// RunResult describes one completed run.
type RunResult struct {
	Trigger  string              `json:"trigger"`
	Period   domain.ReportPeriod `json:"period"`
	Reports  []*domain.Report    `json:"reports"`
	Mailed   []domain.ReportType `json:"mailed"`
	Archived []string            `json:"archived,omitempty"`
}

type Scheduler struct {
	reports ReportGenerator
	mailer  Mailer              // nil disables mailing
	store   storage.FileStorage // nil disables archiving
	locker  lock.Locker         // nil means single replica
	cfg     config.ScheduleConfig
	clock   datetime.Clock

	mu   sync.Mutex
	cron *cron.Cron
}

func New(reports ReportGenerator, mailer Mailer, store storage.FileStorage, locker lock.Locker, cfg config.ScheduleConfig, clock datetime.Clock) *Scheduler {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Scheduler{
		reports: reports,
		mailer:  mailer,
		store:   store,
		locker:  locker,
		cfg:     cfg,
		clock:   clock,
	}
}

// Start registers the weekly job on cfg.WeeklyCron in the clock's zone.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithLocation(s.clock.Location()))
	if _, err := c.AddFunc(s.cfg.WeeklyCron, func() {
		if _, err := s.RunWeekly(context.Background(), TriggerCron); err != nil {
			logger.WithError(err).Error("scheduled weekly report failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid weekly cron %q: %w", s.cfg.WeeklyCron, err)
	}
	c.Start()
	s.cron = c
	logger.Info("weekly report scheduler started", "cron", s.cfg.WeeklyCron, "timezone", s.clock.Location().String())
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// WeeklyPeriod is the seven days ending on the day of now.
func WeeklyPeriod(now time.Time) domain.ReportPeriod {
	end := datetime.StartOfDay(now)
	start := end.AddDate(0, 0, -(weeklyDays - 1))
	return domain.ReportPeriod{Start: datetime.FormatDate(start), End: datetime.FormatDate(end)}
}

// RunWeekly generates, mails and archives both reports. Only one run may
// be in flight per process, and per period across replicas when a Locker
// is configured.
func (s *Scheduler) RunWeekly(ctx context.Context, trigger string) (*RunResult, error) {
	if !s.mu.TryLock() {
		metrics.RecordReportRun(trigger, "skipped")
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	period := WeeklyPeriod(s.clock.Now())
	if s.locker != nil {
		key := fmt.Sprintf("reports:weekly:%s:%s", period.Start, period.End)
		ok, err := s.locker.Lock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			metrics.RecordReportRun(trigger, "error")
			return nil, err
		}
		if !ok {
			metrics.RecordReportRun(trigger, "skipped")
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
				logger.WithError(err).Warn("failed to release weekly report lock", "key", key)
			}
		}()
	}

	log := logger.L().With("trigger", trigger, "start", period.Start, "end", period.End)
	log.Info("weekly report run started")

	result := &RunResult{Trigger: trigger, Period: period}
	var errs []error
	for _, t := range []domain.ReportType{domain.ReportCoach, domain.ReportSales} {
		report, err := s.reports.GenerateReport(ctx, t, period.Start, period.End)
		if err != nil {
			errs = append(errs, fmt.Errorf("generate %s report: %w", t, err))
			continue
		}
		result.Reports = append(result.Reports, report)

		if s.mailer != nil && s.cfg.AdminEmail != "" {
			if err := s.mailer.SendReport(ctx, s.cfg.AdminEmail, report); err != nil {
				errs = append(errs, fmt.Errorf("mail %s report: %w", t, err))
			} else {
				result.Mailed = append(result.Mailed, t)
			}
		}

		if s.store != nil {
			key, err := s.archive(ctx, report)
			if err != nil {
				errs = append(errs, fmt.Errorf("archive %s report: %w", t, err))
			} else {
				result.Archived = append(result.Archived, key)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		metrics.RecordReportRun(trigger, "error")
		log.Error("weekly report run finished with errors", "error", err)
		return result, err
	}
	metrics.RecordReportRun(trigger, "success")
	log.Info("weekly report run finished", "mailed", len(result.Mailed), "archived", len(result.Archived))
	return result, nil
}

func (s *Scheduler) archive(ctx context.Context, report *domain.Report) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("reports/weekly/%s_%s/%s.json", report.Period.Start, report.Period.End, report.Type)
	if err := s.store.PutObject(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	return key, nil
}
