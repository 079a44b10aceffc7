// internal/services/overdue_sweep.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/checklist"
	"github.com/javajoker/admissions-checklist/internal/config"
	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
)

// Timezones run up to UTC+14, so no school's "today" is later than the UTC
// date 14 hours from now.
const maxZoneOffset = 14 * time.Hour

const overdueReason = "due date passed"

type SweepResult struct {
	Scanned      int `json:"scanned"`
	Transitioned int `json:"transitioned"`
	Conflicts    int `json:"conflicts"`
}

// OverdueSweeper marks outstanding items overdue once their due date has
// passed in the school's timezone. Every change is a compare-and-set on the
// status that was read, so a concurrent user update or a second sweeper wins
// cleanly and a rerun with nothing due writes nothing.
type OverdueSweeper struct {
	repo                repository.Repository
	notificationService *NotificationService
	batchSize           int
	defaultLocation     *time.Location

	mu        sync.Mutex
	locations map[string]*time.Location
}

func NewOverdueSweeper(repo repository.Repository, notificationService *NotificationService, cfg config.SweepConfig) (*OverdueSweeper, error) {
	defaultLocation := time.UTC
	if cfg.DefaultTimezone != "" {
		loc, err := time.LoadLocation(cfg.DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid default timezone: %w", err)
		}
		defaultLocation = loc
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	return &OverdueSweeper{
		repo:                repo,
		notificationService: notificationService,
		batchSize:           batchSize,
		defaultLocation:     defaultLocation,
		locations:           make(map[string]*time.Location),
	}, nil
}

// Run performs one sweep as of now. It stops between items when ctx is done
// and returns what was done so far together with ctx's error.
func (s *OverdueSweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult
	start := time.Now()

	y, m, d := now.UTC().Add(maxZoneOffset).Date()
	query := repository.OverdueQuery{
		DueBefore: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Limit:     s.batchSize,
	}

	for {
		candidates, err := s.repo.ListOverdueCandidates(ctx, query)
		if err != nil {
			return result, fmt.Errorf("failed to list overdue candidates: %w", err)
		}

		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				s.logResult(result, start).Warn("Overdue sweep interrupted")
				return result, err
			}

			result.Scanned++
			item := candidate.Item
			if !checklist.ShouldMarkOverdue(item, now, s.location(candidate.Timezone)) {
				continue
			}

			updated, err := s.markOverdue(ctx, item, now)
			if err != nil {
				return result, err
			}
			if updated {
				result.Transitioned++
			} else {
				result.Conflicts++
				logrus.WithFields(logrus.Fields{
					"item_id":         item.ID,
					"expected_status": item.Status,
				}).Info("Overdue sweep skipped item changed since it was read")
			}
		}

		if len(candidates) < query.Limit {
			break
		}
		query.AfterID = candidates[len(candidates)-1].Item.ID
	}

	s.logResult(result, start).Info("Overdue sweep completed")
	return result, nil
}

// markOverdue writes the status change and its side effects together. The
// event and notification are only written when the compare-and-set wins.
func (s *OverdueSweeper) markOverdue(ctx context.Context, item models.ChecklistItem, now time.Time) (bool, error) {
	var updated bool
	err := s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		ok, err := tx.TransitionStatusIf(ctx, item.ID, item.Status, models.ChecklistStatusOverdue, now)
		if err != nil {
			return fmt.Errorf("failed to mark item %s overdue: %w", item.ID, err)
		}
		if !ok {
			return nil
		}
		updated = true

		event := &models.ChecklistItemEvent{
			ChecklistItemID: item.ID,
			FromStatus:      item.Status,
			ToStatus:        models.ChecklistStatusOverdue,
			Reason:          overdueReason,
		}
		if err := tx.CreateItemEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to record overdue event: %w", err)
		}

		item.Status = models.ChecklistStatusOverdue
		if _, err := s.notificationService.NotifyItemOverdue(ctx, tx, &item); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (s *OverdueSweeper) location(name string) *time.Location {
	if name == "" {
		return s.defaultLocation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loc, ok := s.locations[name]; ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		logrus.WithError(err).WithField("timezone", name).Warn("Unknown school timezone, using default")
		loc = s.defaultLocation
	}
	s.locations[name] = loc
	return loc
}

func (s *OverdueSweeper) logResult(result SweepResult, start time.Time) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"scanned":      result.Scanned,
		"transitioned": result.Transitioned,
		"conflicts":    result.Conflicts,
		"duration":     time.Since(start).Milliseconds(),
	})
}

// Start schedules the sweep. A tick that fires while the previous run is
// still going is skipped. Runs are cancelled when ctx is done; the caller
// stops the returned scheduler on shutdown.
func (s *OverdueSweeper) Start(ctx context.Context, cfg config.SweepConfig) (*cron.Cron, error) {
	timeout := time.Duration(cfg.RunTimeout) * time.Second
	if timeout <= 0 {
		timeout = 4 * time.Minute
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(cfg.Schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if _, err := s.Run(runCtx, time.Now().UTC()); err != nil {
			logrus.WithError(err).Error("Overdue sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"schedule":   cfg.Schedule,
		"batch_size": s.batchSize,
		"timeout":    timeout.String(),
	}).Info("Overdue sweep scheduled")
	c.Start()
	return c, nil
}
