package jobs

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-lms/meridian-lms/internal/attendance"
)

// DigestStore is the slice of the attendance repository the digest jobs use.
type DigestStore interface {
	DigestForBranch(ctx context.Context, branch string, day time.Time) ([]attendance.DigestRow, error)
	Branches(ctx context.Context, day time.Time) ([]string, error)
	SaveDigest(ctx context.Context, day time.Time, rows []attendance.DigestRow) error
}

// DigestProcessor aggregates attendance into per-branch digests.
type DigestProcessor struct {
	store  DigestStore
	logger *slog.Logger
}

// NewDigestProcessor constructs a DigestProcessor.
func NewDigestProcessor(store DigestStore, logger *slog.Logger) *DigestProcessor {
	return &DigestProcessor{store: store, logger: logger}
}

// HandleAttendanceDigest processes TaskTypeAttendanceDigest tasks.
func (p *DigestProcessor) HandleAttendanceDigest(ctx context.Context, t *asynq.Task) error {
	var payload AttendanceDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	day, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return asynq.SkipRetry
	}
	return p.rebuild(ctx, payload.Branch, day)
}

// HandleNightlyDigest processes the cron task, rebuilding every branch that
// recorded attendance yesterday.
func (p *DigestProcessor) HandleNightlyDigest(ctx context.Context, t *asynq.Task) error {
	day := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	branches, err := p.store.Branches(ctx, day)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, branch := range branches {
		g.Go(func() error {
			return p.rebuild(gctx, branch, day)
		})
	}
	return g.Wait()
}

func (p *DigestProcessor) rebuild(ctx context.Context, branch string, day time.Time) error {
	rows, err := p.store.DigestForBranch(ctx, branch, day)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("attendance digest failed",
				slog.String("branch", branch), slog.Any("error", err))
		}
		return err
	}
	if err := p.store.SaveDigest(ctx, day, rows); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Info("attendance digest rebuilt",
			slog.String("branch", branch),
			slog.String("date", day.Format("2006-01-02")),
			slog.Int("sections", len(rows)))
	}
	return nil
}
