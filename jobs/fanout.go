package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-lms/meridian-lms/internal/notices"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// NoticeStore is the slice of the notices repository fan-out needs.
type NoticeStore interface {
	GetNotice(ctx context.Context, id int64) (*notices.Notice, error)
	RecipientEmails(ctx context.Context, n notices.Notice) ([]string, error)
}

// Mailer delivers one message. The SMTP implementation lives in the worker
// binary; tests swap in a recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// FanoutProcessor delivers published notices to their audience.
type FanoutProcessor struct {
	store  NoticeStore
	mailer Mailer
	logger *slog.Logger
}

// NewFanoutProcessor constructs a FanoutProcessor.
func NewFanoutProcessor(store NoticeStore, mailer Mailer, logger *slog.Logger) *FanoutProcessor {
	return &FanoutProcessor{store: store, mailer: mailer, logger: logger}
}

// HandleNoticeFanout processes TaskTypeNoticeFanout tasks. A notice deleted
// before delivery is not an error.
func (p *FanoutProcessor) HandleNoticeFanout(ctx context.Context, t *asynq.Task) error {
	var payload NoticeFanoutPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	notice, err := p.store.GetNotice(ctx, payload.NoticeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	emails, err := p.store.RecipientEmails(ctx, *notice)
	if err != nil {
		return err
	}
	delivered := 0
	for _, to := range emails {
		if err := p.mailer.Send(ctx, to, notice.Title, notice.Body); err != nil {
			if p.logger != nil {
				p.logger.Warn("notice delivery failed",
					slog.String("to", to), slog.Any("error", err))
			}
			continue
		}
		delivered++
	}
	if p.logger != nil {
		p.logger.Info("notice fanned out",
			slog.Int64("notice_id", notice.ID),
			slog.Int("delivered", delivered),
			slog.Int("recipients", len(emails)))
	}
	return nil
}
