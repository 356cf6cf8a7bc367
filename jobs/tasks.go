// Package jobs holds background task definitions and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAttendanceDigest rebuilds a branch's daily attendance digest.
	TaskTypeAttendanceDigest = "attendance:digest"
	// TaskTypeNoticeFanout delivers a published notice to its audience.
	TaskTypeNoticeFanout = "notice:fanout"
	// TaskTypeNightlyDigest fans out digest rebuilds for every branch.
	TaskTypeNightlyDigest = "attendance:nightly"
)

// AttendanceDigestPayload identifies one branch-day to aggregate.
type AttendanceDigestPayload struct {
	Branch string `json:"branch"`
	Date   string `json:"date"`
}

// NoticeFanoutPayload identifies the notice to deliver.
type NoticeFanoutPayload struct {
	NoticeID int64 `json:"notice_id"`
}

// NewAttendanceDigestTask constructs an Asynq task.
func NewAttendanceDigestTask(branch string, day time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(AttendanceDigestPayload{Branch: branch, Date: day.Format("2006-01-02")})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAttendanceDigest, data), nil
}

// NewNoticeFanoutTask constructs an Asynq task.
func NewNoticeFanoutTask(noticeID int64) (*asynq.Task, error) {
	data, err := json.Marshal(NoticeFanoutPayload{NoticeID: noticeID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNoticeFanout, data), nil
}

// NewNightlyDigestTask constructs the cron task that covers every branch.
func NewNightlyDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeNightlyDigest, nil)
}
