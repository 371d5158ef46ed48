package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeSLAScan is the task type for the overdue-posting sweep.
	TaskTypeSLAScan = "sla:scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// SLAScanPayload tunes one sweep over open postings.
type SLAScanPayload struct {
	// Limit caps how many overdue postings a single run reports.
	Limit int `json:"limit"`
	// NotifyEmail, when set, receives a digest of the overdue postings.
	NotifyEmail string `json:"notify_email,omitempty"`
}

// NewSLAScanTask constructs an Asynq task for the overdue sweep.
func NewSLAScanTask(limit int, notifyEmail string) (*asynq.Task, error) {
	data, err := json.Marshal(SLAScanPayload{Limit: limit, NotifyEmail: notifyEmail})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSLAScan, data), nil
}
