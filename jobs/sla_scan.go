package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/vagaflow/vagaflow/internal/jobs"
	"github.com/vagaflow/vagaflow/internal/vacancies"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueLister returns open postings past their fill deadline. Satisfied by
// vacancies.PGRepository.
type OverdueLister interface {
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]vacancies.Vacancy, error)
}

// Mailer enqueues transactional mail. Satisfied by Client.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// SLAScanJob sweeps open postings and reports the ones past their 14-day
// fill deadline. Terminal postings are excluded at the query.
type SLAScanJob struct {
	Repo    OverdueLister
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSLAScanJob initialises the overdue sweep handler.
func NewSLAScanJob(repo OverdueLister, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *SLAScanJob {
	return &SLAScanJob{
		Repo:    repo,
		Mailer:  mailer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep.
func (j *SLAScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("sla scan: handler not configured")
	}
	var payload SLAScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 200
	}

	now := j.now()
	tracker := j.metrics().Track(TaskTypeSLAScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("limit", payload.Limit))
	logger.Info("starting sla scan")

	if j.Repo == nil {
		resultErr = errors.New("sla scan: repository not configured")
		return resultErr
	}
	overdue, err := j.Repo.ListOverdue(ctx, now, payload.Limit)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, v := range overdue {
		progress := v.Progress(now)
		logger.Warn("posting past fill deadline",
			slog.Int64("vacancy_id", v.ID),
			slog.Int64("company_id", v.CompanyID),
			slog.String("status", v.Status.String()),
			slog.Int("days_open", progress.DaysPassed),
			slog.Time("deadline", v.SLADeadline),
		)
		j.metrics().AddOverdue(v.CompanyID, 1)
	}

	if payload.NotifyEmail != "" && len(overdue) > 0 && j.Mailer != nil {
		if _, err := j.Mailer.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      payload.NotifyEmail,
			Subject: fmt.Sprintf("%d postings past fill deadline", len(overdue)),
			Body:    digestBody(overdue, now),
		}); err != nil {
			logger.Warn("enqueue digest", slog.Any("error", err))
		}
	}

	logger.Info("completed sla scan",
		slog.Int("overdue", len(overdue)),
		slog.Duration("duration", time.Since(now)),
	)
	return resultErr
}

func digestBody(overdue []vacancies.Vacancy, now time.Time) string {
	var b strings.Builder
	for _, v := range overdue {
		progress := v.Progress(now)
		fmt.Fprintf(&b, "#%d %s (company %d): %d days open, status %s\n",
			v.ID, v.Title, v.CompanyID, progress.DaysPassed, v.Status)
	}
	return b.String()
}

func (j *SLAScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSLAScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeSLAScan))
}

func (j *SLAScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SLAScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
