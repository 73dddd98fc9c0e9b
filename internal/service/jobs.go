package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/calendar"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
)

// JobRunner executes queued side effects in the worker.
type JobRunner struct {
	repo     *repository.Repository
	calendar CalendarSyncer
	confirm  ConfirmService
	staffing StaffingService
	logger   *zap.Logger
}

// NewJobRunner creates a JobRunner. calendar may be nil.
func NewJobRunner(repo *repository.Repository, cal CalendarSyncer, confirm ConfirmService, staffing StaffingService, logger *zap.Logger) *JobRunner {
	return &JobRunner{repo: repo, calendar: cal, confirm: confirm, staffing: staffing, logger: logger}
}

// Handle runs one job. Errors wrapping queue.ErrPermanent are not retried;
// a *queue.RetryError retries only what failed. The consumer counts results.
func (r *JobRunner) Handle(ctx context.Context, job queue.Job) error {
	switch job.Type {
	case queue.JobGigSaved:
		return r.syncCalendar(ctx, job.GigID)
	case queue.JobVenueConfirm:
		_, err := r.confirm.VenueConfirm(ctx, job.GigID, job.RequestedBy, false)
		return classify(err)
	case queue.JobPlayerConfirms:
		res, err := r.confirm.PlayerConfirms(ctx, job.GigID, job.MusicianIDs, job.RequestedBy, false)
		if errors.Is(err, ErrDeliveryFailed) && res != nil {
			return retryFailed(job, err, res.Results, func(next *queue.Job, f dto.SendResult) {
				next.MusicianIDs = append(next.MusicianIDs, f.MusicianID)
			})
		}
		return classify(err)
	case queue.JobStaffingDigest:
		var res *dto.DigestResponse
		var err error
		if len(job.Recipients) > 0 {
			res, err = r.staffing.ResendDigest(ctx, job.RequestedBy, job.Recipients)
		} else {
			res, err = r.staffing.SendDigest(ctx, job.RequestedBy, false)
		}
		if errors.Is(err, ErrDeliveryFailed) && res != nil {
			return retryFailed(job, err, res.Results, func(next *queue.Job, f dto.SendResult) {
				next.Recipients = append(next.Recipients, f.Recipient)
			})
		}
		return classify(err)
	}
	return fmt.Errorf("%w: unknown job type %q", queue.ErrPermanent, job.Type)
}

func (r *JobRunner) syncCalendar(ctx context.Context, gigID string) error {
	if r.calendar == nil {
		r.logger.Debug("calendar sync disabled", zap.String("gig_id", gigID))
		return nil
	}
	gig, err := r.repo.Gig.GetDetail(ctx, gigID)
	if err != nil {
		return classify(notFoundAs(err, ErrGigNotFound))
	}
	if err := r.calendar.UpsertGig(ctx, gig); err != nil {
		if errors.Is(err, calendar.ErrNoCalendar) {
			return fmt.Errorf("%w: %w", queue.ErrPermanent, err)
		}
		return err
	}
	return nil
}

// retryFailed narrows job to the recipients whose send failed, so a retry
// never mails someone who already got the message.
func retryFailed(job queue.Job, err error, results []dto.SendResult, add func(next *queue.Job, f dto.SendResult)) error {
	next := job
	next.MusicianIDs, next.Recipients = nil, nil
	var n int
	for _, res := range results {
		if strings.HasPrefix(res.Status, model.EmailStatusError) {
			add(&next, res)
			n++
		}
	}
	if n == 0 {
		return err
	}
	return &queue.RetryError{Job: next, Err: err}
}

// classify only delivery failures are worth another attempt; anything else
// is a state problem that a retry cannot fix.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrDeliveryFailed) {
		return err
	}
	var fields *UnknownFieldsError
	if errors.As(err, &fields) {
		return fmt.Errorf("%w: %w", queue.ErrPermanent, err)
	}
	for _, permanent := range []error{
		ErrGigNotFound, ErrGigTimesMissing, ErrConfirmPrivateGig, ErrConfirmAgentManaged,
		ErrConfirmNoVenue, ErrConfirmNoVenueEmail, ErrConfirmNoStaffing,
	} {
		if errors.Is(err, permanent) {
			return fmt.Errorf("%w: %w", queue.ErrPermanent, err)
		}
	}
	return err
}
