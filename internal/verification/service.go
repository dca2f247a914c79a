package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/auth"
	"github.com/careertodo/platform/internal/core/events"
)

// ListFilter narrows a request listing. Nil fields match everything.
type ListFilter struct {
	SubjectID   *int64
	RequesterID *int64
	Limit       int
	Offset      int
}

// Repository persists verification requests.
type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	ListForUser(userID int64, filter ListFilter) ([]*Request, error)
	ListAll(filter ListFilter) ([]*Request, error)

	// UpdateDecision writes an approval or rejection, but only if the
	// row is still pending. Returns ErrNotPending when another
	// decision got there first.
	UpdateDecision(req *Request) error

	HasActiveGrant(requesterID, subjectID int64, now time.Time) (bool, error)
	FindExpired(now time.Time, limit int) ([]*Request, error)
	MarkExpired(ids []int64, now time.Time) (int64, error)
}

// Subject is what the directory knows about a verification subject:
// their account type and, for students, their institution's account.
type Subject struct {
	AccountType  string
	UniversityID *int64
}

// SubjectDirectory resolves a prospective subject.
type SubjectDirectory interface {
	Resolve(userID int64) (*Subject, error)
}

type Service struct {
	repo     Repository
	subjects SubjectDirectory
	policy   *auth.SubjectPolicy
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, subjects SubjectDirectory, policy *auth.SubjectPolicy, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		subjects: subjects,
		policy:   policy,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create opens a new verification request in the pending state.
func (s *Service) Create(ctx context.Context, requester *auth.User, dto *CreateRequestDTO) (*RequestView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if requester.ID == dto.SubjectID {
		return nil, internal_errors.NewValidationError("cannot request verification of yourself", internal_errors.ErrCodeValidationFailed)
	}

	subject, err := s.subjects.Resolve(dto.SubjectID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return nil, internal_errors.NewNotFoundError("subject not found", internal_errors.ErrCodeUserNotFound)
		}
		return nil, fmt.Errorf("resolve subject account: %w", err)
	}
	if subject.AccountType != auth.AccountTypeStudent {
		return nil, internal_errors.NewValidationError("verification subjects must be student accounts", internal_errors.ErrCodeValidationFailed)
	}

	now := time.Now()
	req := &Request{
		RequesterID:        requester.ID,
		SubjectID:          dto.SubjectID,
		Purpose:            dto.Purpose,
		AccessDurationDays: dto.AccessDurationDays,
		Status:             StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(req); err != nil {
		return nil, fmt.Errorf("create verification request: %w", err)
	}

	s.publish(ctx, events.NewVerificationRequestedEvent(req.ID, req.RequesterID, req.SubjectID))

	s.logger.Info("verification request created",
		"request_id", req.ID,
		"requester_id", req.RequesterID,
		"subject_id", req.SubjectID,
		"duration_days", req.AccessDurationDays)

	return NewRequestView(req, now), nil
}

// Approve grants the request and starts its access window. Only the
// subject or someone with authority over them may decide, and the
// status swap is conditional on the row still being pending.
func (s *Service) Approve(ctx context.Context, decider *auth.User, requestID int64) (*RequestView, error) {
	req, err := s.loadForDecision(decider, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := req.Approve(decider.ID, now); err != nil {
		return nil, s.notPending(req, now)
	}

	if err := s.repo.UpdateDecision(req); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, s.notPending(req, now)
		}
		return nil, fmt.Errorf("approve verification request: %w", err)
	}

	s.publish(ctx, events.NewVerificationApprovedEvent(req.ID, req.SubjectID, decider.ID, *req.ExpiresAt))

	s.logger.Info("verification request approved",
		"request_id", req.ID,
		"approver_id", decider.ID,
		"expires_at", req.ExpiresAt)

	return NewRequestView(req, now), nil
}

// Reject closes the request with a mandatory reason.
func (s *Service) Reject(ctx context.Context, decider *auth.User, requestID int64, dto *RejectRequestDTO) (*RequestView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.loadForDecision(decider, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := req.Reject(decider.ID, dto.Reason, now); err != nil {
		return nil, s.notPending(req, now)
	}

	if err := s.repo.UpdateDecision(req); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, s.notPending(req, now)
		}
		return nil, fmt.Errorf("reject verification request: %w", err)
	}

	s.publish(ctx, events.NewVerificationRejectedEvent(req.ID, req.SubjectID, decider.ID, dto.Reason))

	s.logger.Info("verification request rejected",
		"request_id", req.ID,
		"approver_id", decider.ID)

	return NewRequestView(req, now), nil
}

// Get returns a single request, visible to its requester, its subject,
// and anyone with authority over the subject.
func (s *Service) Get(ctx context.Context, viewer *auth.User, requestID int64) (*RequestView, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, internal_errors.NewNotFoundError("verification request not found", internal_errors.ErrCodeRequestNotFound)
		}
		return nil, fmt.Errorf("get verification request: %w", err)
	}

	if err := s.policy.CanViewRequest(viewer, req.RequesterID, req.SubjectID, s.subjectUniversity(req.SubjectID)); err != nil {
		return nil, internal_errors.NewForbiddenError("not allowed to view this request", internal_errors.ErrCodeUnauthorizedAccess)
	}

	return NewRequestView(req, time.Now()), nil
}

// List returns the requests the viewer may see: overseers get the full
// queue, everyone else their own requests on either side. Filter fields
// narrow the result within that visibility.
func (s *Service) List(ctx context.Context, viewer *auth.User, filter ListFilter) ([]*RequestView, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var (
		requests []*Request
		err      error
	)
	if viewer.HasAnyPermission([]string{auth.PermissionManageStudents, auth.PermissionAdmin}) {
		requests, err = s.repo.ListAll(filter)
	} else {
		requests, err = s.repo.ListForUser(viewer.ID, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}

	now := time.Now()
	views := make([]*RequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, NewRequestView(req, now))
	}
	return views, nil
}

// HasActiveGrant reports whether viewerID holds an approved, unexpired
// request over subjectID. Satisfies the reputation access gate.
func (s *Service) HasActiveGrant(ctx context.Context, viewerID, subjectID int64) (bool, error) {
	return s.repo.HasActiveGrant(viewerID, subjectID, time.Now())
}

// SweepExpired rewrites approved rows whose window has elapsed to the
// expired status and emits an event per request. The derived status
// already reads as expired; the sweep keeps the stored rows and any
// downstream consumers in line.
func (s *Service) SweepExpired(ctx context.Context, batchSize int) (int64, error) {
	now := time.Now()

	expired, err := s.repo.FindExpired(now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("find expired requests: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(expired))
	for _, req := range expired {
		ids = append(ids, req.ID)
	}

	updated, err := s.repo.MarkExpired(ids, now)
	if err != nil {
		return 0, fmt.Errorf("mark expired requests: %w", err)
	}

	for _, req := range expired {
		s.publish(ctx, events.NewVerificationExpiredEvent(req.ID, req.SubjectID))
	}

	s.logger.Info("expired verification requests swept", "count", updated)

	return updated, nil
}

func (s *Service) loadForDecision(decider *auth.User, requestID int64) (*Request, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, internal_errors.NewNotFoundError("verification request not found", internal_errors.ErrCodeRequestNotFound)
		}
		return nil, fmt.Errorf("get verification request: %w", err)
	}

	if err := s.policy.CanDecideVerification(decider, req.SubjectID, s.subjectUniversity(req.SubjectID)); err != nil {
		s.logger.Warn("verification decision denied",
			"request_id", req.ID,
			"decider_id", decider.ID,
			"subject_id", req.SubjectID)
		return nil, internal_errors.NewForbiddenError("not allowed to decide this request", internal_errors.ErrCodeUnauthorizedAccess)
	}

	return req, nil
}

// subjectUniversity looks up the subject's institution for the policy.
// A subject the directory no longer resolves has no institution, and
// manage_students holders fall away with it.
func (s *Service) subjectUniversity(subjectID int64) *int64 {
	subject, err := s.subjects.Resolve(subjectID)
	if err != nil {
		return nil
	}
	return subject.UniversityID
}

func (s *Service) notPending(req *Request, now time.Time) error {
	return internal_errors.NewConflictError(
		fmt.Sprintf("request is %s, only pending requests can be decided", req.CurrentStatus(now)),
		internal_errors.ErrCodeInvalidRequestStatus)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
