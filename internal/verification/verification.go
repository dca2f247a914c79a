package verification

import (
	"errors"
	"time"
)

// Request statuses. Pending is the only state a decision can act on;
// expiry is derived from ExpiresAt rather than written eagerly.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// AllowedDurations are the access windows, in days, a requester may ask for.
var AllowedDurations = []int{7, 14, 30, 60, 90}

const MaxPurposeLength = 500

var (
	ErrRequestNotFound = errors.New("verification request not found")
	ErrSubjectNotFound = errors.New("verification subject not found")

	// ErrNotPending signals a decision raced another decision: the
	// row was no longer pending when the status swap ran.
	ErrNotPending = errors.New("verification request is not pending")
)

// Request is a time-boxed grant of access to a subject's verified
// profile data, asked for by an employer or investor and decided by the
// subject or someone with authority over them.
type Request struct {
	ID                 int64      `json:"id"`
	RequesterID        int64      `json:"requester_id"`
	SubjectID          int64      `json:"subject_id"`
	Purpose            string     `json:"purpose"`
	AccessDurationDays int        `json:"access_duration_days"`
	Status             string     `json:"status"`
	ApproverID         *int64     `json:"approver_id,omitempty"`
	RejectReason       *string    `json:"reject_reason,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsValidDuration reports whether days is one of the allowed windows.
func IsValidDuration(days int) bool {
	for _, d := range AllowedDurations {
		if d == days {
			return true
		}
	}
	return false
}

// CanBeApproved reports whether the request is still open for approval.
func (r *Request) CanBeApproved() bool {
	return r.Status == StatusPending
}

// CanBeRejected reports whether the request is still open for rejection.
func (r *Request) CanBeRejected() bool {
	return r.Status == StatusPending
}

// Approve marks the request approved by approverID and starts the
// access window: ExpiresAt becomes now plus the requested duration.
func (r *Request) Approve(approverID int64, now time.Time) error {
	if !r.CanBeApproved() {
		return ErrNotPending
	}
	expiresAt := now.AddDate(0, 0, r.AccessDurationDays)
	r.Status = StatusApproved
	r.ApproverID = &approverID
	r.ExpiresAt = &expiresAt
	r.ProcessedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject closes the request with a reason. ExpiresAt stays null; a
// rejected request never grants access.
func (r *Request) Reject(approverID int64, reason string, now time.Time) error {
	if !r.CanBeRejected() {
		return ErrNotPending
	}
	r.Status = StatusRejected
	r.ApproverID = &approverID
	r.RejectReason = &reason
	r.ProcessedAt = &now
	r.UpdatedAt = now
	return nil
}

// CurrentStatus derives the effective status at the given instant. An
// approved request whose window has passed reads as expired even before
// the reconciliation sweep rewrites the row. The window is inclusive:
// the request is still approved at the exact ExpiresAt instant.
func (r *Request) CurrentStatus(now time.Time) string {
	if r.Status == StatusApproved && r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}

// GrantsAccessAt reports whether the request authorizes the requester
// to view the subject's data at the given instant.
func (r *Request) GrantsAccessAt(now time.Time) bool {
	return r.CurrentStatus(now) == StatusApproved
}
