package verification

import (
	"strings"
	"time"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/core/common/validation"
)

// CreateRequestDTO is the payload for opening a verification request.
type CreateRequestDTO struct {
	SubjectID          int64  `json:"subject_id"`
	Purpose            string `json:"purpose"`
	AccessDurationDays int    `json:"access_duration_days"`
}

func (d *CreateRequestDTO) Validate() error {
	d.Purpose = strings.TrimSpace(d.Purpose)

	validator := validation.NewValidator()

	validator.Field("subject_id", d.SubjectID).Required()
	validator.Field("purpose", d.Purpose).Required().MaxLength(MaxPurposeLength)
	validator.Field("access_duration_days", d.AccessDurationDays).OneOfInt(AllowedDurations, internal_errors.ErrCodeInvalidDuration)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// RejectRequestDTO carries the mandatory reason for a rejection.
type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

func (d *RejectRequestDTO) Validate() error {
	d.Reason = strings.TrimSpace(d.Reason)

	validator := validation.NewValidator()

	validator.Field("reason", d.Reason).Required().MaxLength(MaxPurposeLength)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// RequestView is the read model for a request. Status is the derived
// status at read time, so an elapsed approval reads as expired.
type RequestView struct {
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
}

func NewRequestView(r *Request, now time.Time) *RequestView {
	return &RequestView{
		ID:                 r.ID,
		RequesterID:        r.RequesterID,
		SubjectID:          r.SubjectID,
		Purpose:            r.Purpose,
		AccessDurationDays: r.AccessDurationDays,
		Status:             r.CurrentStatus(now),
		ApproverID:         r.ApproverID,
		RejectReason:       r.RejectReason,
		ExpiresAt:          r.ExpiresAt,
		ProcessedAt:        r.ProcessedAt,
		CreatedAt:          r.CreatedAt,
	}
}
