package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeVerificationRequested = "verification.requested"
	EventTypeVerificationApproved  = "verification.approved"
	EventTypeVerificationRejected  = "verification.rejected"
	EventTypeVerificationExpired   = "verification.expired"
)

type VerificationRequestedEvent struct {
	BaseEvent
	RequestID   int64 `json:"request_id"`
	RequesterID int64 `json:"requester_id"`
	SubjectID   int64 `json:"subject_id"`
}

func NewVerificationRequestedEvent(requestID, requesterID, subjectID int64) *VerificationRequestedEvent {
	return &VerificationRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeVerificationRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"subject_id":   subjectID,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		SubjectID:   subjectID,
	}
}

type VerificationApprovedEvent struct {
	BaseEvent
	RequestID  int64     `json:"request_id"`
	SubjectID  int64     `json:"subject_id"`
	ApproverID int64     `json:"approver_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func NewVerificationApprovedEvent(requestID, subjectID, approverID int64, expiresAt time.Time) *VerificationApprovedEvent {
	return &VerificationApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeVerificationApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"subject_id":  subjectID,
				"approver_id": approverID,
				"expires_at":  expiresAt,
			},
		},
		RequestID:  requestID,
		SubjectID:  subjectID,
		ApproverID: approverID,
		ExpiresAt:  expiresAt,
	}
}

type VerificationRejectedEvent struct {
	BaseEvent
	RequestID  int64  `json:"request_id"`
	SubjectID  int64  `json:"subject_id"`
	ApproverID int64  `json:"approver_id"`
	Reason     string `json:"reason"`
}

func NewVerificationRejectedEvent(requestID, subjectID, approverID int64, reason string) *VerificationRejectedEvent {
	return &VerificationRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeVerificationRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"subject_id":  subjectID,
				"approver_id": approverID,
				"reason":      reason,
			},
		},
		RequestID:  requestID,
		SubjectID:  subjectID,
		ApproverID: approverID,
		Reason:     reason,
	}
}

type VerificationExpiredEvent struct {
	BaseEvent
	RequestID int64 `json:"request_id"`
	SubjectID int64 `json:"subject_id"`
}

func NewVerificationExpiredEvent(requestID, subjectID int64) *VerificationExpiredEvent {
	return &VerificationExpiredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeVerificationExpired,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"subject_id": subjectID,
			},
		},
		RequestID: requestID,
		SubjectID: subjectID,
	}
}
