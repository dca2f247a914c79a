package postgres

import (
	"time"

	"gorm.io/gorm"

	datamodel "github.com/careertodo/platform/internal/core/datamodel/verification"
	"github.com/careertodo/platform/internal/verification"
)

// RequestRepository implements the verification.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new verification request repository
func NewRequestRepository(db *gorm.DB) verification.Repository {
	return &RequestRepository{db: db}
}

// Create saves a new verification request
func (r *RequestRepository) Create(req *verification.Request) error {
	row := toRow(req)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	req.ID = row.ID
	req.CreatedAt = row.CreatedAt
	req.UpdatedAt = row.UpdatedAt
	return nil
}

// GetByID retrieves a verification request by its ID
func (r *RequestRepository) GetByID(id int64) (*verification.Request, error) {
	var row datamodel.Request
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, verification.ErrRequestNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

// ListForUser retrieves requests where the user is requester or subject
func (r *RequestRepository) ListForUser(userID int64, filter verification.ListFilter) ([]*verification.Request, error) {
	var rows []datamodel.Request
	q := applyFilter(r.db.Where("requester_id = ? OR subject_id = ?", userID, userID), filter)
	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// ListAll retrieves requests across all users, newest first
func (r *RequestRepository) ListAll(filter verification.ListFilter) ([]*verification.Request, error) {
	var rows []datamodel.Request
	err := applyFilter(r.db, filter).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func applyFilter(q *gorm.DB, filter verification.ListFilter) *gorm.DB {
	if filter.SubjectID != nil {
		q = q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.RequesterID != nil {
		q = q.Where("requester_id = ?", *filter.RequesterID)
	}
	return q
}

// UpdateDecision writes the decision fields, guarded on the row still
// being pending. Zero affected rows means the request was decided
// concurrently and the caller's decision must not land.
func (r *RequestRepository) UpdateDecision(req *verification.Request) error {
	result := r.db.Model(&datamodel.Request{}).
		Where("id = ? AND status = ?", req.ID, verification.StatusPending).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"approver_id":   req.ApproverID,
			"reject_reason": req.RejectReason,
			"expires_at":    req.ExpiresAt,
			"processed_at":  req.ProcessedAt,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return verification.ErrNotPending
	}
	return nil
}

// HasActiveGrant reports an approved request from requester over subject
// whose window has not yet elapsed
func (r *RequestRepository) HasActiveGrant(requesterID, subjectID int64, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&datamodel.Request{}).
		Where("requester_id = ? AND subject_id = ? AND status = ? AND expires_at >= ?",
			requesterID, subjectID, verification.StatusApproved, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindExpired returns approved requests whose access window has elapsed
func (r *RequestRepository) FindExpired(now time.Time, limit int) ([]*verification.Request, error) {
	var rows []datamodel.Request
	err := r.db.Where("status = ? AND expires_at < ?", verification.StatusApproved, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// MarkExpired rewrites elapsed approvals to the expired status
func (r *RequestRepository) MarkExpired(ids []int64, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&datamodel.Request{}).
		Where("id IN ? AND status = ?", ids, verification.StatusApproved).
		Updates(map[string]interface{}{
			"status":     verification.StatusExpired,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func toRow(req *verification.Request) *datamodel.Request {
	return &datamodel.Request{
		ID:                 req.ID,
		RequesterID:        req.RequesterID,
		SubjectID:          req.SubjectID,
		Purpose:            req.Purpose,
		AccessDurationDays: req.AccessDurationDays,
		Status:             req.Status,
		ApproverID:         req.ApproverID,
		RejectReason:       req.RejectReason,
		ExpiresAt:          req.ExpiresAt,
		ProcessedAt:        req.ProcessedAt,
	}
}

func toDomain(row *datamodel.Request) *verification.Request {
	return &verification.Request{
		ID:                 row.ID,
		RequesterID:        row.RequesterID,
		SubjectID:          row.SubjectID,
		Purpose:            row.Purpose,
		AccessDurationDays: row.AccessDurationDays,
		Status:             row.Status,
		ApproverID:         row.ApproverID,
		RejectReason:       row.RejectReason,
		ExpiresAt:          row.ExpiresAt,
		ProcessedAt:        row.ProcessedAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func toDomainSlice(rows []datamodel.Request) []*verification.Request {
	out := make([]*verification.Request, 0, len(rows))
	for i := range rows {
		out = append(out, toDomain(&rows[i]))
	}
	return out
}
