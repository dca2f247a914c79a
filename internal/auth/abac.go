package auth

import (
	"errors"
)

var ErrForbidden = errors.New("forbidden")

// SubjectPolicy decides whether a user has authority over a verification
// subject. Only the subject themselves, their own institution
// (manage_students), or an admin may decide a request targeting that
// subject; manage_students never reaches across universities.
type SubjectPolicy struct{}

func NewSubjectPolicy() *SubjectPolicy {
	return &SubjectPolicy{}
}

// HasAuthorityOver reports whether u may approve or reject requests whose
// subject is subjectID. subjectUniversityID is the subject's institution
// account, nil when they have none.
func (p *SubjectPolicy) HasAuthorityOver(u *User, subjectID int64, subjectUniversityID *int64) bool {
	if u == nil {
		return false
	}
	if u.ID == subjectID {
		return true
	}
	if u.HasPermission(PermissionAdmin) {
		return true
	}
	if !u.HasPermission(PermissionManageStudents) || subjectUniversityID == nil {
		return false
	}
	if u.ID == *subjectUniversityID {
		return true
	}
	// staff accounts enrolled under the same institution
	return u.UniversityID != nil && *u.UniversityID == *subjectUniversityID
}

// CanDecideVerification returns ErrForbidden when u lacks authority over the subject.
func (p *SubjectPolicy) CanDecideVerification(u *User, subjectID int64, subjectUniversityID *int64) error {
	if p.HasAuthorityOver(u, subjectID, subjectUniversityID) {
		return nil
	}
	return ErrForbidden
}

// CanViewRequest allows the requester, the subject, and anyone with authority
// over the subject to read a request.
func (p *SubjectPolicy) CanViewRequest(u *User, requesterID, subjectID int64, subjectUniversityID *int64) error {
	if u == nil {
		return ErrForbidden
	}
	if u.ID == requesterID || u.ID == subjectID {
		return nil
	}
	if p.HasAuthorityOver(u, subjectID, subjectUniversityID) {
		return nil
	}
	return ErrForbidden
}
