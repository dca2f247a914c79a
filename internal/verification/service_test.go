package verification_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/auth"
	"github.com/careertodo/platform/internal/core/events"
	"github.com/careertodo/platform/internal/verification"
)

// Mock repository for testing
type mockRequestRepository struct {
	requests    map[int64]*verification.Request
	nextID      int64
	createError error
	getError    error
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests: make(map[int64]*verification.Request),
		nextID:   1,
	}
}

func (m *mockRequestRepository) Create(req *verification.Request) error {
	if m.createError != nil {
		return m.createError
	}
	req.ID = m.nextID
	m.nextID++
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockRequestRepository) GetByID(id int64) (*verification.Request, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	req, exists := m.requests[id]
	if !exists {
		return nil, verification.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *mockRequestRepository) ListForUser(userID int64, filter verification.ListFilter) ([]*verification.Request, error) {
	var out []*verification.Request
	for _, req := range m.requests {
		if (req.RequesterID == userID || req.SubjectID == userID) && matchesFilter(req, filter) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRequestRepository) ListAll(filter verification.ListFilter) ([]*verification.Request, error) {
	var out []*verification.Request
	for _, req := range m.requests {
		if matchesFilter(req, filter) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matchesFilter(req *verification.Request, filter verification.ListFilter) bool {
	if filter.SubjectID != nil && req.SubjectID != *filter.SubjectID {
		return false
	}
	if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
		return false
	}
	return true
}

func (m *mockRequestRepository) UpdateDecision(req *verification.Request) error {
	stored, exists := m.requests[req.ID]
	if !exists || stored.Status != verification.StatusPending {
		return verification.ErrNotPending
	}
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockRequestRepository) HasActiveGrant(requesterID, subjectID int64, now time.Time) (bool, error) {
	for _, req := range m.requests {
		if req.RequesterID == requesterID && req.SubjectID == subjectID && req.GrantsAccessAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRequestRepository) FindExpired(now time.Time, limit int) ([]*verification.Request, error) {
	var out []*verification.Request
	for _, req := range m.requests {
		if req.Status == verification.StatusApproved && req.ExpiresAt != nil && now.After(*req.ExpiresAt) {
			cp := *req
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockRequestRepository) MarkExpired(ids []int64, now time.Time) (int64, error) {
	var updated int64
	for _, id := range ids {
		if req, exists := m.requests[id]; exists && req.Status == verification.StatusApproved {
			req.Status = verification.StatusExpired
			req.UpdatedAt = now
			updated++
		}
	}
	return updated, nil
}

type mockSubjectDirectory struct {
	subjects map[int64]verification.Subject
}

func (m *mockSubjectDirectory) Resolve(userID int64) (*verification.Subject, error) {
	s, exists := m.subjects[userID]
	if !exists {
		return nil, verification.ErrSubjectNotFound
	}
	return &s, nil
}

var _ = Describe("Verification Service", func() {
	var (
		service  *verification.Service
		repo     *mockRequestRepository
		subjects *mockSubjectDirectory
		ctx      context.Context
	)

	var (
		employer = &auth.User{ID: 100, Email: "hr@acme.com", AccountType: auth.AccountTypeEmployer}
		student  = &auth.User{ID: 200, Email: "student@uni.edu", AccountType: auth.AccountTypeStudent}
		stranger = &auth.User{ID: 300, Email: "other@uni.edu", AccountType: auth.AccountTypeStudent}
		overseer = &auth.User{ID: 400, Email: "dean@uni.edu", AccountType: auth.AccountTypeUniversity,
			Permissions: []string{auth.PermissionManageStudents}}
		rivalDean = &auth.User{ID: 500, Email: "dean@rival.edu", AccountType: auth.AccountTypeUniversity,
			Permissions: []string{auth.PermissionManageStudents}}
	)

	universityID := overseer.ID

	validDTO := func() *verification.CreateRequestDTO {
		return &verification.CreateRequestDTO{
			SubjectID:          student.ID,
			Purpose:            "background check for internship offer",
			AccessDurationDays: 7,
		}
	}

	BeforeEach(func() {
		repo = newMockRequestRepository()
		subjects = &mockSubjectDirectory{subjects: map[int64]verification.Subject{
			student.ID:  {AccountType: auth.AccountTypeStudent, UniversityID: &universityID},
			stranger.ID: {AccountType: auth.AccountTypeStudent, UniversityID: &universityID},
			overseer.ID: {AccountType: auth.AccountTypeUniversity},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		service = verification.NewService(repo, subjects, auth.NewSubjectPolicy(), bus, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should open a pending request with no expiry set", func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(view.Status).To(Equal(verification.StatusPending))
			Expect(view.ExpiresAt).To(BeNil())
			Expect(view.RequesterID).To(Equal(employer.ID))
			Expect(view.SubjectID).To(Equal(student.ID))
		})

		It("should reject a request targeting the requester themselves", func() {
			dto := validDTO()
			dto.SubjectID = employer.ID
			subjects.subjects[employer.ID] = verification.Subject{AccountType: auth.AccountTypeEmployer}

			_, err := service.Create(ctx, employer, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a subject that does not exist", func() {
			dto := validDTO()
			dto.SubjectID = 999

			_, err := service.Create(ctx, employer, dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeUserNotFound))
		})

		It("should reject a subject that is not a student account", func() {
			dto := validDTO()
			dto.SubjectID = overseer.ID

			_, err := service.Create(ctx, employer, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid duration before touching storage", func() {
			dto := validDTO()
			dto.AccessDurationDays = 10

			_, err := service.Create(ctx, employer, dto)
			Expect(err).To(HaveOccurred())
			Expect(repo.requests).To(BeEmpty())
		})
	})

	Describe("Approve", func() {
		var requestID int64

		BeforeEach(func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())
			requestID = view.ID
		})

		It("should let the subject approve their own request", func() {
			view, err := service.Approve(ctx, student, requestID)
			Expect(err).NotTo(HaveOccurred())

			Expect(view.Status).To(Equal(verification.StatusApproved))
			Expect(view.ExpiresAt).NotTo(BeNil())
			Expect(view.ApproverID).NotTo(BeNil())
			Expect(*view.ApproverID).To(Equal(student.ID))
		})

		It("should let an overseer approve on the subject's behalf", func() {
			view, err := service.Approve(ctx, overseer, requestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Status).To(Equal(verification.StatusApproved))
		})

		It("should deny a user with no authority over the subject", func() {
			_, err := service.Approve(ctx, stranger, requestID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeUnauthorizedAccess))
		})

		It("should deny a university that the subject is not enrolled at", func() {
			_, err := service.Approve(ctx, rivalDean, requestID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeUnauthorizedAccess))
		})

		It("should deny manage_students over a subject with no institution", func() {
			unaffiliated := int64(600)
			subjects.subjects[unaffiliated] = verification.Subject{AccountType: auth.AccountTypeStudent}
			dto := validDTO()
			dto.SubjectID = unaffiliated
			view, err := service.Create(ctx, employer, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, overseer, view.ID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeUnauthorizedAccess))
		})

		It("should refuse to approve the same request twice", func() {
			_, err := service.Approve(ctx, student, requestID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, student, requestID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeInvalidRequestStatus))
		})

		It("should refuse to approve after a rejection", func() {
			_, err := service.Reject(ctx, student, requestID, &verification.RejectRequestDTO{Reason: "no thanks"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, student, requestID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeInvalidRequestStatus))
		})

		It("should return not found for a missing request", func() {
			_, err := service.Approve(ctx, student, 9999)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeRequestNotFound))
		})
	})

	Describe("Reject", func() {
		var requestID int64

		BeforeEach(func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())
			requestID = view.ID
		})

		It("should require a reason", func() {
			_, err := service.Reject(ctx, student, requestID, &verification.RejectRequestDTO{Reason: "  "})
			Expect(err).To(HaveOccurred())
		})

		It("should record the reason and keep expiry unset", func() {
			view, err := service.Reject(ctx, student, requestID, &verification.RejectRequestDTO{Reason: "unknown requester"})
			Expect(err).NotTo(HaveOccurred())

			Expect(view.Status).To(Equal(verification.StatusRejected))
			Expect(view.RejectReason).NotTo(BeNil())
			Expect(view.ExpiresAt).To(BeNil())
		})

		It("should refuse to reject an approved request", func() {
			_, err := service.Approve(ctx, student, requestID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, student, requestID, &verification.RejectRequestDTO{Reason: "too late"})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeInvalidRequestStatus))
		})
	})

	Describe("Get and List", func() {
		var requestID int64

		BeforeEach(func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())
			requestID = view.ID
		})

		It("should show the request to requester, subject, and overseer", func() {
			for _, viewer := range []*auth.User{employer, student, overseer} {
				view, err := service.Get(ctx, viewer, requestID)
				Expect(err).NotTo(HaveOccurred(), "viewer %d should see the request", viewer.ID)
				Expect(view.ID).To(Equal(requestID))
			}
		})

		It("should hide the request from unrelated users", func() {
			_, err := service.Get(ctx, stranger, requestID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeUnauthorizedAccess))
		})

		It("should list only the caller's own requests for regular users", func() {
			views, err := service.List(ctx, employer, verification.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))

			views, err = service.List(ctx, stranger, verification.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(BeEmpty())
		})

		It("should list everything for overseers", func() {
			views, err := service.List(ctx, overseer, verification.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
		})

		It("should narrow the overseer listing by subject", func() {
			subjectID := student.ID
			views, err := service.List(ctx, overseer, verification.ListFilter{SubjectID: &subjectID})
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))

			otherID := stranger.ID
			views, err = service.List(ctx, overseer, verification.ListFilter{SubjectID: &otherID})
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(BeEmpty())
		})
	})

	Describe("Derived expiry", func() {
		It("should read an elapsed approval as expired and drop the grant", func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, student, view.ID)
			Expect(err).NotTo(HaveOccurred())

			// backdate the approval so the 7-day window has elapsed
			stored := repo.requests[view.ID]
			past := time.Now().AddDate(0, 0, -8)
			expired := past.AddDate(0, 0, stored.AccessDurationDays)
			stored.ExpiresAt = &expired

			got, err := service.Get(ctx, student, view.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(verification.StatusExpired))

			hasGrant, err := service.HasActiveGrant(ctx, employer.ID, student.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasGrant).To(BeFalse())
		})

		It("should report an active grant while the window is open", func() {
			view, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, student, view.ID)
			Expect(err).NotTo(HaveOccurred())

			hasGrant, err := service.HasActiveGrant(ctx, employer.ID, student.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasGrant).To(BeTrue())
		})
	})

	Describe("SweepExpired", func() {
		It("should rewrite elapsed approvals and leave the rest alone", func() {
			elapsed, err := service.Create(ctx, employer, validDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, student, elapsed.ID)
			Expect(err).NotTo(HaveOccurred())

			fresh, err := service.Create(ctx, stranger, validDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, student, fresh.ID)
			Expect(err).NotTo(HaveOccurred())

			past := time.Now().AddDate(0, 0, -1)
			repo.requests[elapsed.ID].ExpiresAt = &past

			updated, err := service.SweepExpired(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(Equal(int64(1)))

			Expect(repo.requests[elapsed.ID].Status).To(Equal(verification.StatusExpired))
			Expect(repo.requests[fresh.ID].Status).To(Equal(verification.StatusApproved))
		})

		It("should be a no-op when nothing has elapsed", func() {
			updated, err := service.SweepExpired(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeZero())
		})
	})
})
