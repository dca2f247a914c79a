package verification_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/careertodo/platform/internal/verification"
)

func TestVerification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Verification Suite")
}

var _ = Describe("Verification Request", func() {
	var (
		req *verification.Request
		now time.Time
	)

	BeforeEach(func() {
		now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		req = &verification.Request{
			ID:                 1,
			RequesterID:        100,
			SubjectID:          200,
			Purpose:            "background check for internship offer",
			AccessDurationDays: 30,
			Status:             verification.StatusPending,
			CreatedAt:          now,
		}
	})

	Describe("Approve", func() {
		It("should move a pending request to approved and set the access window", func() {
			err := req.Approve(200, now)
			Expect(err).NotTo(HaveOccurred())

			Expect(req.Status).To(Equal(verification.StatusApproved))
			Expect(req.ApproverID).NotTo(BeNil())
			Expect(*req.ApproverID).To(Equal(int64(200)))
			Expect(req.ExpiresAt).NotTo(BeNil())
			Expect(*req.ExpiresAt).To(Equal(now.AddDate(0, 0, 30)))
			Expect(req.ProcessedAt).NotTo(BeNil())
		})

		It("should refuse to approve an already approved request", func() {
			Expect(req.Approve(200, now)).To(Succeed())

			err := req.Approve(201, now.Add(time.Hour))
			Expect(err).To(MatchError(verification.ErrNotPending))
		})

		It("should refuse to approve a rejected request", func() {
			Expect(req.Reject(200, "not comfortable sharing", now)).To(Succeed())

			err := req.Approve(200, now.Add(time.Hour))
			Expect(err).To(MatchError(verification.ErrNotPending))
		})
	})

	Describe("Reject", func() {
		It("should move a pending request to rejected with the reason", func() {
			err := req.Reject(200, "unknown requester", now)
			Expect(err).NotTo(HaveOccurred())

			Expect(req.Status).To(Equal(verification.StatusRejected))
			Expect(req.RejectReason).NotTo(BeNil())
			Expect(*req.RejectReason).To(Equal("unknown requester"))
			Expect(req.ExpiresAt).To(BeNil())
		})

		It("should refuse to reject an approved request", func() {
			Expect(req.Approve(200, now)).To(Succeed())

			err := req.Reject(200, "changed my mind", now.Add(time.Hour))
			Expect(err).To(MatchError(verification.ErrNotPending))
		})
	})

	Describe("CurrentStatus", func() {
		It("should read as approved while inside the access window", func() {
			Expect(req.Approve(200, now)).To(Succeed())

			withinWindow := now.AddDate(0, 0, 6)
			Expect(req.CurrentStatus(withinWindow)).To(Equal(verification.StatusApproved))
			Expect(req.GrantsAccessAt(withinWindow)).To(BeTrue())
		})

		It("should read as expired once the window has elapsed", func() {
			req.AccessDurationDays = 7
			Expect(req.Approve(200, now)).To(Succeed())

			afterWindow := now.AddDate(0, 0, 8)
			Expect(req.CurrentStatus(afterWindow)).To(Equal(verification.StatusExpired))
			Expect(req.GrantsAccessAt(afterWindow)).To(BeFalse())
		})

		It("should still read as approved exactly at the boundary instant", func() {
			req.AccessDurationDays = 7
			Expect(req.Approve(200, now)).To(Succeed())

			boundary := now.AddDate(0, 0, 7)
			Expect(req.CurrentStatus(boundary)).To(Equal(verification.StatusApproved))
			Expect(req.GrantsAccessAt(boundary)).To(BeTrue())

			Expect(req.CurrentStatus(boundary.Add(time.Nanosecond))).To(Equal(verification.StatusExpired))
		})

		It("should leave pending and rejected requests untouched", func() {
			Expect(req.CurrentStatus(now.AddDate(1, 0, 0))).To(Equal(verification.StatusPending))

			Expect(req.Reject(200, "no", now)).To(Succeed())
			Expect(req.CurrentStatus(now.AddDate(1, 0, 0))).To(Equal(verification.StatusRejected))
		})
	})

	Describe("IsValidDuration", func() {
		It("should accept only the published access windows", func() {
			for _, days := range []int{7, 14, 30, 60, 90} {
				Expect(verification.IsValidDuration(days)).To(BeTrue(), "%d days should be allowed", days)
			}
			for _, days := range []int{0, 1, 15, 45, 91, -7} {
				Expect(verification.IsValidDuration(days)).To(BeFalse(), "%d days should be refused", days)
			}
		})
	})
})

var _ = Describe("CreateRequestDTO", func() {
	valid := func() *verification.CreateRequestDTO {
		return &verification.CreateRequestDTO{
			SubjectID:          200,
			Purpose:            "due diligence for seed round",
			AccessDurationDays: 14,
		}
	}

	It("should accept a well-formed payload", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	It("should reject an empty purpose", func() {
		dto := valid()
		dto.Purpose = ""
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("should reject a whitespace-only purpose", func() {
		dto := valid()
		dto.Purpose = "   \t  "
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("should reject a purpose over the length cap", func() {
		dto := valid()
		for len(dto.Purpose) <= verification.MaxPurposeLength {
			dto.Purpose += " and further checks"
		}
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("should reject a duration outside the published windows", func() {
		dto := valid()
		dto.AccessDurationDays = 21
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("should reject a missing subject", func() {
		dto := valid()
		dto.SubjectID = 0
		Expect(dto.Validate()).To(HaveOccurred())
	})
})
