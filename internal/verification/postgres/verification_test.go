package postgres

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/verification"
)

func TestVerificationRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Verification Repository Suite")
}

// RequestSQLite mirrors the request row without server-side defaults for SQLite compatibility
type RequestSQLite struct {
	ID                 int64      `gorm:"primaryKey"`
	RequesterID        int64      `gorm:"column:requester_id;not null;index"`
	SubjectID          int64      `gorm:"column:subject_id;not null;index"`
	Purpose            string     `gorm:"column:purpose;not null"`
	AccessDurationDays int        `gorm:"column:access_duration_days;not null"`
	Status             string     `gorm:"column:status;not null;default:pending"`
	ApproverID         *int64     `gorm:"column:approver_id"`
	RejectReason       *string    `gorm:"column:reject_reason"`
	ExpiresAt          *time.Time `gorm:"column:expires_at"`
	ProcessedAt        *time.Time `gorm:"column:processed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (RequestSQLite) TableName() string {
	return "verification_requests"
}

func (r *RequestSQLite) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

var _ = ginkgo.Describe("RequestRepository", func() {
	var (
		db   *gorm.DB
		repo verification.Repository
	)

	newPending := func(requesterID, subjectID int64) *verification.Request {
		return &verification.Request{
			RequesterID:        requesterID,
			SubjectID:          subjectID,
			Purpose:            "offer due diligence",
			AccessDurationDays: 7,
			Status:             verification.StatusPending,
		}
	}

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&RequestSQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewRequestRepository(db)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should insert the request and set its ID", func() {
			req := newPending(100, 200)

			err := repo.Create(req)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(req.ID).To(gomega.BeNumerically(">", 0))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("should round-trip a stored request", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			got, err := repo.GetByID(req.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.RequesterID).To(gomega.Equal(int64(100)))
			gomega.Expect(got.SubjectID).To(gomega.Equal(int64(200)))
			gomega.Expect(got.Status).To(gomega.Equal(verification.StatusPending))
			gomega.Expect(got.ExpiresAt).To(gomega.BeNil())
		})

		ginkgo.It("should return the sentinel for a missing ID", func() {
			_, err := repo.GetByID(424242)
			gomega.Expect(err).To(gomega.MatchError(verification.ErrRequestNotFound))
		})
	})

	ginkgo.Describe("UpdateDecision", func() {
		ginkgo.It("should persist an approval on a pending row", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			gomega.Expect(req.Approve(200, time.Now().UTC())).To(gomega.Succeed())
			err := repo.UpdateDecision(req)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			got, err := repo.GetByID(req.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(verification.StatusApproved))
			gomega.Expect(got.ExpiresAt).ToNot(gomega.BeNil())
			gomega.Expect(got.ApproverID).ToNot(gomega.BeNil())
		})

		ginkgo.It("should refuse the second of two competing decisions", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			now := time.Now().UTC()

			approval := *req
			gomega.Expect(approval.Approve(200, now)).To(gomega.Succeed())
			gomega.Expect(repo.UpdateDecision(&approval)).To(gomega.Succeed())

			rejection := *req
			gomega.Expect(rejection.Reject(200, "changed my mind", now)).To(gomega.Succeed())
			err := repo.UpdateDecision(&rejection)

			gomega.Expect(err).To(gomega.MatchError(verification.ErrNotPending))

			got, err := repo.GetByID(req.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(verification.StatusApproved))
		})
	})

	ginkgo.Describe("HasActiveGrant", func() {
		ginkgo.It("should see an approval inside its window and not after", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			now := time.Now().UTC()
			gomega.Expect(req.Approve(200, now)).To(gomega.Succeed())
			gomega.Expect(repo.UpdateDecision(req)).To(gomega.Succeed())

			active, err := repo.HasActiveGrant(100, 200, now.AddDate(0, 0, 6))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(active).To(gomega.BeTrue())

			active, err = repo.HasActiveGrant(100, 200, now.AddDate(0, 0, 8))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(active).To(gomega.BeFalse())
		})

		ginkgo.It("should keep the grant alive at the exact expiry instant", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			now := time.Now().UTC()
			gomega.Expect(req.Approve(200, now)).To(gomega.Succeed())
			gomega.Expect(repo.UpdateDecision(req)).To(gomega.Succeed())

			active, err := repo.HasActiveGrant(100, 200, *req.ExpiresAt)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(active).To(gomega.BeTrue())

			active, err = repo.HasActiveGrant(100, 200, req.ExpiresAt.Add(time.Second))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(active).To(gomega.BeFalse())
		})

		ginkgo.It("should not grant access from a pending request", func() {
			req := newPending(100, 200)
			gomega.Expect(repo.Create(req)).To(gomega.Succeed())

			active, err := repo.HasActiveGrant(100, 200, time.Now().UTC())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(active).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("expiry sweep", func() {
		ginkgo.It("should find and rewrite elapsed approvals only", func() {
			now := time.Now().UTC()

			elapsed := newPending(100, 200)
			gomega.Expect(repo.Create(elapsed)).To(gomega.Succeed())
			gomega.Expect(elapsed.Approve(200, now.AddDate(0, 0, -10))).To(gomega.Succeed())
			gomega.Expect(repo.UpdateDecision(elapsed)).To(gomega.Succeed())

			fresh := newPending(101, 200)
			gomega.Expect(repo.Create(fresh)).To(gomega.Succeed())
			gomega.Expect(fresh.Approve(200, now)).To(gomega.Succeed())
			gomega.Expect(repo.UpdateDecision(fresh)).To(gomega.Succeed())

			found, err := repo.FindExpired(now, 100)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found).To(gomega.HaveLen(1))
			gomega.Expect(found[0].ID).To(gomega.Equal(elapsed.ID))

			updated, err := repo.MarkExpired([]int64{elapsed.ID}, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated).To(gomega.Equal(int64(1)))

			got, err := repo.GetByID(elapsed.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(verification.StatusExpired))

			got, err = repo.GetByID(fresh.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(verification.StatusApproved))
		})
	})

	ginkgo.Describe("ListForUser", func() {
		ginkgo.It("should return rows where the user is requester or subject", func() {
			gomega.Expect(repo.Create(newPending(100, 200))).To(gomega.Succeed())
			gomega.Expect(repo.Create(newPending(300, 100))).To(gomega.Succeed())
			gomega.Expect(repo.Create(newPending(300, 400))).To(gomega.Succeed())

			rows, err := repo.ListForUser(100, verification.ListFilter{Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(2))
		})

		ginkgo.It("should narrow the listing by requester", func() {
			gomega.Expect(repo.Create(newPending(100, 200))).To(gomega.Succeed())
			gomega.Expect(repo.Create(newPending(300, 100))).To(gomega.Succeed())

			requesterID := int64(300)
			rows, err := repo.ListForUser(100, verification.ListFilter{RequesterID: &requesterID, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].RequesterID).To(gomega.Equal(requesterID))
		})
	})
})
