package roles_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/roles"
)

func TestProjectRoles(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Roles Suite")
}

var _ = Describe("Role Capabilities", func() {
	Describe("ActionsFor", func() {
		It("should grant the full action set to a project lead", func() {
			actions := roles.ActionsFor(roles.RoleProjectLead)
			Expect(actions).To(ConsistOf(
				roles.ActionManage,
				roles.ActionEdit,
				roles.ActionCreate,
				roles.ActionDelete,
				roles.ActionApprove,
			))
		})

		It("should give every defined role a non-empty action set", func() {
			for _, role := range roles.AllRoles {
				Expect(roles.ActionsFor(role)).NotTo(BeEmpty(), "role %s has no actions", role)
			}
		})

		It("should return an empty set for an unknown role", func() {
			actions := roles.ActionsFor(roles.ProjectRole("janitor"))
			Expect(actions).NotTo(BeNil())
			Expect(actions).To(BeEmpty())
		})

		It("should not let callers mutate the capability table", func() {
			actions := roles.ActionsFor(roles.RoleContributor)
			for i := range actions {
				actions[i] = roles.ActionManage
			}
			Expect(roles.CanPerform(roles.RoleContributor, roles.ActionManage)).To(BeFalse())
		})
	})

	Describe("CanPerform", func() {
		It("should deny delete to everyone except the project lead", func() {
			for _, role := range roles.AllRoles {
				if role == roles.RoleProjectLead {
					continue
				}
				Expect(roles.CanPerform(role, roles.ActionDelete)).To(BeFalse(), "role %s should not delete", role)
			}
		})

		It("should deny any action for an unknown role", func() {
			unknown := roles.ProjectRole("superuser")
			Expect(roles.CanPerform(unknown, roles.ActionManage)).To(BeFalse())
			Expect(roles.CanPerform(unknown, roles.ActionEdit)).To(BeFalse())
			Expect(roles.CanPerform(unknown, roles.ActionCreate)).To(BeFalse())
			Expect(roles.CanPerform(unknown, roles.ActionDelete)).To(BeFalse())
			Expect(roles.CanPerform(unknown, roles.ActionApprove)).To(BeFalse())
		})

		It("should let a junior contributor create but not edit", func() {
			Expect(roles.CanPerform(roles.RoleJuniorContributor, roles.ActionCreate)).To(BeTrue())
			Expect(roles.CanPerform(roles.RoleJuniorContributor, roles.ActionEdit)).To(BeFalse())
		})
	})

	Describe("Describe", func() {
		It("should return actions for a valid role", func() {
			actions, err := roles.Describe(roles.RoleMentor)
			Expect(err).NotTo(HaveOccurred())
			Expect(actions).To(ConsistOf(roles.ActionEdit, roles.ActionApprove))
		})

		It("should return a validation error for an unknown role", func() {
			_, err := roles.Describe(roles.ProjectRole("intern"))
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeInvalidCategory))
		})
	})
})
