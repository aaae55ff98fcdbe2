package request_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/tgbridge/internal/request"
)

var _ = Describe("Permission", func() {
	var (
		perm *request.Permission
		now  time.Time
	)

	BeforeEach(func() {
		perm = request.NewPermission("Bash", map[string]any{"command": "ls"}, 42)
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})

	It("starts pending and non-terminal", func() {
		Expect(perm.Status).To(Equal(request.PermissionPending))
		Expect(perm.Terminal()).To(BeFalse())
	})

	It("exposes the embedded metadata for store stamping", func() {
		perm.RecordMeta().Version = 7

		Expect(perm.Version).To(Equal(int64(7)))
		Expect(perm.RecordMeta()).To(BeIdenticalTo(&perm.Meta))
	})

	Describe("Approve", func() {
		It("records who approved and when", func() {
			Expect(perm.Approve("alice", now)).To(Succeed())

			Expect(perm.Status).To(Equal(request.PermissionApproved))
			Expect(perm.Response).To(Equal(request.ResponseApprove))
			Expect(perm.RespondedBy).To(Equal("alice"))
			Expect(perm.RespondedAt).To(HaveValue(Equal(now)))
			Expect(perm.Terminal()).To(BeTrue())
		})

		It("rejects a second decision", func() {
			Expect(perm.Approve("alice", now)).To(Succeed())

			err := perm.Deny("bob", now.Add(time.Second))

			Expect(err).To(MatchError(request.ErrAlreadyResolved))
			Expect(perm.Status).To(Equal(request.PermissionApproved))
			Expect(perm.RespondedBy).To(Equal("alice"))
		})
	})

	Describe("Deny", func() {
		It("records the denial", func() {
			Expect(perm.Deny("bob", now)).To(Succeed())

			Expect(perm.Status).To(Equal(request.PermissionDenied))
			Expect(perm.Response).To(Equal(request.ResponseDeny))
			Expect(perm.RespondedBy).To(Equal("bob"))
		})
	})

	Describe("Expire", func() {
		It("expires a pending request", func() {
			Expect(perm.Expire()).To(Succeed())

			Expect(perm.Status).To(Equal(request.PermissionExpired))
			Expect(perm.Terminal()).To(BeTrue())
		})

		It("refuses to expire a resolved request", func() {
			Expect(perm.Approve("alice", now)).To(Succeed())

			Expect(perm.Expire()).To(MatchError(request.ErrAlreadyResolved))
			Expect(perm.Status).To(Equal(request.PermissionApproved))
		})
	})
})
