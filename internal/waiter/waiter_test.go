package waiter_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/store"
	"github.com/smykla-skalski/tgbridge/internal/waiter"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

const (
	shortTimeout = 100 * time.Millisecond
	pollInterval = 10 * time.Millisecond
)

var _ = Describe("Waiter", func() {
	var (
		ctx    context.Context
		stores *request.Stores
		client *chat.MockClient
		w      *waiter.Waiter
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error

		stores, err = request.OpenStores(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		client = chat.NewMockClient()
		w = waiter.NewWaiter(stores, client, logger.Nop())
	})

	createPermission := func() *request.Permission {
		perm, err := stores.Permissions.Create(request.NewPermission(
			"Bash", map[string]any{"command": "make deploy"}, 42,
		))
		Expect(err).NotTo(HaveOccurred())

		return perm
	}

	createSelection := func() *request.Selection {
		sel, err := stores.Selections.Create(request.NewSelection(
			"Proceed?", "",
			[]request.Option{{Label: "Yes"}, {Label: "No"}},
			false, 42,
		))
		Expect(err).NotTo(HaveOccurred())

		return sel
	}

	Describe("AwaitPermission", func() {
		It("returns the decision once the record resolves", func() {
			perm := createPermission()

			go func() {
				defer GinkgoRecover()

				time.Sleep(2 * pollInterval)

				_, err := stores.Permissions.Update(perm.RequestID, func(p *request.Permission) error {
					return p.Approve("alice", time.Now())
				})
				Expect(err).NotTo(HaveOccurred())
			}()

			outcome, resolved, err := w.AwaitPermission(ctx, perm.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeApproved))
			Expect(resolved.RespondedBy).To(Equal("alice"))
		})

		It("reports a denial", func() {
			perm := createPermission()

			_, err := stores.Permissions.Update(perm.RequestID, func(p *request.Permission) error {
				return p.Deny("bob", time.Now())
			})
			Expect(err).NotTo(HaveOccurred())

			outcome, resolved, err := w.AwaitPermission(ctx, perm.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeDenied))
			Expect(resolved.RespondedBy).To(Equal("bob"))
		})

		It("deletes the record after returning", func() {
			perm := createPermission()

			_, err := stores.Permissions.Update(perm.RequestID, func(p *request.Permission) error {
				return p.Approve("alice", time.Now())
			})
			Expect(err).NotTo(HaveOccurred())

			_, _, err = w.AwaitPermission(ctx, perm.RequestID, time.Second, pollInterval)
			Expect(err).NotTo(HaveOccurred())

			_, err = stores.Permissions.Get(perm.RequestID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("times out when nobody decides", func() {
			perm := createPermission()

			start := time.Now()
			outcome, _, err := w.AwaitPermission(ctx, perm.RequestID, shortTimeout, pollInterval)
			elapsed := time.Since(start)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeTimeout))
			Expect(elapsed).To(BeNumerically(">=", shortTimeout))
			Expect(elapsed).To(BeNumerically("<", 5*shortTimeout))

			_, err = stores.Permissions.Get(perm.RequestID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("edits the timeout banner when a message was sent", func() {
			perm := createPermission()

			_, err := stores.Permissions.Update(perm.RequestID, func(p *request.Permission) error {
				p.MessageID = 100

				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			outcome, _, err := w.AwaitPermission(ctx, perm.RequestID, shortTimeout, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeTimeout))

			edit, ok := client.LastEdit()
			Expect(ok).To(BeTrue())
			Expect(edit.MessageID).To(Equal(100))
			Expect(edit.Buttons).To(BeNil())
		})

		It("times out even when the banner edit fails", func() {
			perm := createPermission()
			client.EditErr = context.DeadlineExceeded

			outcome, _, err := w.AwaitPermission(ctx, perm.RequestID, shortTimeout, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeTimeout))
		})

		It("treats a vanished record as a timeout", func() {
			perm := createPermission()

			go func() {
				defer GinkgoRecover()

				time.Sleep(2 * pollInterval)
				Expect(stores.Permissions.Delete(perm.RequestID)).To(Succeed())
			}()

			outcome, _, err := w.AwaitPermission(ctx, perm.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeTimeout))
		})

		It("stops when the context is cancelled", func() {
			perm := createPermission()

			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()

			_, _, err := w.AwaitPermission(cancelCtx, perm.RequestID, time.Second, pollInterval)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AwaitSelection", func() {
		It("returns the answer once the record resolves", func() {
			sel := createSelection()

			go func() {
				defer GinkgoRecover()

				time.Sleep(2 * pollInterval)

				_, err := stores.Selections.Update(sel.RequestID, func(s *request.Selection) error {
					return s.Answer(1)
				})
				Expect(err).NotTo(HaveOccurred())
			}()

			outcome, resolved, err := w.AwaitSelection(ctx, sel.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeAnswered))
			Expect(resolved.SelectedIndices).To(Equal([]int{1}))
		})

		It("reports a cancellation", func() {
			sel := createSelection()

			_, err := stores.Selections.Update(sel.RequestID, func(s *request.Selection) error {
				return s.Cancel()
			})
			Expect(err).NotTo(HaveOccurred())

			outcome, _, err := w.AwaitSelection(ctx, sel.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeCancelled))
		})

		It("keeps waiting while the user types a custom answer", func() {
			sel := createSelection()

			go func() {
				defer GinkgoRecover()

				time.Sleep(2 * pollInterval)

				_, err := stores.Selections.Update(sel.RequestID, func(s *request.Selection) error {
					return s.AwaitInput()
				})
				Expect(err).NotTo(HaveOccurred())

				time.Sleep(2 * pollInterval)

				_, err = stores.Selections.Update(sel.RequestID, func(s *request.Selection) error {
					return s.AnswerCustom("something else")
				})
				Expect(err).NotTo(HaveOccurred())
			}()

			outcome, resolved, err := w.AwaitSelection(ctx, sel.RequestID, time.Second, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeAnswered))
			Expect(resolved.CustomInput).To(Equal("something else"))
		})

		It("times out an unanswered question", func() {
			sel := createSelection()

			outcome, _, err := w.AwaitSelection(ctx, sel.RequestID, shortTimeout, pollInterval)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(waiter.OutcomeTimeout))

			_, err = stores.Selections.Get(sel.RequestID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})
})

var _ = Describe("Outcome", func() {
	It("renders lowercase names", func() {
		Expect(waiter.OutcomeTimeout.String()).To(Equal("timeout"))
		Expect(waiter.OutcomeApproved.String()).To(Equal("approved"))
		Expect(waiter.OutcomeDenied.String()).To(Equal("denied"))
		Expect(waiter.OutcomeAnswered.String()).To(Equal("answered"))
		Expect(waiter.OutcomeCancelled.String()).To(Equal("cancelled"))
	})

	It("round-trips through OutcomeString", func() {
		for _, o := range waiter.OutcomeValues() {
			parsed, err := waiter.OutcomeString(o.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(o))
		}
	})

	It("rejects names outside the enum", func() {
		_, err := waiter.OutcomeString("shrugged")
		Expect(err).To(HaveOccurred())
		Expect(waiter.Outcome(99).IsAOutcome()).To(BeFalse())
	})
})
