package request_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/tgbridge/internal/request"
)

func newSelection(multi bool) *request.Selection {
	return request.NewSelection(
		"Which approach?",
		"Plan",
		[]request.Option{
			{Label: "Refactor"},
			{Label: "Rewrite"},
			{Label: "Leave as-is"},
		},
		multi,
		42,
	)
}

var _ = Describe("Selection", func() {
	It("assigns stable indices by position", func() {
		sel := newSelection(false)

		Expect(sel.Options).To(HaveLen(3))
		Expect(sel.Options[0].Index).To(Equal(0))
		Expect(sel.Options[2].Index).To(Equal(2))
		Expect(sel.Options[2].Label).To(Equal("Leave as-is"))
	})

	Describe("Answer", func() {
		It("resolves with exactly the tapped option", func() {
			sel := newSelection(false)

			Expect(sel.Answer(1)).To(Succeed())

			Expect(sel.Status).To(Equal(request.SelectionAnswered))
			Expect(sel.SelectedIndices).To(Equal([]int{1}))
			Expect(sel.SelectedLabels()).To(Equal([]string{"Rewrite"}))
		})

		It("rejects an unknown index", func() {
			sel := newSelection(false)

			Expect(sel.Answer(7)).To(MatchError(request.ErrUnknownOption))
			Expect(sel.Status).To(Equal(request.SelectionPending))
		})

		It("rejects a second answer", func() {
			sel := newSelection(false)
			Expect(sel.Answer(0)).To(Succeed())

			Expect(sel.Answer(1)).To(MatchError(request.ErrAlreadyResolved))
			Expect(sel.SelectedIndices).To(Equal([]int{0}))
		})
	})

	Describe("Toggle and Submit", func() {
		It("accumulates toggles in selection order", func() {
			sel := newSelection(true)

			Expect(sel.Toggle(2)).To(Succeed())
			Expect(sel.Toggle(0)).To(Succeed())

			Expect(sel.SelectedIndices).To(Equal([]int{2, 0}))
			Expect(sel.IsSelected(0)).To(BeTrue())
			Expect(sel.IsSelected(1)).To(BeFalse())
		})

		It("toggles an option back off", func() {
			sel := newSelection(true)

			Expect(sel.Toggle(1)).To(Succeed())
			Expect(sel.Toggle(1)).To(Succeed())

			Expect(sel.SelectedIndices).To(BeEmpty())
		})

		It("submits the toggled set", func() {
			sel := newSelection(true)
			Expect(sel.Toggle(0)).To(Succeed())
			Expect(sel.Toggle(1)).To(Succeed())

			Expect(sel.Submit()).To(Succeed())

			Expect(sel.Status).To(Equal(request.SelectionAnswered))
			Expect(sel.SelectedLabels()).To(Equal([]string{"Refactor", "Rewrite"}))
		})

		It("rejects an empty submit without changing state", func() {
			sel := newSelection(true)

			Expect(sel.Submit()).To(MatchError(request.ErrEmptySelection))
			Expect(sel.Status).To(Equal(request.SelectionPending))
		})

		It("rejects toggles after resolution", func() {
			sel := newSelection(true)
			Expect(sel.Toggle(0)).To(Succeed())
			Expect(sel.Submit()).To(Succeed())

			Expect(sel.Toggle(1)).To(MatchError(request.ErrAlreadyResolved))
		})
	})

	Describe("Cancel", func() {
		It("cancels a pending request", func() {
			sel := newSelection(true)

			Expect(sel.Cancel()).To(Succeed())
			Expect(sel.Status).To(Equal(request.SelectionCancelled))
		})

		It("cancels while awaiting input", func() {
			sel := newSelection(false)
			Expect(sel.AwaitInput()).To(Succeed())

			Expect(sel.Cancel()).To(Succeed())
			Expect(sel.Status).To(Equal(request.SelectionCancelled))
		})
	})

	Describe("AwaitInput and AnswerCustom", func() {
		It("resolves with free text", func() {
			sel := newSelection(false)

			Expect(sel.AwaitInput()).To(Succeed())
			Expect(sel.Terminal()).To(BeFalse())

			Expect(sel.AnswerCustom("do it my way")).To(Succeed())

			Expect(sel.Status).To(Equal(request.SelectionAnswered))
			Expect(sel.CustomInput).To(Equal("do it my way"))
		})

		It("refuses to await input twice", func() {
			sel := newSelection(false)
			Expect(sel.AwaitInput()).To(Succeed())

			Expect(sel.AwaitInput()).To(MatchError(request.ErrAlreadyResolved))
		})
	})

	Describe("Expire", func() {
		It("expires a pending request", func() {
			sel := newSelection(false)

			Expect(sel.Expire()).To(Succeed())
			Expect(sel.Status).To(Equal(request.SelectionExpired))
		})

		It("refuses to expire an answered request", func() {
			sel := newSelection(false)
			Expect(sel.Answer(0)).To(Succeed())

			Expect(sel.Expire()).To(MatchError(request.ErrAlreadyResolved))
		})
	})
})

var _ = Describe("Stores", func() {
	It("finds the selection awaiting input in a chat", func() {
		tmpDir := GinkgoT().TempDir()

		stores, err := request.OpenStores(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		other := newSelection(false)
		_, err = stores.Selections.Create(other)
		Expect(err).NotTo(HaveOccurred())

		waiting := newSelection(false)
		Expect(waiting.AwaitInput()).To(Succeed())

		created, err := stores.Selections.Create(waiting)
		Expect(err).NotTo(HaveOccurred())

		found, ok := stores.AwaitingInput(42)

		Expect(ok).To(BeTrue())
		Expect(found.RequestID).To(Equal(created.RequestID))
	})

	It("reports nothing awaiting input for other chats", func() {
		tmpDir := GinkgoT().TempDir()

		stores, err := request.OpenStores(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		waiting := newSelection(false)
		Expect(waiting.AwaitInput()).To(Succeed())

		_, err = stores.Selections.Create(waiting)
		Expect(err).NotTo(HaveOccurred())

		_, ok := stores.AwaitingInput(99)

		Expect(ok).To(BeFalse())
	})
})
