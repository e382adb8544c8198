package record

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

func TestStateSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "record state machine suite")
}

var _ = Describe("CanTransition", func() {
	It("allows every edge named in the transition table", func() {
		Expect(CanTransition(StatePending, StateVerifying)).To(BeTrue())
		Expect(CanTransition(StateVerifying, StateBlocked)).To(BeTrue())
		Expect(CanTransition(StateVerifying, StateReadyToGenerate)).To(BeTrue())
		Expect(CanTransition(StateBlocked, StateVerifying)).To(BeTrue())
		Expect(CanTransition(StateGenerating, StateNeedsReview)).To(BeTrue())
		Expect(CanTransition(StateAnalyzing, StateConditional)).To(BeTrue())
	})

	It("rejects edges absent from the table", func() {
		Expect(CanTransition(StatePending, StateExecuting)).To(BeFalse())
		Expect(CanTransition(StateReadyToGenerate, StateAnalyzing)).To(BeFalse())
	})

	It("allows any non-terminal state to move to StateError", func() {
		Expect(CanTransition(StateGenerating, StateError)).To(BeTrue())
		Expect(CanTransition(StateExecuting, StateError)).To(BeTrue())
	})

	It("never lets a terminal state transition again, not even to StateError", func() {
		Expect(CanTransition(StateValidated, StateError)).To(BeFalse())
		Expect(CanTransition(StateRejected, StateVerifying)).To(BeFalse())
		Expect(CanTransition(StateArchived, StatePending)).To(BeFalse())
	})
})

var _ = Describe("IsTerminal", func() {
	It("reports the five terminal states", func() {
		Expect(IsTerminal(StateValidated)).To(BeTrue())
		Expect(IsTerminal(StateConditional)).To(BeTrue())
		Expect(IsTerminal(StateInvalidated)).To(BeTrue())
		Expect(IsTerminal(StateArchived)).To(BeTrue())
		Expect(IsTerminal(StateRejected)).To(BeTrue())
	})

	It("reports non-terminal states as false", func() {
		Expect(IsTerminal(StatePending)).To(BeFalse())
		Expect(IsTerminal(StateExecuting)).To(BeFalse())
	})
})

var _ = Describe("ValidateTransition", func() {
	It("returns a conflict error when current does not match from", func() {
		err := ValidateTransition(StateVerifying, StatePending, StateVerifying)
		Expect(err).To(HaveOccurred())
		Expect(apperrors.IsType(err, apperrors.ErrorTypeConflict)).To(BeTrue())
	})

	It("returns a validation error when the edge is illegal", func() {
		err := ValidateTransition(StatePending, StatePending, StateExecuting)
		Expect(err).To(HaveOccurred())
		Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(BeTrue())
	})

	It("returns nil for a legal, matching transition", func() {
		err := ValidateTransition(StatePending, StatePending, StateVerifying)
		Expect(err).NotTo(HaveOccurred())
	})
})
