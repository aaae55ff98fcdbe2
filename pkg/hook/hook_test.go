package hook_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/tgbridge/pkg/hook"
)

var _ = Describe("Event", func() {
	It("decodes a tool approval event", func() {
		raw := `{
			"session_id": "sess-1",
			"tool_name": "Bash",
			"tool_input": {"command": "git push"}
		}`

		var event hook.Event

		Expect(json.Unmarshal([]byte(raw), &event)).To(Succeed())
		Expect(event.ToolName).To(Equal("Bash"))
		Expect(event.IsQuestion()).To(BeFalse())

		var input map[string]any
		Expect(json.Unmarshal(event.ToolInput, &input)).To(Succeed())
		Expect(input).To(HaveKeyWithValue("command", "git push"))
	})

	It("recognizes a question event", func() {
		raw := `{
			"tool_name": "AskUserQuestion",
			"tool_input": {
				"questions": [{
					"question": "Which database?",
					"header": "Storage",
					"multiSelect": false,
					"options": [
						{"label": "SQLite", "description": "embedded"},
						{"label": "Postgres"}
					]
				}]
			}
		}`

		var event hook.Event

		Expect(json.Unmarshal([]byte(raw), &event)).To(Succeed())
		Expect(event.IsQuestion()).To(BeTrue())

		var input hook.QuestionInput
		Expect(json.Unmarshal(event.ToolInput, &input)).To(Succeed())
		Expect(input.Questions).To(HaveLen(1))
		Expect(input.Questions[0].Question).To(Equal("Which database?"))
		Expect(input.Questions[0].Options).To(HaveLen(2))
		Expect(input.Questions[0].Options[0].Label).To(Equal("SQLite"))
	})
})

var _ = Describe("PermissionResult", func() {
	It("omits the reason on approval", func() {
		data, err := json.Marshal(hook.PermissionResult{Decision: hook.DecisionApprove})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"decision":"approve"}`))
	})

	It("carries the reason on a block", func() {
		data, err := json.Marshal(hook.PermissionResult{
			Decision: hook.DecisionBlock,
			Reason:   "Denied via Telegram by alice",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"reason":"Denied via Telegram by alice"`))
	})
})

var _ = Describe("SelectionResult", func() {
	It("always includes the index and label arrays", func() {
		data, err := json.Marshal(hook.SelectionResult{
			SelectedIndices: []int{},
			SelectedLabels:  []string{},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"selectedIndices":[]`))
		Expect(string(data)).To(ContainSubstring(`"selectedLabels":[]`))
	})
})
