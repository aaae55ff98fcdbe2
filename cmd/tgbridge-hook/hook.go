package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/config"
	"github.com/smykla-skalski/tgbridge/internal/present"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/telegram"
	"github.com/smykla-skalski/tgbridge/internal/waiter"
	"github.com/smykla-skalski/tgbridge/pkg/hook"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

// runHook executes one hook invocation end to end and returns the exit code.
func runHook(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer) (int, error) {
	log, err := logger.NewFileLogger(cfg.Log.File, logger.LevelFromFlags(cfg.Log.Debug, cfg.Log.Trace))
	if err != nil {
		return hook.ExitError, errors.Wrap(err, "creating logger")
	}

	event, err := readEvent(stdin)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// No input means nothing to approve; let the tool call proceed.
			log.Info("no input provided, allowing")

			return hook.ExitApproved, nil
		}

		return hook.ExitError, err
	}

	if err := cfg.Validate(); err != nil {
		return hook.ExitError, err
	}

	stores, err := request.OpenStores(cfg.State.Dir)
	if err != nil {
		return hook.ExitError, err
	}

	bot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		return hook.ExitError, err
	}

	client := telegram.NewClient(bot)
	wait := waiter.NewWaiter(stores, client, log)

	b := &bridge{
		cfg:    cfg,
		stores: stores,
		chat:   client,
		wait:   wait,
		log:    log,
		stdout: stdout,
	}

	if event.IsQuestion() {
		return b.runSelection(ctx, event)
	}

	return b.runPermission(ctx, event)
}

func readEvent(stdin io.Reader) (*hook.Event, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.Wrap(err, "reading stdin")
	}

	if len(data) == 0 {
		return nil, io.EOF
	}

	event := &hook.Event{}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, errors.Wrap(err, "parsing hook event")
	}

	return event, nil
}

// bridge holds the collaborators one hook invocation needs.
type bridge struct {
	cfg    *config.Config
	stores *request.Stores
	chat   chat.Client
	wait   *waiter.Waiter
	log    logger.Logger
	stdout io.Writer
}

// runPermission drives the approval protocol: create the record, post the
// buttons, block until resolved, report the decision.
func (b *bridge) runPermission(ctx context.Context, event *hook.Event) (int, error) {
	var toolInput map[string]any
	if len(event.ToolInput) > 0 {
		// Display only; a bad payload should not fail the request.
		_ = json.Unmarshal(event.ToolInput, &toolInput)
	}

	perm, err := b.stores.Permissions.Create(
		request.NewPermission(event.ToolName, toolInput, b.cfg.Telegram.ChatID),
	)
	if err != nil {
		return hook.ExitError, err
	}

	log := b.log.With("request_id", perm.RequestID, "tool", perm.ToolName)

	messageID, err := b.chat.SendButtons(
		ctx,
		perm.ChatID,
		present.PermissionMessage(perm),
		present.PermissionKeyboard(perm),
	)
	if err != nil {
		// The request cannot proceed without its message; clean up and fail.
		_ = b.stores.Permissions.Delete(perm.RequestID)

		return hook.ExitError, errors.Wrap(err, "sending approval message")
	}

	if _, err := b.stores.Permissions.Update(perm.RequestID, func(p *request.Permission) error {
		p.MessageID = messageID

		return nil
	}); err != nil {
		log.Error("recording message id", "error", err.Error())
	}

	log.Info("awaiting approval", "timeout", b.cfg.Wait.Timeout.Std().String())

	outcome, resolved, err := b.wait.AwaitPermission(
		ctx,
		perm.RequestID,
		b.cfg.Wait.Timeout.Std(),
		b.cfg.Wait.PollInterval.Std(),
	)
	if err != nil {
		return hook.ExitError, err
	}

	return b.writePermissionResult(outcome, resolved)
}

func (b *bridge) writePermissionResult(outcome waiter.Outcome, perm *request.Permission) (int, error) {
	result := hook.PermissionResult{}
	code := hook.ExitApproved

	switch outcome {
	case waiter.OutcomeApproved:
		result.Decision = hook.DecisionApprove

	case waiter.OutcomeDenied:
		result.Decision = hook.DecisionBlock
		result.Reason = "Denied via Telegram"

		if perm != nil && perm.RespondedBy != "" {
			result.Reason = "Denied via Telegram by " + perm.RespondedBy
		}

		code = hook.ExitDenied

	case waiter.OutcomeTimeout:
		// Timeout is reported through the decision payload, not the exit
		// code; callers check the reason field.
		result.Decision = hook.DecisionBlock
		result.Reason = "No response within " + b.cfg.Wait.Timeout.Std().String()

	case waiter.OutcomeAnswered, waiter.OutcomeCancelled:
		return hook.ExitError, errors.Newf("unexpected outcome %s for permission", outcome)
	}

	if err := json.NewEncoder(b.stdout).Encode(result); err != nil {
		return hook.ExitError, errors.Wrap(err, "writing result")
	}

	return code, nil
}

// runSelection drives the multiple-choice protocol.
func (b *bridge) runSelection(ctx context.Context, event *hook.Event) (int, error) {
	input := &hook.QuestionInput{}
	if err := json.Unmarshal(event.ToolInput, input); err != nil {
		return hook.ExitError, errors.Wrap(err, "parsing question input")
	}

	if len(input.Questions) == 0 {
		return hook.ExitError, errors.New("no questions in input")
	}

	// One record per hook invocation; Claude Code asks one question at a time.
	q := input.Questions[0]

	options := make([]request.Option, len(q.Options))
	for i, o := range q.Options {
		options[i] = request.Option{Label: o.Label, Description: o.Description}
	}

	sel, err := b.stores.Selections.Create(
		request.NewSelection(q.Question, q.Header, options, q.MultiSelect, b.cfg.Telegram.ChatID),
	)
	if err != nil {
		return hook.ExitError, err
	}

	log := b.log.With("request_id", sel.RequestID)

	messageID, err := b.chat.SendButtons(
		ctx,
		sel.ChatID,
		present.SelectionMessage(sel),
		present.SelectionKeyboard(sel),
	)
	if err != nil {
		_ = b.stores.Selections.Delete(sel.RequestID)

		return hook.ExitError, errors.Wrap(err, "sending question message")
	}

	if _, err := b.stores.Selections.Update(sel.RequestID, func(s *request.Selection) error {
		s.MessageID = messageID

		return nil
	}); err != nil {
		log.Error("recording message id", "error", err.Error())
	}

	log.Info("awaiting answer", "timeout", b.cfg.Wait.Timeout.Std().String())

	outcome, resolved, err := b.wait.AwaitSelection(
		ctx,
		sel.RequestID,
		b.cfg.Wait.Timeout.Std(),
		b.cfg.Wait.PollInterval.Std(),
	)
	if err != nil {
		return hook.ExitError, err
	}

	return b.writeSelectionResult(outcome, resolved)
}

func (b *bridge) writeSelectionResult(outcome waiter.Outcome, sel *request.Selection) (int, error) {
	result := hook.SelectionResult{
		SelectedIndices: []int{},
		SelectedLabels:  []string{},
	}
	code := hook.ExitApproved

	switch outcome {
	case waiter.OutcomeAnswered:
		if sel != nil {
			result.SelectedIndices = append(result.SelectedIndices, sel.SelectedIndices...)
			result.SelectedLabels = append(result.SelectedLabels, sel.SelectedLabels()...)
			result.CustomInput = sel.CustomInput
		}

	case waiter.OutcomeCancelled:
		code = hook.ExitDenied

	case waiter.OutcomeTimeout:
		// Empty result with exit 0; callers detect the absence of an answer.

	case waiter.OutcomeApproved, waiter.OutcomeDenied:
		return hook.ExitError, errors.Newf("unexpected outcome %s for selection", outcome)
	}

	if err := json.NewEncoder(b.stdout).Encode(result); err != nil {
		return hook.ExitError, errors.Wrap(err, "writing result")
	}

	return code, nil
}
