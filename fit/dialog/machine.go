package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/espertofit/core/logger"
	"github.com/m3rciful/espertofit/core/telegram/state"
	"github.com/m3rciful/espertofit/fit/action"
	"github.com/m3rciful/espertofit/fit/catalog"
)

// Result summarizes one handled event for the caller's logs.
type Result struct {
	State    state.State
	Next     state.State
	Action   action.Action
	Outcome  string
	Fault    error
	Messages int
	Buttons  int
}

// Machine applies Transition to stored sessions and delivers the replies.
type Machine struct {
	store   *state.Store[Session]
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewMachine wires a machine over a session store and the loaded catalog.
func NewMachine(store *state.Store[Session], cat *catalog.Catalog) *Machine {
	return &Machine{store: store, catalog: cat, log: logger.Component("dialog")}
}

// NewSessionStore returns a Store whose missing chats read as Idle.
func NewSessionStore(b state.Backend) *state.Store[Session] {
	return state.NewStore[Session](b, Idle())
}

// Catalog returns the catalog the machine serves.
func (m *Machine) Catalog() *catalog.Catalog { return m.catalog }

// HandleText processes a text message.
func (m *Machine) HandleText(ctx context.Context, out Messenger, ev TextCommand) (Result, error) {
	res, step, err := m.advance(ctx, ev)
	if err != nil {
		return res, err
	}
	return res, m.deliver(ctx, out, ev.ChatID, step, &res)
}

// HandleCallback processes a button press. The callback is acknowledged
// exactly once whatever happens, including store failures.
func (m *Machine) HandleCallback(ctx context.Context, out Messenger, ev CallbackEvent) (res Result, err error) {
	defer func() {
		if ackErr := out.AcknowledgeCallback(ctx, ev.CallbackID); ackErr != nil {
			err = errors.Join(err, fmt.Errorf("acknowledge callback: %w", ackErr))
		}
	}()

	res, step, err := m.advance(ctx, ev)
	if err != nil {
		return res, err
	}
	return res, m.deliver(ctx, out, ev.ChatID, step, &res)
}

func (m *Machine) advance(ctx context.Context, ev Event) (Result, Step, error) {
	var (
		step Step
		res  Result
	)
	_, err := m.store.Update(ctx, ev.Chat(), func(cur Session) (Session, error) {
		res.State = cur.SessionState()
		step = Transition(cur, ev, m.catalog)
		return step.Next, nil
	})
	if err != nil {
		return res, step, fmt.Errorf("dialog: %w", err)
	}

	res.Next = step.Next.SessionState()
	res.Action = step.Action
	res.Outcome = step.Outcome
	res.Fault = step.Fault
	if step.Fault != nil {
		level := slog.LevelWarn
		if errors.Is(step.Fault, action.ErrMalformed) {
			level = slog.LevelDebug
		}
		logger.LogEvent(ctx, m.log, level, "dialog.fault",
			slog.String("status", "fault"),
			slog.String("state", string(res.State)),
			slog.String("outcome", step.Outcome),
			slog.String("err", step.Fault.Error()),
			slog.String("err_code", ErrorCode(step.Fault)),
		)
	}
	return res, step, nil
}

func (m *Machine) deliver(ctx context.Context, out Messenger, chatID int64, step Step, res *Result) error {
	if step.Reply == nil {
		return nil
	}
	for _, row := range step.Reply.Keyboard {
		for _, b := range row {
			if err := action.Validate(b.Payload); err != nil {
				logger.LogEvent(ctx, m.log, slog.LevelWarn, "keyboard.payload",
					slog.String("status", "warn"),
					slog.String("payload", b.Payload),
					slog.String("err", err.Error()),
				)
			}
		}
	}
	if err := out.SendMessage(ctx, chatID, step.Reply.Text, step.Reply.Keyboard); err != nil {
		return fmt.Errorf("dialog: send reply: %w", err)
	}
	res.Messages++
	res.Buttons += step.Reply.Keyboard.Buttons()
	return nil
}
