package dialog

import (
	"fmt"

	"github.com/m3rciful/espertofit/fit/action"
	"github.com/m3rciful/espertofit/fit/catalog"
)

// User-visible texts.
const (
	TextChooseTraining  = "Choose your training:"
	TextCommandNotFound = "Command not found!"
	LabelChangeLoad     = "Change Load"
	LabelCompleted      = "Completed!"
)

// Outcomes reported in Step.Outcome.
const (
	OutcomeMenu       = "menu"
	OutcomeHelp       = "help"
	OutcomeUnknownCmd = "unknown_command"
	OutcomeExercises  = "exercises"
	OutcomeExercise   = "exercise"
	OutcomeNoop       = "noop"
	OutcomeIgnored    = "ignored"
	OutcomeNotFound   = "not_found"
	OutcomeMalformed  = "malformed"
)

// Reply is a message to send to the chat.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Step is the result of one transition.
type Step struct {
	Next    Session
	Reply   *Reply
	Action  action.Action
	Outcome string
	// Fault is a recoverable problem with the event, never a store failure.
	Fault error
}

// Transition computes the next session and reply for ev. It has no side
// effects and never panics on bad input.
func Transition(cur Session, ev Event, cat *catalog.Catalog) Step {
	switch e := ev.(type) {
	case TextCommand:
		return onText(cur, e, cat)
	case CallbackEvent:
		return onCallback(cur, e, cat)
	default:
		return Step{Next: cur, Outcome: OutcomeIgnored, Fault: fmt.Errorf("unsupported event %T", ev)}
	}
}

func onText(cur Session, e TextCommand, cat *catalog.Catalog) Step {
	switch e.Command {
	case CommandStart:
		return Step{
			Next:    Browsing(cat.Snapshot()),
			Reply:   &Reply{Text: TextChooseTraining, Keyboard: trainingMenu(cat.Trainings())},
			Outcome: OutcomeMenu,
		}
	case CommandHelp:
		return Step{Next: cur, Reply: &Reply{Text: HelpText()}, Outcome: OutcomeHelp}
	default:
		return Step{Next: cur, Reply: &Reply{Text: TextCommandNotFound}, Outcome: OutcomeUnknownCmd}
	}
}

func onCallback(cur Session, e CallbackEvent, cat *catalog.Catalog) Step {
	a, err := action.Decode(e.Payload)
	if err != nil {
		return Step{Next: cur, Outcome: OutcomeMalformed, Fault: err}
	}
	if !cur.IsBrowsing() {
		return Step{Next: cur, Action: a, Outcome: OutcomeIgnored}
	}

	switch a.Kind {
	case action.SelectTraining:
		t, ok := cur.Snapshot[a.TrainingID]
		if !ok {
			return Step{
				Next:    cur,
				Reply:   &Reply{Text: fmt.Sprintf("Training %s not found.", a.TrainingID)},
				Action:  a,
				Outcome: OutcomeNotFound,
				Fault:   fmt.Errorf("%w: %q", ErrUnknownTraining, a.TrainingID),
			}
		}
		return Step{
			Next:    cur,
			Reply:   &Reply{Text: "Exercises for training " + t.Identifier, Keyboard: exerciseMenu(t)},
			Action:  a,
			Outcome: OutcomeExercises,
		}

	case action.SelectExercise:
		// Resolved against the live catalog, not the snapshot.
		ex, ok := cat.Exercise(a.TrainingID, a.ExerciseName)
		if !ok {
			return Step{
				Next:    cur,
				Reply:   &Reply{Text: fmt.Sprintf("Exercise %s not found in training %s.", a.ExerciseName, a.TrainingID)},
				Action:  a,
				Outcome: OutcomeNotFound,
				Fault:   fmt.Errorf("%w: %q in training %q", ErrUnknownExercise, a.ExerciseName, a.TrainingID),
			}
		}
		return Step{
			Next:    cur,
			Reply:   &Reply{Text: ex.Name + " - " + catalog.Format(ex.Series)},
			Action:  a,
			Outcome: OutcomeExercise,
		}

	case action.ChangeLoad, action.FinishExercise:
		return Step{Next: cur, Action: a, Outcome: OutcomeNoop}

	default:
		return Step{Next: cur, Action: a, Outcome: OutcomeMalformed,
			Fault: fmt.Errorf("%w: unsupported kind %s", action.ErrMalformed, a.Kind)}
	}
}

func trainingMenu(ts []catalog.Training) Keyboard {
	kb := make(Keyboard, 0, len(ts))
	for _, t := range ts {
		kb = append(kb, []Button{{Label: t.Identifier, Payload: action.Encode(action.Training(t.Identifier))}})
	}
	return kb
}

func exerciseMenu(t catalog.Training) Keyboard {
	kb := make(Keyboard, 0, len(t.Exercises)+1)
	for _, ex := range t.Exercises {
		kb = append(kb, []Button{
			{Label: ex.Name, Payload: action.Encode(action.Exercise(t.Identifier, ex.Name))},
			{Label: LabelChangeLoad, Payload: action.Encode(action.Load(t.Identifier, ex.Name))},
		})
	}
	kb = append(kb, []Button{{Label: LabelCompleted, Payload: action.Encode(action.Finish(t.Identifier))}})
	return kb
}
