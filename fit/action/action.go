// Package action encodes inline button payloads ("callback tokens") and
// decodes them back into typed actions.
//
// A token is a tag followed by colon-separated fields:
//
//	T:<training>              select a training
//	E:<training>:<exercise>   show an exercise
//	CL:<training>:<exercise>  change the load of an exercise
//	FE:<training>             finish the training
//
// Training identifiers cannot contain ':'. Exercise names may, since the
// exercise field runs to the end of the token.
package action

import (
	"errors"
	"fmt"
	"strings"
)

// Kind enumerates the actions a button can carry.
type Kind int

const (
	SelectTraining Kind = iota + 1
	SelectExercise
	ChangeLoad
	FinishExercise
)

const sep = ":"

// MaxTokenBytes is Telegram's limit for callback_data.
const MaxTokenBytes = 64

var (
	// ErrMalformed is returned for tokens that do not follow the grammar.
	ErrMalformed = errors.New("malformed callback token")
	// ErrTooLong is returned by Validate for tokens Telegram would reject.
	ErrTooLong = errors.New("callback token exceeds 64 bytes")
)

// ErrCodeMalformed is the log code for ErrMalformed.
const ErrCodeMalformed = "CALLBACK_MALFORMED"

var tags = map[Kind]string{
	SelectTraining: "T",
	SelectExercise: "E",
	ChangeLoad:     "CL",
	FinishExercise: "FE",
}

var names = map[Kind]string{
	SelectTraining: "select_training",
	SelectExercise: "select_exercise",
	ChangeLoad:     "change_load",
	FinishExercise: "finish_exercise",
}

// Tag returns the token prefix of k.
func (k Kind) Tag() string { return tags[k] }

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := tags[k]
	return ok
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HasExercise reports whether tokens of kind k carry an exercise name.
func (k Kind) HasExercise() bool {
	return k == SelectExercise || k == ChangeLoad
}

// Tags lists every known tag, used to register callback routes.
func Tags() []string {
	return []string{"T", "E", "CL", "FE"}
}

// Action is a decoded callback token.
type Action struct {
	Kind         Kind
	TrainingID   string
	ExerciseName string
}

// Training returns a SelectTraining action.
func Training(id string) Action { return Action{Kind: SelectTraining, TrainingID: id} }

// Exercise returns a SelectExercise action.
func Exercise(trainingID, name string) Action {
	return Action{Kind: SelectExercise, TrainingID: trainingID, ExerciseName: name}
}

// Load returns a ChangeLoad action.
func Load(trainingID, name string) Action {
	return Action{Kind: ChangeLoad, TrainingID: trainingID, ExerciseName: name}
}

// Finish returns a FinishExercise action.
func Finish(trainingID string) Action { return Action{Kind: FinishExercise, TrainingID: trainingID} }

// Encode renders a as a callback token.
func Encode(a Action) string {
	if a.Kind.HasExercise() {
		return a.Kind.Tag() + sep + a.TrainingID + sep + a.ExerciseName
	}
	return a.Kind.Tag() + sep + a.TrainingID
}

// String returns the encoded token.
func (a Action) String() string { return Encode(a) }

// Validate reports whether token fits in Telegram's callback_data.
func Validate(token string) error {
	if len(token) > MaxTokenBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLong, len(token))
	}
	return nil
}

// Decode parses a callback token. Any deviation from the grammar yields an
// error wrapping ErrMalformed.
func Decode(token string) (Action, error) {
	tag, rest, ok := strings.Cut(token, sep)
	if !ok {
		return Action{}, fmt.Errorf("%w: %q has no fields", ErrMalformed, token)
	}
	kind, ok := kindByTag(tag)
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown tag %q", ErrMalformed, tag)
	}

	if !kind.HasExercise() {
		if rest == "" || strings.Contains(rest, sep) {
			return Action{}, fmt.Errorf("%w: %s wants one non-empty field, got %q", ErrMalformed, tag, rest)
		}
		return Action{Kind: kind, TrainingID: rest}, nil
	}

	training, exercise, ok := strings.Cut(rest, sep)
	if !ok || training == "" || exercise == "" {
		return Action{}, fmt.Errorf("%w: %s wants training and exercise, got %q", ErrMalformed, tag, rest)
	}
	return Action{Kind: kind, TrainingID: training, ExerciseName: exercise}, nil
}

func kindByTag(tag string) (Kind, bool) {
	for k, t := range tags {
		if t == tag {
			return k, true
		}
	}
	return 0, false
}
