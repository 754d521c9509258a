package dialog

import (
	"errors"

	"github.com/m3rciful/espertofit/fit/action"
)

var (
	// ErrUnknownTraining is the fault of a T token naming a training absent from the snapshot.
	ErrUnknownTraining = errors.New("unknown training")
	// ErrUnknownExercise is the fault of an E token naming an exercise absent from the catalog.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// ErrorCode maps a fault or handling error to the err_code used in logs.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownTraining):
		return "TRAINING_NOT_FOUND"
	case errors.Is(err, ErrUnknownExercise):
		return "EXERCISE_NOT_FOUND"
	case errors.Is(err, action.ErrMalformed):
		return action.ErrCodeMalformed
	case errors.As(err, &coded):
		return coded.Code()
	default:
		return "INTERNAL"
	}
}
