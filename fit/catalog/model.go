package catalog

// Training is a named workout made of an ordered list of exercises.
type Training struct {
	Identifier string     `json:"identifier" yaml:"identifier"`
	Exercises  []Exercise `json:"exercises" yaml:"exercises"`
}

// Exercise is a movement together with how it is performed.
type Exercise struct {
	Name   string `json:"name" yaml:"name"`
	Series Series `json:"serie" yaml:"serie"`
}

// Series describes the effort of an exercise. Exactly one variant is set
// in a loaded catalog; on the wire the variant name is the object key.
type Series struct {
	Repetitions *RepetitionSeries `json:"Repetitions,omitempty" yaml:"Repetitions,omitempty"`
	Continuous  *ContinuousSeries `json:"Continuous,omitempty" yaml:"Continuous,omitempty"`
}

// RepetitionSeries is sets x repetitions, optionally with a load.
// A nil Load means bodyweight.
type RepetitionSeries struct {
	Sets        int      `json:"sets" yaml:"sets"`
	Repetitions int      `json:"repetitions" yaml:"repetitions"`
	Load        *float64 `json:"load" yaml:"load"`
}

// ContinuousSeries is a timed effort. A nil or zero Sets means one
// continuous effort.
type ContinuousSeries struct {
	DurationSeconds int  `json:"time_in_seconds" yaml:"time_in_seconds"`
	Sets            *int `json:"sets" yaml:"sets"`
}

// Reps builds a repetition series.
func Reps(sets, repetitions int, load *float64) Series {
	return Series{Repetitions: &RepetitionSeries{Sets: sets, Repetitions: repetitions, Load: load}}
}

// Timed builds a continuous series.
func Timed(seconds int, sets *int) Series {
	return Series{Continuous: &ContinuousSeries{DurationSeconds: seconds, Sets: sets}}
}

// Exercise returns the exercise called name.
func (t Training) Exercise(name string) (Exercise, bool) {
	for _, e := range t.Exercises {
		if e.Name == name {
			return e, true
		}
	}
	return Exercise{}, false
}
