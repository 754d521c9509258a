package catalog

// Catalog is the read-only set of trainings. It is built once at startup
// and shared by every chat without locking; callers must not mutate the
// values it returns.
type Catalog struct {
	trainings []Training
	byID      map[string]int
}

// New validates trainings and indexes them by identifier.
func New(trainings []Training) (*Catalog, error) {
	if err := validate(trainings); err != nil {
		return nil, &LoadError{Source: "memory", Err: err}
	}
	return build(trainings), nil
}

func build(trainings []Training) *Catalog {
	c := &Catalog{
		trainings: trainings,
		byID:      make(map[string]int, len(trainings)),
	}
	for i, t := range trainings {
		c.byID[t.Identifier] = i
	}
	return c
}

// Trainings returns the trainings in catalog order.
func (c *Catalog) Trainings() []Training {
	out := make([]Training, len(c.trainings))
	copy(out, c.trainings)
	return out
}

// Len reports the number of trainings.
func (c *Catalog) Len() int { return len(c.trainings) }

// Lookup finds a training by identifier.
func (c *Catalog) Lookup(id string) (Training, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Training{}, false
	}
	return c.trainings[i], true
}

// Exercise resolves an exercise by training identifier and exercise name.
func (c *Catalog) Exercise(trainingID, name string) (Exercise, bool) {
	t, ok := c.Lookup(trainingID)
	if !ok {
		return Exercise{}, false
	}
	return t.Exercise(name)
}

// Snapshot returns the trainings keyed by identifier.
func (c *Catalog) Snapshot() map[string]Training {
	out := make(map[string]Training, len(c.trainings))
	for _, t := range c.trainings {
		out[t.Identifier] = t
	}
	return out
}
