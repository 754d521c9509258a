package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "T:A", Encode(Training("A")))
	assert.Equal(t, "E:A:Plank", Encode(Exercise("A", "Plank")))
	assert.Equal(t, "CL:A:Plank", Encode(Load("A", "Plank")))
	assert.Equal(t, "FE:A", Encode(Finish("A")))
}

func TestRoundTrip(t *testing.T) {
	for _, a := range []Action{
		Training("A"),
		Training("Leg Day"),
		Exercise("A", "Plank"),
		Exercise("B", "Leg Press 45 degrees"),
		Load("C", "Ab Crunch Machine"),
		Finish("D"),
		Exercise("A", "Stretch 1:2"),
	} {
		t.Run(a.String(), func(t *testing.T) {
			got, err := Decode(Encode(a))
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"T",
		"T:",
		"X:A",
		"t:A",
		"E:A",
		"E:A:",
		"E::Plank",
		"CL:A",
		"FE:",
		"FE:A:extra",
		"T:A:B",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := Decode(token)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestKind(t *testing.T) {
	for _, tag := range Tags() {
		k, ok := kindByTag(tag)
		require.True(t, ok, tag)
		assert.True(t, k.Valid())
		assert.Equal(t, tag, k.Tag())
	}
	assert.False(t, Kind(0).Valid())
	assert.Equal(t, "kind(9)", Kind(9).String())
	assert.Equal(t, "select_exercise", SelectExercise.String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Encode(Exercise("A", "Plank"))))
	long := Encode(Exercise("A", strings.Repeat("x", 70)))
	assert.ErrorIs(t, Validate(long), ErrTooLong)
}
