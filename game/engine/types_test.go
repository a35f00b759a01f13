package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		input string
		want  Orientation
		ok    bool
	}{
		{"N", North, true},
		{"n", North, true},
		{"E", East, true},
		{"s", South, true},
		{"W", West, true},
		{"X", 0, false},
		{"", 0, false},
		{"NE", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOrientation(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
		ok    bool
	}{
		{"F", Forward, true},
		{"b", Backward, true},
		{"L", TurnLeft, true},
		{"r", TurnRight, true},
		{"X", 0, false},
		{"FF", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrientationStrings(t *testing.T) {
	assert.Equal(t, "S", South.String())
	assert.Equal(t, "South", South.Name())
	assert.Equal(t, "Orientation(0)", Orientation(0).String())
	assert.False(t, Orientation(0).Valid())
	assert.True(t, West.Valid())
}

func TestCommandMoves(t *testing.T) {
	assert.True(t, Forward.Moves())
	assert.True(t, Backward.Moves())
	assert.False(t, TurnLeft.Moves())
	assert.False(t, TurnRight.Moves())
}

func TestStepJSON(t *testing.T) {
	step := Step{
		Number:  1,
		Command: Forward,
		From:    Position{Row: 4, Col: 0},
		To:      Position{Row: 3, Col: 0},
		Heading: North,
		Success: true,
	}

	data, err := json.Marshal(step)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number":1,"command":"F","from":{"row":4,"col":0},"to":{"row":3,"col":0},"heading":"N","success":true}`, string(data))

	var decoded Step
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, step, decoded)
}

func TestUnmarshalRejectsUnknownLetters(t *testing.T) {
	var o Orientation
	assert.ErrorIs(t, o.UnmarshalText([]byte("Q")), ErrInvalidOrientation)

	var c Command
	assert.ErrorIs(t, c.UnmarshalText([]byte("Z")), ErrInvalidCommand)

	_, err := Orientation(0).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidOrientation)
}
