package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPuzzleNumberJSON(t *testing.T) {
	tests := []struct {
		name   string
		number PuzzleNumber
		want   string
	}{
		{name: "sequence", number: PuzzleInt(1234), want: `1234`},
		{name: "date", number: PuzzleNumber("2025-10-14"), want: `"2025-10-14"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.number)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var back PuzzleNumber
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.number, back)
		})
	}
}

func TestPuzzleNumberInt(t *testing.T) {
	n, ok := PuzzleInt(42).Int()
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = PuzzleNumber("2025-10-14").Int()
	assert.False(t, ok)
}

func TestResultEncodesPuzzleNumberInline(t *testing.T) {
	raw, err := json.Marshal(ParsedResult{GameID: "wordle", PuzzleNumber: PuzzleInt(7)})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(7), decoded["puzzleNumber"])
	assert.Equal(t, "wordle", decoded["gameId"])
}
