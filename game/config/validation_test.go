package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScenarioFile(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		valid    bool
		contains string
	}{
		{
			name:     "finishes",
			content:  `{"name":"Square","dimensions":"5 5","start":"4 2 S","path":"F F R F"}`,
			valid:    true,
			contains: "✓ Dry run: Position of car is (2, 1), heading W.",
		},
		{
			name:     "crashes",
			content:  `{"name":"Crash","dimensions":"5 5","start":"0 0 S","path":"F F R F"}`,
			valid:    true,
			contains: "⚠ Dry run: car crashes on step 1 of 4",
		},
		{
			name:     "invalid json",
			content:  `{"name":`,
			valid:    false,
			contains: "Invalid JSON",
		},
		{
			name:     "bad dimensions",
			content:  `{"name":"x","dimensions":"5","start":"0 0 S","path":"F"}`,
			valid:    false,
			contains: "Too few arguments",
		},
		{
			name:     "off grid start",
			content:  `{"name":"x","dimensions":"3 6","start":"0 6 N","path":"F"}`,
			valid:    false,
			contains: "outside the 3x6 grid",
		},
		{
			name:     "long path",
			content:  `{"name":"Spin","dimensions":"2 2","start":"0 0 N","path":"` + strings.Repeat("L ", 1200) + `"}`,
			valid:    true,
			contains: "1200 commands",
		},
		{
			name:     "grid too large to build",
			content:  `{"name":"Huge","dimensions":"9223372036854775807 1","start":"0 0 N","path":"F"}`,
			valid:    false,
			contains: "Dry run failed",
		},
		{
			name:     "collects several problems",
			content:  `{"dimensions":"5 5","start":"0 0 Q","path":"F 3"}`,
			valid:    false,
			contains: "Missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "case.json", tt.content)

			result := ValidateScenarioFile(filepath.Join(dir, "case.json"))
			assert.Equal(t, "case.json", result.File)
			assert.Equal(t, tt.valid, result.Valid, result.Messages)
			assert.Contains(t, strings.Join(result.Messages, "\n"), tt.contains)
		})
	}
}

func TestValidateScenarioFileCollectsAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"dimensions":"5 5","start":"0 0 Q","path":"F 3"}`)

	result := ValidateScenarioFile(filepath.Join(dir, "bad.json"))
	assert.False(t, result.Valid)
	assert.Len(t, result.Messages, 3)
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"name":"B","dimensions":"2 2","start":"0 0 N","path":"F"}`)
	writeFile(t, dir, "a.json", `{"name":"A","dimensions":"2 2","start":"0 0 N","path":"X"}`)
	writeFile(t, dir, "radiocar.json", `{"logLevel":"debug"}`)
	writeFile(t, dir, "readme.md", `# scenarios`)

	results, err := ValidateDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.json", results[0].File)
	assert.False(t, results[0].Valid)
	assert.Equal(t, "b.json", results[1].File)
	assert.True(t, results[1].Valid)
}

func TestValidateMissingFile(t *testing.T) {
	result := ValidateScenarioFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Messages[0], "Failed to read file")
}
