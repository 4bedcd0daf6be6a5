package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Smith
jane.smith@example.com

SKILLS
Languages: Python, Go

EXPERIENCE
Software Engineer
Acme Corp
Jan 2020 - Dec 2022
- Built services in Go
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCommand(t *testing.T) {
	path := writeTemp(t, "jane.txt", resumeText)
	var stdout, stderr bytes.Buffer

	code := run([]string{"parse", path, "--report"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Contains(t, string(out["profile"]), `"Go"`)
	assert.Contains(t, out, "report")
}

func TestParseCommandUnsupportedFilePrintsDefaultProfile(t *testing.T) {
	path := writeTemp(t, "jane.rtf", resumeText)
	var stdout, stderr bytes.Buffer

	code := run([]string{"parse", path}, &stdout, &stderr)
	require.Equal(t, 0, code)

	var out parseOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.NotNil(t, out.Profile)
	assert.Empty(t, out.Profile.ProgrammingLanguages)
	assert.NotNil(t, out.Profile.ProgrammingLanguages)
	assert.Nil(t, out.Report)
}

func TestParseCommandWritesOutputFile(t *testing.T) {
	path := writeTemp(t, "jane.txt", resumeText)
	target := filepath.Join(t.TempDir(), "out.json")
	var stdout, stderr bytes.Buffer

	code := run([]string{"parse", path, "-o", target, "--pretty"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"profile\"")
}

func TestExtractAndSectionsCommands(t *testing.T) {
	path := writeTemp(t, "jane.txt", resumeText)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"extract", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Acme Corp")

	stdout.Reset()
	require.Equal(t, 0, run([]string{"sections", path}, &stdout, &stderr))
	var sections map[string][]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &sections))
	assert.Contains(t, sections, "skills")
	assert.Contains(t, sections, "experience")
}

func TestTaxonomyCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"taxonomy"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "version: 2024.1")
	assert.Contains(t, stdout.String(), "terms: ")

	bad := writeTemp(t, "bad.yaml", "version: [\n")
	stdout.Reset()
	assert.Equal(t, 1, run([]string{"taxonomy", "--path", bad}, &stdout, &stderr))
}

func TestUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"bogus"}, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"extract"}, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"extract", "/nonexistent/file.txt"}, &stdout, &stderr))
}
