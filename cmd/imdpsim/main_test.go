package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problemsFile = `
problems:
  - name: exactSplit
    challenger: [[1, 1], [0, 0]]
    defenders:
      - [[1, 1], [0, 0]]
  - name: unsimulable
    challenger: [[0.6, 0.6], [0.4, 0.4]]
    defenders:
      - [[0.3, 0.3], [0.7, 0.7]]
  - name: slack
    challenger: [[0.4, 0.6], [0.4, 0.6]]
    defenders:
      - [[0.3, 0.5], [0.5, 0.7]]
      - [[0.5, 0.7], [0.3, 0.5]]
`

const modelFile = `
states: 4
blocks: [0, 1, 2, 2]
distributions:
  - state: 2
    transitions:
      - {to: 0, lower: 0.4, upper: 0.6}
      - {to: 1, lower: 0.4, upper: 0.6}
  - state: 3
    transitions:
      - {to: 0, lower: 0.25, upper: 0.25}
      - {to: 1, lower: 0.75, upper: 0.75}
pairs:
  - {state: 2, compare: 3}
  - {state: 2, compare: 2}
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// Fields of the output line starting with name
func line(out, name string) []string {
	for _, l := range strings.Split(out, "\n") {
		fields := strings.Fields(l)
		if len(fields) > 0 && fields[0] == name {
			return fields
		}
	}
	return nil
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", writeFile(t, "problems.yaml", problemsFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"exactSplit", "false"}, line(out, "exactSplit"))
	assert.Equal(t, []string{"unsimulable", "true"}, line(out, "unsimulable"))
	assert.Equal(t, []string{"slack", "false"}, line(out, "slack"))
}

func TestCheckMetrics(t *testing.T) {
	out, err := run(t, "check", "--metrics", writeFile(t, "problems.yaml", problemsFile))
	require.NoError(t, err)
	assert.Contains(t, out, "imdpsim_solver_problems_total 3")
	assert.Contains(t, out, `imdpsim_solver_shortcuts_total{shortcut="unsimulable_class"} 1`)
}

func TestCheckWithConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "solver:\n  unsimulable_shortcut: false\ncache:\n  pre: hash\n")
	out, err := run(t, "--config", cfg, "--log-level", "debug", "check", writeFile(t, "problems.yaml", problemsFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"unsimulable", "true"}, line(out, "unsimulable"))
}

const decimalProblemsFile = `
problems:
  - name: mixture
    challenger: [[0.3, 0.3], [0.3, 0.3], [0.4, 0.4]]
    defenders:
      - [[0.1, 0.1], [0.2, 0.2], [0.7, 0.7]]
      - [[0.5, 0.5], [0.4, 0.4], [0.1, 0.1]]
  - name: outside
    challenger: [[0.6, 0.6], [0.3, 0.3], [0.1, 0.1]]
    defenders:
      - [[0.1, 0.1], [0.2, 0.2], [0.7, 0.7]]
      - [[0.3, 0.3], [0.3, 0.3], [0.4, 0.4]]
`

func TestCheckDecimalWeights(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "solver:\n  unsimulable_shortcut: false\n  exact_action_shortcut: false\n")
	out, err := run(t, "--config", cfg, "check", writeFile(t, "problems.yaml", decimalProblemsFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"mixture", "false"}, line(out, "mixture"))
	assert.Equal(t, []string{"outside", "true"}, line(out, "outside"))
}

func TestCheckErrors(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "check", writeFile(t, "bad.yaml", "problems:\n  - challenger: [[0.5, 0.25]]\n"))
	assert.Error(t, err)

	_, err = run(t, "check", writeFile(t, "bad.yaml", "problems:\n  - challenger: [[1, 1]]\n    defenders: [[[0.5, 0.5], [0.5, 0.5]]]\n"))
	assert.Error(t, err)

	_, err = run(t, "check", writeFile(t, "bad.yaml", "problems:\n  - challenger: [[0.5, 0.5], [0.25, 0.25]]\n"))
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "check", writeFile(t, "problems.yaml", problemsFile))
	assert.Error(t, err)
}

func TestViolate(t *testing.T) {
	out, err := run(t, "violate", "--metrics", writeFile(t, "model.yaml", modelFile))
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, []string{"2", "3", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "2", "false"}, strings.Fields(lines[2]))
	assert.Contains(t, out, "imdpsim_solver_problems_total")
}
