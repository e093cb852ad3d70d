package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troopcalc/internal/combat"
	"troopcalc/internal/optimizer"
	"troopcalc/internal/snapshot"
)

const example = "../../assets/example.csv"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", "../../assets"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTemplateCmd(t *testing.T) {
	out, err := run(t, "template")
	require.NoError(t, err)
	s, err := snapshot.Import(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, snapshot.Template().You.Troops, s.You.Troops)

	path := filepath.Join(t.TempDir(), "t.csv")
	_, err = run(t, "template", "--out", path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(raw))
}

func TestMatchCmd(t *testing.T) {
	out, err := run(t, "match", "--snapshot", example, "--json")
	require.NoError(t, err)
	var res combat.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Greater(t, res.YourDamage, 0.0)

	out, err = run(t, "match", "-s", example, "--swap", "--no-synergy", "--alpha", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Damage ratio:")
	assert.Contains(t, out, "synergy x1.0000")
}

func TestOptimizeCmd(t *testing.T) {
	out, err := run(t, "optimize", "-s", example, "--seed", "42", "--json")
	require.NoError(t, err)
	var rep optimizer.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, optimizer.ModeKnown, rep.Mode)
	assert.NotEmpty(t, rep.Recommendations)

	out, err = run(t, "optimize", "-s", example, "--seed", "42", "--blind")
	require.NoError(t, err)
	assert.Contains(t, out, "Blind recommendations")

	out, err = run(t, "optimize", "-s", example, "--grid")
	require.NoError(t, err)
	assert.Contains(t, out, "Grid search results")
}

func TestCmdErrors(t *testing.T) {
	_, err := run(t, "match")
	assert.ErrorContains(t, err, "--snapshot is required")

	_, err = run(t, "match", "-s", "does-not-exist.csv")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Side,Type\n"), 0o644))
	_, err = run(t, "optimize", "-s", bad)
	assert.ErrorIs(t, err, snapshot.ErrNotEnoughRows)
}

func TestConfigCmd(t *testing.T) {
	out, err := run(t, "config", "--alpha", "0.65")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha: 0.65")
	assert.Contains(t, out, "population_size: 60")
	assert.Contains(t, out, "archer_backbone")
}
