package combat

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalize(t *testing.T) {
	f, ok := NewFormation(2, 1, 1).Normalize()
	require.True(t, ok)
	assert.InDelta(t, 0.5, f[Infantry], 1e-12)
	assert.InDelta(t, 1.0, f.Sum(), 1e-12)

	f, ok = NewFormation(-1, 1, 1).Normalize()
	require.True(t, ok)
	assert.Equal(t, 0.0, f[Infantry])
	assert.InDelta(t, 0.5, f[Archer], 1e-12)

	_, ok = NewFormation(0, 0, 0).Normalize()
	assert.False(t, ok)
	_, ok = NewFormation(math.NaN(), 1, 1).Normalize()
	assert.False(t, ok)
	_, ok = NewFormation(-1, -2, 0).Normalize()
	assert.False(t, ok)
}

func TestLargestSmallest(t *testing.T) {
	assert.Equal(t, Archer, NewFormation(0.3, 0.2, 0.5).Largest())
	assert.Equal(t, Cavalry, NewFormation(0.3, 0.2, 0.5).Smallest())
	assert.Equal(t, Infantry, NewFormation(0.4, 0.4, 0.2).Largest())
	assert.Equal(t, Infantry, NewFormation(1.0/3, 1.0/3, 1.0/3).Smallest())
}

func TestFormationKey(t *testing.T) {
	f := NewFormation(0.304, 0.196, 0.5)
	assert.Equal(t, "30/20/50", f.Key(0.01))
	assert.Equal(t, "6/4/10", f.Key(0.05))
	assert.Equal(t, "Inf 30% / Cav 20% / Arch 50%", f.String())
}

func TestFormationJSON(t *testing.T) {
	b, err := json.Marshal(NewFormation(0.3, 0.2, 0.5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Inf":0.3,"Cav":0.2,"Arch":0.5}`, string(b))

	var f Formation
	require.NoError(t, json.Unmarshal([]byte(`{"infantry":0.25,"Cav":0.15,"archer":0.6}`), &f))
	assert.Equal(t, NewFormation(0.25, 0.15, 0.6), f)

	assert.Error(t, json.Unmarshal([]byte(`{"Mage":1}`), &f))
}

func TestFormationFromMap(t *testing.T) {
	f, err := FormationFromMap(map[string]float64{"Inf": 0.3, "Cav": 0.2, "Arch": 0.5})
	require.NoError(t, err)
	assert.Equal(t, NewFormation(0.3, 0.2, 0.5), f)
	assert.Equal(t, map[string]float64{"Inf": 0.3, "Cav": 0.2, "Arch": 0.5}, f.Map())

	_, err = FormationFromMap(map[string]float64{"Dragons": 1})
	assert.Error(t, err)
}

func TestStatProfileJSON(t *testing.T) {
	p := UniformProfile(Stats{Attack: 250, Defense: 200, Lethality: 150, Health: 180})
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var back StatProfile
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)
	assert.False(t, back.IsZero())
	assert.True(t, StatProfile{}.IsZero())
}

func TestFormationYAML(t *testing.T) {
	b, err := yaml.Marshal(NewFormation(0.3, 0.2, 0.5))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Arch: 0.5")

	var f Formation
	require.NoError(t, yaml.Unmarshal([]byte("Inf: 0.4\nCav: 0.15\nArch: 0.45\n"), &f))
	assert.Equal(t, NewFormation(0.4, 0.15, 0.45), f)

	assert.Error(t, yaml.Unmarshal([]byte("Siege: 1\n"), &f))
}
