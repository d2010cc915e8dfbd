package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

func TestDefault(t *testing.T) {
	r := Default()

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "hero-cta-test", list[0].ID)
	assert.Equal(t, "pricing-display-test", list[1].ID)

	exp, ok := r.Get("hero-cta-test")
	require.True(t, ok)
	assert.Equal(t, 100, exp.TrafficPercent)
	assert.Equal(t, domain.StatusRunning, exp.Status)
	assert.Equal(t, "Consulta Gratis", exp.Variant("variant-a").Config["buttonText"])

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "experiments.yaml"), nil)
	require.NoError(t, err)

	exp, ok := r.Get("signup-copy")
	require.True(t, ok)
	assert.Equal(t, 80, exp.TrafficPercent)
	require.Len(t, exp.Variants, 3)
	assert.Equal(t, "short", exp.Variants[1].ID)
	assert.Equal(t, "Go", exp.Variants[1].Config["headline"])

	paused, ok := r.Get("footer-test")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPaused, paused.Status)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("experiments: [::"), 0644))
	_, err = Load(path, nil)
	assert.Error(t, err)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	exps := Defaults()
	exps = append(exps, exps[0])

	_, err := New(exps, nil)
	assert.True(t, errors.Is(err, ErrDuplicateExperiment))
}

func TestNew_RejectsInvalidExperiment(t *testing.T) {
	exps := Defaults()
	exps[0].TrafficPercent = 150

	_, err := New(exps, nil)
	assert.True(t, errors.Is(err, domain.ErrTrafficRange))
}

func TestNew_WarnsOnWeightTotal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	exps := Defaults()
	exps[0].Variants[1].Weight = 30

	_, err := New(exps, zap.New(core))
	require.NoError(t, err)

	entries := logs.FilterMessage("experiment variant weights do not sum to 100").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hero-cta-test", entries[0].ContextMap()["experiment_id"])
	assert.Equal(t, int64(80), entries[0].ContextMap()["weight_total"])
}

func TestList_ReturnsCopy(t *testing.T) {
	r := Default()
	list := r.List()
	list[0] = nil

	assert.NotNil(t, r.List()[0])
}
