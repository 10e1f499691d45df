package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/includeguardian/internal/config"
)

func TestValidateRejectsBadCutoff(t *testing.T) {
	o := config.Options{BuildDir: "/build", Analyze: true, CutoffPercent: 150}
	assert.Error(t, o.Validate())
}

func TestValidateRejectsBadRatio(t *testing.T) {
	o := config.Options{BuildDir: "/build", Analyze: true, PCHRatio: 2}
	assert.Error(t, o.Validate())
}

func TestValidateRejectsLoadAndBuildDirTogether(t *testing.T) {
	o := config.Options{BuildDir: "/build", LoadPath: "snap.bin", Analyze: true}
	assert.Error(t, o.Validate())
}

func TestValidateRequiresADataSource(t *testing.T) {
	o := config.Options{Analyze: true}
	assert.Error(t, o.Validate())
}

func TestValidateRequiresAnOperation(t *testing.T) {
	o := config.Options{BuildDir: "/build"}
	assert.Error(t, o.Validate())
}

func TestValidateAcceptsWellFormedOptions(t *testing.T) {
	o := config.Options{BuildDir: "/build", Analyze: true, CutoffPercent: 1, PCHRatio: 0.5}
	assert.NoError(t, o.Validate())
}

func TestMinTokenCutOff(t *testing.T) {
	o := config.Options{CutoffPercent: 10}
	assert.Equal(t, int64(100), o.MinTokenCutOff(1000))
}
