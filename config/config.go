// Package config loads the job-model run parameters from YAML:
// spf13/viper reads the file into an outer envelope, which is
// re-marshalled with gopkg.in/yaml.v3 and decoded into the typed inner
// config.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the viper-facing envelope: every run-config YAML file
// nests its actual parameters under a `def` key, `kind` naming the
// config's schema version for forward compatibility.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// RunConfig carries every job-model run parameter that is not itself
// part of the lattice/tables the database loader supplies:
// flags, temperature, goal, RNG seed, and the KMC/MMC regime-specific
// parameters.
type RunConfig struct {
	UseKMC         bool `yaml:"useKMC"`
	UsePrerun      bool `yaml:"usePrerun"`
	SkipSave       bool `yaml:"skipSave"`
	UseFastExp     bool `yaml:"useFastExp"`
	DisableJumpLog bool `yaml:"disableJumpLog"`

	TemperatureK float64 `yaml:"temperatureK"`
	TargetMCSP   float64 `yaml:"targetMCSP"`
	TimeLimitS   float64 `yaml:"timeLimitS"`

	RNGSeed uint64 `yaml:"rngSeed"`
	RNGInc  uint64 `yaml:"rngInc"`

	KMC KMCRunParams `yaml:"kmc"`
	MMC MMCRunParams `yaml:"mmc"`

	InteractionRange int32   `yaml:"interactionRange"`
	JumpHistogramMax float64 `yaml:"jumpHistogramMax"`

	MinSuccessRateHz float64 `yaml:"minSuccessRateHz"`
	BlockCycles      int64   `yaml:"blockCycles"`
	BlockCount       int64   `yaml:"blockCount"`
}

// KMCRunParams mirrors model.KMCParams plus the pre-run target.
type KMCRunParams struct {
	FieldModulusVPerM        float64 `yaml:"fieldModulusVPerM"`
	AttemptFrequencyHz       float64 `yaml:"attemptFrequencyHz"`
	FixedNormalizationFactor float64 `yaml:"fixedNormalizationFactor"`
	PrerunTargetMCSP         float64 `yaml:"prerunTargetMCSP"`
}

// MMCRunParams mirrors model.MMCParams.
type MMCRunParams struct {
	AbortTolerance      float64 `yaml:"abortTolerance"`
	AbortSequenceLength int     `yaml:"abortSequenceLength"`
	AbortSampleLength   int     `yaml:"abortSampleLength"`
}

// FromYaml loads a RunConfig from path via the viper -> yaml.v3
// outer/inner re-marshal pattern.
func FromYaml(path string) (*RunConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	inner := &RunConfig{}
	if err := yaml.Unmarshal(raw, inner); err != nil {
		return nil, err
	}
	return inner, nil
}
