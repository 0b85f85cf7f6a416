package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleYAML = `
kind: run-config-v1
def:
  useKMC: true
  usePrerun: false
  temperatureK: 450.0
  targetMCSP: 1000.0
  rngSeed: 42
  rngInc: 7
  interactionRange: 2
  kmc:
    fieldModulusVPerM: 1.0e7
    attemptFrequencyHz: 1.0e13
  mmc:
    abortTolerance: 0.0001
    abortSequenceLength: 500
`

func TestFromYamlDecodesNestedEnvelope(t *testing.T) {
	Convey("Given a run-config YAML file nested under a def key", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "run.yaml")
		So(os.WriteFile(path, []byte(sampleYAML), 0o644), ShouldBeNil)

		Convey("FromYaml decodes the inner config's scalar fields", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.UseKMC, ShouldBeTrue)
			So(cfg.UsePrerun, ShouldBeFalse)
			So(cfg.TemperatureK, ShouldEqual, 450.0)
			So(cfg.RNGSeed, ShouldEqual, uint64(42))
			So(cfg.InteractionRange, ShouldEqual, int32(2))
		})

		Convey("FromYaml decodes the nested KMC and MMC sub-structs", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.KMC.FieldModulusVPerM, ShouldEqual, 1.0e7)
			So(cfg.MMC.AbortTolerance, ShouldEqual, 0.0001)
			So(cfg.MMC.AbortSequenceLength, ShouldEqual, 500)
		})
	})

	Convey("Given a nonexistent path", t, func() {
		Convey("FromYaml returns an error", func() {
			_, err := FromYaml(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
