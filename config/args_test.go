package config

import (
	"testing"

	"github.com/niceyeti/ionhop/errs"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseArgsHappyPath(t *testing.T) {
	Convey("Given a valid flat argument list", t, func() {
		dir := t.TempDir()
		argv := []string{
			"-ioPath", dir,
			"-extDir", dir,
			"-dbQuery", "7",
			"-jumpHistogramMax", "2.5",
			"-fastExp", "true",
			"-outPluginSymbol", "Output",
		}

		Convey("ParseArgs resolves every key into the Args struct", func() {
			a, err := ParseArgs(argv)
			So(err, ShouldBeNil)
			So(a.IOPath, ShouldEqual, dir)
			So(a.ExtDir, ShouldEqual, dir)
			So(a.DBQuery, ShouldEqual, int64(7))
			So(a.JumpHistogramMax, ShouldEqual, 2.5)
			So(a.FastExp, ShouldBeTrue)
			So(a.OutPluginSymbol, ShouldEqual, "Output")
		})
	})

	Convey("Keys are accepted with or without a leading dash", t, func() {
		dir := t.TempDir()
		a, err := ParseArgs([]string{"ioPath", dir})
		So(err, ShouldBeNil)
		So(a.IOPath, ShouldEqual, dir)
	})
}

func TestParseArgsRejectsBadInput(t *testing.T) {
	Convey("An unrecognized key is a CmdArgument error", t, func() {
		_, err := ParseArgs([]string{"-bogus", "x"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("A missing trailing value is a CmdArgument error", t, func() {
		_, err := ParseArgs([]string{"-ioPath"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("A nonexistent ioPath directory is rejected", t, func() {
		_, err := ParseArgs([]string{"-ioPath", "/no/such/dir"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("A negative dbQuery is rejected", t, func() {
		_, err := ParseArgs([]string{"-dbQuery", "-1"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("A non-positive jumpHistogramMax is rejected", t, func() {
		_, err := ParseArgs([]string{"-jumpHistogramMax", "0"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("An empty outPluginSymbol is rejected", t, func() {
		_, err := ParseArgs([]string{"-outPluginSymbol", ""})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})

	Convey("A non-boolean fastExp value is rejected", t, func() {
		_, err := ParseArgs([]string{"-fastExp", "maybe"})
		So(errs.KindOf(err), ShouldEqual, errs.CmdArgument)
	})
}
