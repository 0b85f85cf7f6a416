package errs

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorUnwrapAndKindOf(t *testing.T) {
	Convey("Given an error wrapped with a Kind", t, func() {
		root := errors.New("disk full")
		wrapped := Wrap(File, "WriteAtomic", root)

		Convey("Unwrap exposes the original error", func() {
			So(errors.Unwrap(wrapped), ShouldEqual, root)
		})

		Convey("errors.Is sees through the wrap", func() {
			So(errors.Is(wrapped, root), ShouldBeTrue)
		})

		Convey("KindOf recovers the Kind through errors.As", func() {
			So(KindOf(wrapped), ShouldEqual, File)
		})

		Convey("KindOf on a plain error returns Unknown", func() {
			So(KindOf(root), ShouldEqual, Unknown)
		})

		Convey("Wrapping a nil error returns nil", func() {
			So(Wrap(File, "f", nil), ShouldBeNil)
		})
	})
}

func TestKindIsRecoverable(t *testing.T) {
	Convey("UseDefault and Continue are recoverable", t, func() {
		So(UseDefault.IsRecoverable(), ShouldBeTrue)
		So(Continue.IsRecoverable(), ShouldBeTrue)
	})

	Convey("Every other kind is not recoverable", t, func() {
		for _, k := range []Kind{Ok, Stream, File, FileMode, Database, BufferOverflow,
			MemAllocation, DataConsistency, HashProtection, LibraryLoading, FunctionImport,
			CmdArgument, Validation, NotImplemented, Nullpointer, Argument, DebugAssert, Unknown} {
			So(k.IsRecoverable(), ShouldBeFalse)
		}
	})
}

func TestErrorMessageFormatting(t *testing.T) {
	Convey("An Error without a wrapped cause formats func, kind, and message", t, func() {
		e := New(Validation, "CheckJob", "negative temperature")
		So(e.Error(), ShouldEqual, fmt.Sprintf("%s: %s: %s", "CheckJob", Validation, "negative temperature"))
	})

	Convey("An Error with a wrapped cause appends it", t, func() {
		root := errors.New("boom")
		e := Wrap(Database, "Load", root)
		So(e.Error(), ShouldEqual, fmt.Sprintf("%s: %s: %s: %v", "Load", Database, root.Error(), root))
	})
}
