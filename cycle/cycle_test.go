package cycle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOutcomeString(t *testing.T) {
	Convey("Every defined Outcome has a non-empty, distinct string", t, func() {
		outcomes := []Outcome{
			OutcomeEndUnstable,
			OutcomeStartUnstable,
			OutcomeAccepted,
			OutcomeRejected,
			OutcomeSiteBlocking,
			OutcomeSkipped,
		}
		seen := map[string]bool{}
		for _, o := range outcomes {
			s := o.String()
			So(s, ShouldNotBeEmpty)
			So(seen[s], ShouldBeFalse)
			seen[s] = true
		}
	})

	Convey("An out-of-range Outcome stringifies to unknown", t, func() {
		So(Outcome(99).String(), ShouldEqual, "unknown")
	})
}

func TestStateResetReusesBackingArrays(t *testing.T) {
	Convey("Given a State grown to length 4", t, func() {
		s := &State{}
		s.Reset(4)
		path := s.Path
		for i := range path {
			path[i] = int64(i + 1)
		}

		Convey("Resetting to a shorter length reuses the same backing array", func() {
			s.Reset(2)
			So(len(s.Path), ShouldEqual, 2)
			So(&s.Path[0], ShouldEqual, &path[0])
		})

		Convey("Resetting to a longer length allocates fresh storage", func() {
			s.Reset(8)
			So(len(s.Path), ShouldEqual, 8)
		})

		Convey("Reset clears the staged rule and defaults the outcome to rejected", func() {
			s.Rule = nil
			s.Outcome = OutcomeAccepted
			s.Reset(4)
			So(s.Rule, ShouldBeNil)
			So(s.Outcome, ShouldEqual, OutcomeRejected)
		})
	})
}
