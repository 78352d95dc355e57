package qecc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorPatterns(t *testing.T) {
	Convey("Given the nine-qubit register", t, func() {
		Convey("It should enumerate patterns by size", func() {
			So(len(ErrorPatterns(0)), ShouldEqual, 1)
			So(len(ErrorPatterns(1)), ShouldEqual, 10)
			So(len(ErrorPatterns(2)), ShouldEqual, 46)
			So(len(ErrorPatterns(9)), ShouldEqual, 512)
			So(len(ErrorPatterns(12)), ShouldEqual, 512)
		})

		Convey("It should list the empty pattern first, then lexicographically", func() {
			patterns := ErrorPatterns(2)
			So(patterns[0].Len(), ShouldEqual, 0)
			So(patterns[1], ShouldResemble, ErrorPattern{0})
			So(patterns[9], ShouldResemble, ErrorPattern{8})
			So(patterns[10], ShouldResemble, ErrorPattern{0, 1})
			So(patterns[45], ShouldResemble, ErrorPattern{7, 8})
		})

		Convey("Patterns should be independent slices", func() {
			patterns := ErrorPatterns(2)
			patterns[10][0] = 5
			So(patterns[11], ShouldResemble, ErrorPattern{0, 2})
		})
	})

	Convey("Given the three-qubit register", t, func() {
		So(len(CodeBitFlip.ErrorPatterns(1)), ShouldEqual, 4)
		So(len(CodeBitFlip.ErrorPatterns(3)), ShouldEqual, 8)
	})
}

func TestScenarios(t *testing.T) {
	Convey("Given the standard inputs and single errors", t, func() {
		scenarios := Scenarios(StandardInputs(), ErrorPatterns(1))

		Convey("It should build the full cross product", func() {
			So(len(scenarios), ShouldEqual, 50)
			So(scenarios[0].Errors.Len(), ShouldEqual, 0)
			So(scenarios[49].Input, ShouldResemble, StandardInputs()[4])
			So(scenarios[49].Errors, ShouldResemble, ErrorPattern{8})
		})

		Convey("IDs should be unique", func() {
			seen := make(map[string]bool)
			for _, sc := range scenarios {
				So(seen[sc.ID], ShouldBeFalse)
				seen[sc.ID] = true
			}
			So(scenarios[11].ID, ShouldEqual, "in01/err0001{0}")
		})
	})
}
