package qecc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSweeper(t *testing.T) {
	Convey("Given a sweeper on four workers", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		config := NewConfig()
		config.Workers = 4

		sweeper, err := NewSweeper(ctx, config)
		So(err, ShouldBeNil)

		Reset(func() {
			sweeper.Close()
			cancel()
		})

		Convey("Every single-error scenario should pass", func() {
			report, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(1)))
			So(err, ShouldBeNil)
			So(report.Total, ShouldEqual, 50)
			So(report.OK(), ShouldBeTrue)
			So(report.Failures(), ShouldBeEmpty)
			So(sweeper.Metrics().Outcome(OutcomePassed), ShouldEqual, 50)
		})

		Convey("Outcomes should keep scenario order", func() {
			scenarios := Scenarios(StandardInputs(), ErrorPatterns(1))
			report, err := sweeper.Run(ctx, scenarios)
			So(err, ShouldBeNil)
			for i, o := range report.Outcomes {
				So(o.Scenario.ID, ShouldEqual, scenarios[i].ID)
			}
		})

		Convey("Pairs of errors should fail some scenarios without fatal errors", func() {
			report, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(2)))
			So(err, ShouldBeNil)
			So(report.Total, ShouldEqual, 230)
			So(report.Fatal, ShouldEqual, 0)
			So(report.Invalid, ShouldEqual, 0)
			So(report.Passed, ShouldBeGreaterThanOrEqualTo, 50)
			So(report.Failed, ShouldBeGreaterThan, 0)
			So(report.Passed+report.Failed, ShouldEqual, 230)
		})

		Convey("A reused sweeper should not see stale results", func() {
			scenarios := Scenarios(StandardInputs()[:1], ErrorPatterns(0))
			first, err := sweeper.Run(ctx, scenarios)
			So(err, ShouldBeNil)
			second, err := sweeper.Run(ctx, scenarios)
			So(err, ShouldBeNil)
			So(first.Total, ShouldEqual, 1)
			So(second.Total, ShouldEqual, 1)
			So(sweeper.pool.space.Len(), ShouldEqual, 0)
		})

		Convey("Invalid scenarios should be counted, not fatal", func() {
			report, err := sweeper.Run(ctx, []Scenario{
				{ID: "bad", Input: InputState{Theta: 4}},
				{ID: "good", Input: InputState{}},
			})
			So(err, ShouldBeNil)
			So(report.Invalid, ShouldEqual, 1)
			So(report.Passed, ShouldEqual, 1)
			So(report.Outcomes[0].Class, ShouldEqual, ClassInvalidInput)
		})
	})
}

func TestSweeperFatalBreaker(t *testing.T) {
	Convey("Given a sweeper that stops after two fatal errors", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		config := NewConfig()
		config.Workers = 1
		config.FatalBreaker = 2

		calls := 0
		sweeper, err := NewSweeper(ctx, config, WithEvaluateFunc(func(sc Scenario) (Verdict, error) {
			calls++
			return Verdict{}, newEvaluationError(sc.ID, fmt.Errorf("%w: forced", ErrInternalConsistency))
		}))
		So(err, ShouldBeNil)

		Reset(func() {
			sweeper.Close()
			cancel()
		})

		Convey("The remaining scenarios should be skipped", func() {
			report, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(0)))
			So(err, ShouldBeNil)
			So(report.Total, ShouldEqual, 5)
			So(report.Fatal, ShouldEqual, 2)
			So(report.Skipped, ShouldEqual, 3)
			So(calls, ShouldEqual, 2)
			So(report.OK(), ShouldBeFalse)

			skipped := report.Outcomes[4]
			So(skipped.Class, ShouldEqual, ClassSkipped)
			So(errors.Is(skipped.Err, ErrBreakerOpen), ShouldBeTrue)
			So(sweeper.Metrics().Outcome(OutcomeFatal), ShouldEqual, 2)
		})
	})

	Convey("Given a sweeper without a breaker", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		config := NewConfig()
		config.Workers = 2

		sweeper, err := NewSweeper(ctx, config, WithEvaluateFunc(func(sc Scenario) (Verdict, error) {
			return Verdict{}, fmt.Errorf("%w: forced", ErrNumericRange)
		}))
		So(err, ShouldBeNil)

		Reset(func() {
			sweeper.Close()
			cancel()
		})

		Convey("Every fatal scenario should still run", func() {
			report, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(0)))
			So(err, ShouldBeNil)
			So(report.Fatal, ShouldEqual, 5)
			So(report.Skipped, ShouldEqual, 0)
		})
	})

	Convey("Given a cancelled context", t, func() {
		sweeper, err := NewSweeper(context.Background(), nil)
		So(err, ShouldBeNil)
		defer sweeper.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Run should return the context error", func() {
			_, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(1)))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a sweep its caller walks away from", t, func() {
		config := NewConfig()
		config.Workers = 1
		config.ResultTTL = 50 * time.Millisecond

		started := make(chan struct{}, 8)
		release := make(chan struct{})
		sweeper, err := NewSweeper(context.Background(), config, WithEvaluateFunc(func(sc Scenario) (Verdict, error) {
			started <- struct{}{}
			<-release
			return Verdict{Passed: true}, nil
		}))
		So(err, ShouldBeNil)
		Reset(sweeper.Close)

		Convey("Its uncollected results should expire", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				_, err := sweeper.Run(ctx, Scenarios(StandardInputs(), ErrorPatterns(0)))
				done <- err
			}()

			<-started
			cancel()
			So(errors.Is(<-done, context.Canceled), ShouldBeTrue)
			close(release)

			deadline := time.Now().Add(testTimeout)
			for sweeper.pool.space.Len() == 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			So(sweeper.pool.space.Len(), ShouldBeGreaterThan, 0)

			for sweeper.pool.space.Len() > 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(sweeper.pool.space.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given an invalid config", t, func() {
		config := NewConfig()
		config.Workers = 0

		_, err := NewSweeper(context.Background(), config)
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
	})
}

func TestOutcomeLabel(t *testing.T) {
	Convey("Given outcomes of every kind", t, func() {
		So(Outcome{Verdict: Verdict{Passed: true}}.Label(), ShouldEqual, OutcomePassed)
		So(Outcome{}.Label(), ShouldEqual, OutcomeFailed)
		So(Outcome{Err: ErrNumericRange, Class: ClassNumericRange}.Label(), ShouldEqual, OutcomeFatal)
		So(Outcome{Err: ErrInvalidInput, Class: ClassInvalidInput}.Label(), ShouldEqual, OutcomeInvalid)
		So(Outcome{Err: ErrBreakerOpen, Class: ClassSkipped}.Label(), ShouldEqual, OutcomeSkipped)
	})
}
