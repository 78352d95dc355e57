package qecc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	Convey("Given a new pool", t, func(c C) {
		ctx, cancel := context.WithCancel(context.Background())
		config := NewConfig()
		config.Workers = 2
		q := NewQ(ctx, config)

		Reset(func() {
			q.Close()
			cancel()
		})

		Convey("When scheduling a simple job", func(c C) {
			result := q.Schedule("simple", func() (any, error) {
				return "success", nil
			})

			value := <-result
			c.So(value.Error, ShouldBeNil)
			c.So(value.Value, ShouldEqual, "success")
		})

		Convey("When a job fails", func(c C) {
			var attempts atomic.Int32
			result := q.Schedule("doomed", func() (any, error) {
				attempts.Add(1)
				return "partial", errors.New("permanent error")
			})

			value := <-result
			c.So(value.Error, ShouldNotBeNil)
			c.So(value.Value, ShouldEqual, "partial")
			c.So(attempts.Load(), ShouldEqual, 1)
		})

		Convey("When using a circuit breaker", func(c C) {
			breaker := NewCircuitBreaker(2, time.Minute, 1)
			q.AddBreaker("flaky", breaker)

			for i := 0; i < 2; i++ {
				value := <-q.Schedule(fmt.Sprintf("flaky-%d", i), func() (any, error) {
					return nil, errors.New("failure")
				}, WithCircuitBreaker("flaky", 2, time.Minute))
				c.So(value.Error, ShouldNotBeNil)
			}

			c.So(breaker.State(), ShouldEqual, CircuitOpen)

			value := <-q.Schedule("flaky-2", func() (any, error) {
				return "never", nil
			}, WithCircuitBreaker("flaky", 2, time.Minute))
			c.So(errors.Is(value.Error, ErrBreakerOpen), ShouldBeTrue)
		})

		Convey("When a job names a breaker that does not exist yet", func(c C) {
			<-q.Schedule("lazy", func() (any, error) {
				return nil, nil
			}, WithCircuitBreaker("lazy-breaker", 3, time.Second))

			c.So(q.breaker("lazy-breaker"), ShouldNotBeNil)
		})

		Convey("When forgetting a result", func(c C) {
			<-q.Schedule("forget-me", func() (any, error) {
				return 1, nil
			})
			c.So(q.space.Len(), ShouldEqual, 1)

			q.Forget("forget-me")
			c.So(q.space.Len(), ShouldEqual, 0)
		})

		Convey("When running many jobs concurrently", func(c C) {
			results := make([]chan Result, 50)
			for i := range results {
				n := i
				results[i] = q.Schedule(fmt.Sprintf("bulk-%d", i), func() (any, error) {
					return n * n, nil
				})
			}

			for i, ch := range results {
				value := <-ch
				c.So(value.Value, ShouldEqual, i*i)
			}

			c.So(q.Metrics().JobCount, ShouldBeGreaterThanOrEqualTo, 50)
		})
	})

	Convey("Given a pool with a short result lifetime", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		config := NewConfig()
		config.Workers = 1
		config.ResultTTL = 10 * time.Millisecond
		q := NewQ(ctx, config)

		Reset(func() {
			q.Close()
			cancel()
		})

		Convey("Uncollected results with a TTL should expire", func() {
			<-q.Schedule("kept", func() (any, error) { return 1, nil })
			<-q.Schedule("expiring", func() (any, error) {
				return 2, nil
			}, WithTTL(config.ResultTTL))
			So(q.space.Len(), ShouldEqual, 2)

			deadline := time.Now().Add(testTimeout)
			for q.space.Len() > 1 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			So(q.space.Len(), ShouldEqual, 1)
			r := <-q.space.Await("kept")
			So(r.Value, ShouldEqual, 1)
		})
	})

	Convey("Given a closed pool", t, func() {
		q := NewQ(context.Background(), nil)
		q.Close()

		Convey("Close should be idempotent", func() {
			So(func() { q.Close() }, ShouldNotPanic)
		})
	})
}
