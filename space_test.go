package qecc

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestResultSpace(t *testing.T) {
	Convey("Given a result space", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		rs := NewResultSpace(time.Minute)

		Reset(func() {
			rs.Close()
			cancel()
		})

		Convey("When storing and retrieving values", func() {
			rs.Store("stored", "value", nil, time.Minute)

			Convey("Value should be retrievable", func() {
				select {
				case <-ctx.Done():
					t.Fatal("timed out waiting for value")
				case r := <-rs.Await("stored"):
					So(r.Value, ShouldEqual, "value")
					So(r.Error, ShouldBeNil)
				}
			})
		})

		Convey("When awaiting before the value exists", func() {
			ch := rs.Await("later")
			other := rs.Await("later")

			go rs.Store("later", 42, errors.New("boom"), 0)

			Convey("Every waiter should be woken", func() {
				for _, c := range []chan Result{ch, other} {
					select {
					case <-ctx.Done():
						t.Fatal("timed out waiting for value")
					case r := <-c:
						So(r.Value, ShouldEqual, 42)
						So(r.Error, ShouldNotBeNil)
					}
				}
			})
		})

		Convey("When values expire", func() {
			rs.Store("short", 1, nil, time.Millisecond)
			rs.Store("forever", 2, nil, 0)
			time.Sleep(5 * time.Millisecond)

			rs.mu.Lock()
			rs.cleanupExpiredValues()
			rs.mu.Unlock()

			Convey("Only unexpired values should remain", func() {
				So(rs.Len(), ShouldEqual, 1)
				r := <-rs.Await("forever")
				So(r.Value, ShouldEqual, 2)
			})
		})

		Convey("When deleting a value", func() {
			rs.Store("gone", 1, nil, 0)
			rs.Delete("gone")
			So(rs.Len(), ShouldEqual, 0)
		})

		Convey("Close should be idempotent", func() {
			rs.Close()
			So(func() { rs.Close() }, ShouldNotPanic)
		})
	})

	Convey("Given a result space that cleans up every few milliseconds", t, func() {
		rs := NewResultSpace(2 * time.Millisecond)
		Reset(rs.Close)

		rs.Store("short", 1, nil, 5*time.Millisecond)
		rs.Store("forever", 2, nil, 0)

		Convey("Expired values should be dropped without being asked", func() {
			deadline := time.Now().Add(testTimeout)
			for rs.Len() > 1 && time.Now().Before(deadline) {
				time.Sleep(2 * time.Millisecond)
			}
			So(rs.Len(), ShouldEqual, 1)
		})
	})

	Convey("A non-positive cleanup interval should fall back to a minute", t, func() {
		rs := NewResultSpace(0)
		defer rs.Close()
		So(rs.Len(), ShouldEqual, 0)
	})
}
