// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// recorder captures Fatalf instead of stopping the test. Fatalf
// panics so the helper under test stops where a real test would.
type recorder struct {
	message string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func expectFatal(t *testing.T, want string, run func(r *recorder)) {
	t.Helper()
	r := &recorder{}
	func() {
		defer func() {
			if recovered := recover(); recovered != nil && recovered != r {
				panic(recovered)
			}
		}()
		run(r)
	}()
	if !strings.Contains(r.message, want) {
		t.Errorf("Fatalf message = %q, want it to contain %q", r.message, want)
	}
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	expectFatal(t, "timed out", func(r *recorder) {
		RequireReceive(r, make(chan int), time.Millisecond, "nothing sent")
	})
	closed := make(chan int)
	close(closed)
	expectFatal(t, "channel closed", func(r *recorder) {
		RequireReceive(r, closed, time.Second)
	})
}

func TestRequireReceiveN(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "b"
	ch <- "c"
	got := RequireReceiveN(t, ch, 3, time.Second, "letters")
	if strings.Join(got, "") != "abc" {
		t.Errorf("RequireReceiveN = %v", got)
	}

	short := make(chan string, 1)
	short <- "a"
	expectFatal(t, "1 of 2 values: worker 3", func(r *recorder) {
		RequireReceiveN(r, short, 2, time.Millisecond, "worker %d", 3)
	})
}

func TestRequireClosed(t *testing.T) {
	done := make(chan struct{})
	close(done)
	RequireClosed(t, done, time.Second, "closed channel")

	expectFatal(t, "waiting for channel close", func(r *recorder) {
		RequireClosed(r, make(chan struct{}), time.Millisecond)
	})
}
