// Copyright 2025 VeloxVoIP
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hook

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/livekit/protocol/logger"
)

func TestDispatcherRunsTask(t *testing.T) {
	exec := newRecordExecutor()
	d := newDispatcher(exec, 2, 8, time.Minute, logger.GetLogger())
	t.Cleanup(d.close)

	task := launchTask{
		hookID:  "7",
		channel: "Test/0001",
		target:  Target{Context: "hooks", Name: "beep"},
	}
	if err := d.submit(task); err != nil {
		t.Fatal(err)
	}

	call := exec.wait(t)
	if call.vars[VarHookID] != "7" || call.vars[VarHookChannel] != "Test/0001" {
		t.Fatalf("unexpected vars: %v", call.vars)
	}
	if call.target != task.target {
		t.Fatalf("unexpected target: %+v", call.target)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	block := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	exec := &blockingExecutor{block: block, started: &started}

	d := newDispatcher(exec, 1, 1, time.Minute, logger.GetLogger())
	t.Cleanup(func() {
		close(block)
		d.close()
	})

	// First task occupies the worker, second fills the queue.
	if err := d.submit(launchTask{hookID: "1"}); err != nil {
		t.Fatal(err)
	}
	started.Wait()
	if err := d.submit(launchTask{hookID: "2"}); err != nil {
		t.Fatal(err)
	}

	if err := d.submit(launchTask{hookID: "3"}); err == nil {
		t.Fatal("expected submit to fail with a full queue")
	}
}

func TestDispatcherUnbounded(t *testing.T) {
	exec := newRecordExecutor()
	d := newDispatcher(exec, 0, 0, time.Minute, logger.GetLogger())
	t.Cleanup(d.close)

	for i := 0; i < 10; i++ {
		if err := d.submit(launchTask{hookID: "1", channel: "Test/0001"}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		exec.wait(t)
	}
}

func TestDispatcherClosed(t *testing.T) {
	exec := newRecordExecutor()
	d := newDispatcher(exec, 1, 1, time.Minute, logger.GetLogger())
	d.close()

	if err := d.submit(launchTask{hookID: "1"}); err == nil {
		t.Fatal("expected submit on closed dispatcher to fail")
	}
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	var hadDeadline atomic.Bool
	exec := executorFunc(func(ctx context.Context, _ Target, _ map[string]string) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	})

	d := newDispatcher(exec, 1, 1, time.Minute, logger.GetLogger())
	if err := d.submit(launchTask{hookID: "1"}); err != nil {
		t.Fatal(err)
	}
	d.close()

	if !hadDeadline.Load() {
		t.Fatal("expected executor context to carry a deadline")
	}
}

type executorFunc func(ctx context.Context, target Target, vars map[string]string) error

func (f executorFunc) Execute(ctx context.Context, target Target, vars map[string]string) error {
	return f(ctx, target, vars)
}
