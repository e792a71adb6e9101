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
	"errors"
	"sync"
	"time"

	"github.com/evan-idocoding/zkit/rt/safego"
	"github.com/frostbyte73/core"
	"github.com/livekit/protocol/logger"
)

// Variables passed to the executor so the receiving context can address the
// originating channel and the specific hook.
const (
	VarHookChannel = "HOOK_CHANNEL"
	VarHookID      = "HOOK_ID"
)

// Executor is the external action-execution collaborator. Execute is called
// from a context independent of the media path; its errors are invisible to
// the hook that fired.
type Executor interface {
	Execute(ctx context.Context, target Target, vars map[string]string) error
}

var (
	errDispatcherClosed  = errors.New("hook dispatcher is closed")
	errDispatchQueueFull = errors.New("hook dispatch queue is full")
)

// launchTask carries copies of everything a firing needs. It shares no state
// with the hook record that produced it.
type launchTask struct {
	hookID  string
	channel string
	target  Target
}

// dispatcher hands fired tasks to the executor without blocking the media
// path. With workers > 0 it runs a bounded pool with a buffered queue and a
// full queue fails the submit; with unbounded mode it spawns a detached
// goroutine per firing.
type dispatcher struct {
	exec    Executor
	log     logger.Logger
	timeout time.Duration

	tasks  chan launchTask // nil in unbounded mode
	wg     sync.WaitGroup
	closed core.Fuse
}

func newDispatcher(exec Executor, workers, queue int, timeout time.Duration, log logger.Logger) *dispatcher {
	d := &dispatcher{
		exec:    exec,
		log:     log,
		timeout: timeout,
	}
	if workers > 0 {
		d.tasks = make(chan launchTask, queue)
		d.wg.Add(workers)
		for i := 0; i < workers; i++ {
			go d.worker()
		}
	}
	return d
}

// submit hands off one firing. Never blocks.
func (d *dispatcher) submit(t launchTask) error {
	if d.closed.IsBroken() {
		return errDispatcherClosed
	}
	if d.tasks == nil {
		safego.Go(context.Background(), func(ctx context.Context) {
			d.run(t)
		})
		return nil
	}
	select {
	case d.tasks <- t:
		return nil
	default:
		return errDispatchQueueFull
	}
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case t := <-d.tasks:
			d.run(t)
		case <-d.closed.Watch():
			// Drain what was queued before the close.
			for {
				select {
				case t := <-d.tasks:
					d.run(t)
				default:
					return
				}
			}
		}
	}
}

func (d *dispatcher) run(t launchTask) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	vars := map[string]string{
		VarHookChannel: t.channel,
		VarHookID:      t.hookID,
	}
	if err := d.exec.Execute(ctx, t.target, vars); err != nil {
		// Fire and forget: the hook that triggered this is not told.
		d.log.Debugw("hook action failed",
			"channel", t.channel, "hookID", t.hookID,
			"context", t.target.Context, "extension", t.target.Name,
			"error", err)
	}
}

// close stops accepting tasks and waits for queued ones to finish. Detached
// launches from unbounded mode are not waited on.
func (d *dispatcher) close() {
	d.closed.Break()
	d.wg.Wait()
}
