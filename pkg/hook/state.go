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
	"strconv"
	"time"

	msdk "github.com/livekit/media-sdk"

	"github.com/veloxvoip/mediahook/pkg/channel"
)

// HookID identifies a hook on its channel. IDs are unique for the lifetime of
// the engine and never reused.
type HookID uint32

func (id HookID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Target names the action a hook fires, as a dialplan-style context/extension
// pair. Opaque to the engine; interpreted by the Executor.
type Target struct {
	Context string
	Name    string
}

type hookStatus int

const (
	statusAttached hookStatus = iota
	statusDone
)

// hookState is the per-hook record. Only lastFired and disabled mutate after
// construction; both are written under the owning channel's lock. lastFired
// is advanced only by the rate gate, disabled only by control operations.
type hookState struct {
	id       HookID
	target   Target
	interval uint32 // seconds between firings
	status   hookStatus

	lastFired time.Time
	disabled  bool
}

// hook binds a state record to its channel and engine. It is the frame hook
// attached to the channel's media path.
type hook struct {
	eng   *Engine
	ch    *channel.Channel
	state hookState
}

var _ channel.FrameHook = (*hook)(nil)

// OnFrame is the rate gate, invoked on every frame traversing the channel.
// It must never block on the triggered action; all it does on a fire is a
// non-blocking submit to the dispatcher.
func (h *hook) OnFrame(_ msdk.PCM16Sample) error {
	now := h.eng.now()
	h.eng.mon.FrameProcessed()

	h.ch.Lock()
	// A disabled hook skips the elapsed check entirely, so lastFired does
	// not advance while disabled.
	if h.state.status == statusDone || h.state.disabled {
		h.ch.Unlock()
		return nil
	}
	elapsed := now.Sub(h.state.lastFired).Milliseconds()
	if elapsed <= int64(h.state.interval)*1000 {
		h.ch.Unlock()
		return nil
	}
	// The gate resets whether or not dispatch succeeds. A failed dispatch
	// is not retried on the next frame.
	h.state.lastFired = now
	task := launchTask{
		hookID:  h.state.id.String(),
		channel: h.ch.NameLocked(),
		target:  h.state.target,
	}
	h.ch.Unlock()

	if err := h.eng.disp.submit(task); err != nil {
		h.eng.log.Warnw("failed to run hook", err,
			"channel", task.channel, "hookID", task.hookID)
		h.eng.mon.DispatchFailed()
		return err
	}
	h.eng.mon.HookFired()
	return nil
}

// markDoneLocked flips the hook into its terminal state. The caller must hold
// the channel lock.
func (h *hook) markDoneLocked() {
	h.state.status = statusDone
}
