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

// Package hook implements periodic in-band triggers for media channels.
//
// A hook attaches to a channel's media path and, on every frame traversal,
// checks whether at least its configured interval has elapsed since it last
// fired. When it has, the hook hands the configured action to an independent
// execution context without blocking the frame path. Hooks can be disabled
// and re-enabled by id; they live until their channel is torn down.
package hook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/livekit/protocol/logger"
	"github.com/livekit/psrpc"

	"github.com/veloxvoip/mediahook/pkg/channel"
	"github.com/veloxvoip/mediahook/pkg/config"
	"github.com/veloxvoip/mediahook/pkg/stats"
)

// Engine owns all hook state. One engine instance serves any number of
// channels; the id counter is scoped to it.
type Engine struct {
	conf *config.Config
	log  logger.Logger
	mon  *stats.Monitor
	disp *dispatcher
	now  func() time.Time

	lastID atomic.Uint32
	active atomic.Int64 // live hooks, pins the engine open until zero

	// mu guards the shape of chans only. Individual hook records are
	// guarded by their channel's lock, acquired before mu everywhere.
	mu    sync.Mutex
	chans map[*channel.Channel]map[HookID]*hook
}

func NewEngine(conf *config.Config, exec Executor, mon *stats.Monitor, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	workers := conf.DispatchWorkers
	if conf.UnboundedDispatch {
		workers = 0
	}
	return &Engine{
		conf:  conf,
		log:   log,
		mon:   mon,
		disp:  newDispatcher(exec, workers, conf.DispatchQueue, conf.ExecuteTimeout, log),
		now:   time.Now,
		chans: make(map[*channel.Channel]map[HookID]*hook),
	}
}

// Create attaches a new periodic hook to the channel and returns its id.
// The attach and the table insert happen under the channel lock, so a
// concurrent teardown sees either no hook or a fully initialized one.
func (e *Engine) Create(ch *channel.Channel, target Target, intervalSecs uint32) (HookID, error) {
	if intervalSecs == 0 {
		return 0, psrpc.NewErrorf(psrpc.InvalidArgument, "hook interval must be positive")
	}
	if target.Context == "" || target.Name == "" {
		return 0, psrpc.NewErrorf(psrpc.InvalidArgument, "a context and extension are required")
	}

	id := HookID(e.lastID.Add(1))
	h := &hook{
		eng: e,
		ch:  ch,
		state: hookState{
			id:        id,
			target:    target,
			interval:  intervalSecs,
			lastFired: e.now(),
		},
	}

	ch.Lock()
	if ch.IsClosed() {
		ch.Unlock()
		return 0, psrpc.NewErrorf(psrpc.ResourceExhausted, "channel %q is closed", ch.NameLocked())
	}

	e.mu.Lock()
	hooks := e.chans[ch]
	if len(hooks) >= e.conf.MaxHooksPerChannel {
		e.mu.Unlock()
		ch.Unlock()
		return 0, psrpc.NewErrorf(psrpc.ResourceExhausted,
			"channel %q already has %d hooks", ch.NameLocked(), e.conf.MaxHooksPerChannel)
	}
	first := hooks == nil
	if first {
		hooks = make(map[HookID]*hook)
		e.chans[ch] = hooks
	}
	hooks[id] = h
	e.mu.Unlock()

	if err := ch.AttachHookLocked(h); err != nil {
		e.mu.Lock()
		delete(hooks, id)
		if len(hooks) == 0 {
			delete(e.chans, ch)
		}
		e.mu.Unlock()
		ch.Unlock()
		return 0, psrpc.NewErrorf(psrpc.ResourceExhausted, "could not attach hook: %v", err)
	}
	if first {
		ch.OnCloseLocked(func() {
			e.channelClosed(ch)
		})
	}
	name := ch.NameLocked()
	ch.Unlock()

	e.active.Add(1)
	e.mon.HookCreated()
	e.log.Debugw("hook enabled",
		"channel", name, "hookID", id.String(),
		"context", target.Context, "extension", target.Name,
		"intervalSecs", intervalSecs)
	return id, nil
}

// CreateFromArgs is the textual create surface: "context,extension,interval".
// It returns the new hook id serialized as a decimal string.
func (e *Engine) CreateFromArgs(ch *channel.Channel, args string) (string, error) {
	target, interval, err := parseCreateArgs(args)
	if err != nil {
		return "", err
	}
	id, err := e.Create(ch, target, interval)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SetState disables or re-enables a hook by its serialized id. A false-like
// value ("off", "no", "0", ...) disables, a true-like value re-enables, and
// anything else is rejected. Both directions are idempotent; neither detaches
// the hook.
func (e *Engine) SetState(ch *channel.Channel, id string, value string) error {
	switch {
	case isFalse(value):
		return e.setDisabled(ch, id, true)
	case isTrue(value):
		return e.setDisabled(ch, id, false)
	default:
		return psrpc.NewErrorf(psrpc.InvalidArgument, "invalid hook state value: %q", value)
	}
}

// Disable stops future firings of the hook. The hook stays attached; its
// per-frame cost drops to one flag check.
func (e *Engine) Disable(ch *channel.Channel, id HookID) error {
	return e.setDisabledByID(ch, id, true)
}

// Enable re-enables a previously disabled hook.
func (e *Engine) Enable(ch *channel.Channel, id HookID) error {
	return e.setDisabledByID(ch, id, false)
}

func (e *Engine) setDisabled(ch *channel.Channel, id string, disabled bool) error {
	hid, ok := parseHookID(id)
	if !ok {
		e.log.Warnw("hook not found", nil, "channel", ch.Name(), "hookID", id)
		return psrpc.NewErrorf(psrpc.NotFound, "hook %q not found on channel %q", id, ch.Name())
	}
	return e.setDisabledByID(ch, hid, disabled)
}

func (e *Engine) setDisabledByID(ch *channel.Channel, id HookID, disabled bool) error {
	ch.Lock()
	defer ch.Unlock()

	e.mu.Lock()
	h := e.chans[ch][id]
	e.mu.Unlock()
	if h == nil {
		e.log.Warnw("hook not found", nil, "channel", ch.NameLocked(), "hookID", id.String())
		return psrpc.NewErrorf(psrpc.NotFound, "hook %q not found on channel %q", id.String(), ch.NameLocked())
	}
	h.state.disabled = disabled
	return nil
}

// channelClosed is the teardown path, run exactly once per channel from its
// close sequence: detach every hook under the channel lock, then drop the
// records and release their engine references.
func (e *Engine) channelClosed(ch *channel.Channel) {
	ch.Lock()
	e.mu.Lock()
	hooks := e.chans[ch]
	delete(e.chans, ch)
	e.mu.Unlock()

	for _, h := range hooks {
		h.markDoneLocked()
		ch.DetachHookLocked(h)
	}
	name := ch.NameLocked()
	ch.Unlock()

	for range hooks {
		e.active.Add(-1)
		e.mon.HookDestroyed()
	}
	if len(hooks) > 0 {
		e.log.Debugw("hooks destroyed with channel", "channel", name, "count", len(hooks))
	}
}

// ActiveHooks reports how many hooks are live across all channels.
func (e *Engine) ActiveHooks() int {
	return int(e.active.Load())
}

// Close stops the dispatcher after its queue drains. Channels own their own
// teardown; close them before closing the engine.
func (e *Engine) Close() {
	e.disp.close()
}
