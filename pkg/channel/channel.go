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

package channel

import (
	"fmt"
	"sync"

	"github.com/frostbyte73/core"
	msdk "github.com/livekit/media-sdk"
	"github.com/livekit/protocol/logger"
)

const DefaultSampleRate = 48000

// FrameHook observes media samples traversing a channel. Hooks run on the
// channel's own frame-processing context, one frame at a time, and must not
// block. A hook error does not interrupt the media path.
type FrameHook interface {
	OnFrame(sample msdk.PCM16Sample) error
}

// Channel is a long-lived media resource. Frames written to it traverse the
// attached frame hooks before reaching the sink writer.
//
// The channel mutex is the coarse lock protecting all per-channel state,
// including state owned by attached hooks. Methods with a Locked suffix
// require the caller to hold it.
type Channel struct {
	log logger.Logger

	mu       sync.Mutex
	name     string
	hooks    []FrameHook
	teardown []func()

	sink   msdk.PCM16Writer
	closed core.Fuse
}

var _ msdk.PCM16Writer = (*Channel)(nil)

func New(name string, sink msdk.PCM16Writer, log logger.Logger) *Channel {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Channel{
		log:  log.WithValues("channel", name),
		name: name,
		sink: sink,
	}
}

func (c *Channel) Lock()   { c.mu.Lock() }
func (c *Channel) Unlock() { c.mu.Unlock() }

func (c *Channel) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// NameLocked returns the channel name. The caller must hold the channel lock.
func (c *Channel) NameLocked() string {
	return c.name
}

func (c *Channel) IsClosed() bool {
	return c.closed.IsBroken()
}

func (c *Channel) String() string {
	return fmt.Sprintf("Channel(%s) -> %s", c.Name(), c.sink.String())
}

func (c *Channel) SampleRate() int {
	return c.sink.SampleRate()
}

// AttachHookLocked adds a frame hook to the media path. The caller must hold
// the channel lock.
func (c *Channel) AttachHookLocked(h FrameHook) error {
	if c.closed.IsBroken() {
		return fmt.Errorf("channel %q is closed", c.name)
	}
	c.hooks = append(c.hooks, h)
	return nil
}

// DetachHookLocked removes a previously attached frame hook. Detaching a hook
// that is not attached is a no-op. The caller must hold the channel lock.
func (c *Channel) DetachHookLocked(h FrameHook) {
	for i, cur := range c.hooks {
		if cur == h {
			c.hooks = append(c.hooks[:i], c.hooks[i+1:]...)
			return
		}
	}
}

// OnCloseLocked registers a teardown callback, run exactly once when the
// channel closes. Callbacks run in reverse registration order, without the
// channel lock held. The caller must hold the channel lock.
func (c *Channel) OnCloseLocked(f func()) {
	c.teardown = append(c.teardown, f)
}

// WriteSample delivers one frame through the media path. Hooks see the frame
// before the sink and may modify it in place.
func (c *Channel) WriteSample(sample msdk.PCM16Sample) error {
	c.mu.Lock()
	if c.closed.IsBroken() {
		c.mu.Unlock()
		return fmt.Errorf("channel %q is closed", c.name)
	}
	hooks := make([]FrameHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	for _, h := range hooks {
		// Hook failures are reported by the hook itself. The media path
		// keeps going.
		_ = h.OnFrame(sample)
	}
	return c.sink.WriteSample(sample)
}

// Close tears the channel down: teardown callbacks run first (newest first),
// then the sink is closed. Safe to call more than once.
func (c *Channel) Close() error {
	c.closed.Once(func() {
		c.mu.Lock()
		tds := c.teardown
		c.teardown = nil
		c.mu.Unlock()

		for i := len(tds) - 1; i >= 0; i-- {
			tds[i]()
		}

		c.mu.Lock()
		c.hooks = nil
		c.mu.Unlock()

		if err := c.sink.Close(); err != nil {
			c.log.Warnw("failed to close channel sink", err)
		}
		c.log.Debugw("channel closed")
	})
	return nil
}
