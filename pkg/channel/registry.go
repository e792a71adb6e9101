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
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	msdk "github.com/livekit/media-sdk"
	"github.com/livekit/protocol/logger"
	"github.com/livekit/psrpc"
)

const closedCacheSize = 128

// ClosedInfo is what the registry remembers about a channel after it closed.
type ClosedInfo struct {
	Name     string    `json:"name"`
	OpenedAt time.Time `json:"opened_at"`
	ClosedAt time.Time `json:"closed_at"`
}

// Registry tracks live channels by name and keeps short-lived summaries of
// recently closed ones.
type Registry struct {
	log logger.Logger

	mu     sync.Mutex
	byName map[string]*Channel
	opened map[string]time.Time
	closed *expirable.LRU[string, ClosedInfo]
}

func NewRegistry(closedTTL time.Duration, log logger.Logger) *Registry {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Registry{
		log:    log,
		byName: make(map[string]*Channel),
		opened: make(map[string]time.Time),
		closed: expirable.NewLRU[string, ClosedInfo](closedCacheSize, nil, closedTTL),
	}
}

// Create opens a new channel with the given sink and registers it. The
// channel removes itself from the registry on close.
func (r *Registry) Create(name string, sink msdk.PCM16Writer) (*Channel, error) {
	if name == "" {
		return nil, psrpc.NewErrorf(psrpc.InvalidArgument, "channel name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return nil, psrpc.NewErrorf(psrpc.FailedPrecondition, "channel %q already exists", name)
	}

	ch := New(name, sink, r.log)
	r.byName[name] = ch
	r.opened[name] = time.Now()

	ch.Lock()
	ch.OnCloseLocked(func() {
		r.remove(name)
	})
	ch.Unlock()

	r.log.Debugw("channel registered", "channel", name)
	return ch, nil
}

func (r *Registry) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	r.closed.Add(name, ClosedInfo{
		Name:     name,
		OpenedAt: r.opened[name],
		ClosedAt: time.Now(),
	})
	delete(r.opened, name)
}

// Get returns the live channel with the given name, or nil.
func (r *Registry) Get(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name]
}

// RecentlyClosed reports whether a channel with the given name closed
// recently, and when.
func (r *Registry) RecentlyClosed(name string) (ClosedInfo, bool) {
	return r.closed.Get(name)
}

func (r *Registry) ActiveChannels() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// Names returns the names of live channels, sorted, capped at limit.
func (r *Registry) Names(limit int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CloseAll closes every live channel. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	chans := make([]*Channel, 0, len(r.byName))
	for _, ch := range r.byName {
		chans = append(chans, ch)
	}
	r.mu.Unlock()

	for _, ch := range chans {
		_ = ch.Close()
	}
}
