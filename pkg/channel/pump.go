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
	"time"

	"github.com/frostbyte73/core"
	msdk "github.com/livekit/media-sdk"
)

const frameDur = 20 * time.Millisecond

// Pump feeds a channel with silence frames at the media frame rate, so hooks
// attached to a channel without a live media source still see frame
// traversals. It stops on its own when the channel closes.
type Pump struct {
	ch      *Channel
	stopped core.Fuse
	done    chan struct{}
}

func NewPump(ch *Channel) *Pump {
	p := &Pump{
		ch:   ch,
		done: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pump) run() {
	defer close(p.done)

	frame := make(msdk.PCM16Sample, p.ch.SampleRate()/int(time.Second/frameDur))
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopped.Watch():
			return
		case <-ticker.C:
			if err := p.ch.WriteSample(frame); err != nil {
				// Channel closed under us.
				return
			}
		}
	}
}

func (p *Pump) Stop() {
	p.stopped.Break()
	<-p.done
}
