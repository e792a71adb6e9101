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
	"sync/atomic"

	msdk "github.com/livekit/media-sdk"
)

// NewNullWriter returns a sink that counts and discards samples. Used for
// channels whose audio has no downstream consumer.
func NewNullWriter(sampleRate int) msdk.PCM16Writer {
	return &nullWriter{sampleRate: sampleRate}
}

type nullWriter struct {
	sampleRate int
	frames     atomic.Uint64
}

func (w *nullWriter) String() string {
	return fmt.Sprintf("NullWriter(%d)", w.sampleRate)
}

func (w *nullWriter) SampleRate() int {
	return w.sampleRate
}

func (w *nullWriter) WriteSample(sample msdk.PCM16Sample) error {
	w.frames.Add(1)
	return nil
}

func (w *nullWriter) Close() error {
	return nil
}
