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
	"github.com/veloxvoip/mediahook/pkg/channel"
)

// StartBeep enables a periodic beep on the channel: a hook targeting the
// configured beep context/extension. Returns the hook id for StopBeep.
func (e *Engine) StartBeep(ch *channel.Channel, intervalSecs uint32) (string, error) {
	target := Target{
		Context: e.conf.BeepContext,
		Name:    e.conf.BeepExtension,
	}
	id, err := e.Create(ch, target, intervalSecs)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// StopBeep disables a beep previously started with StartBeep.
func (e *Engine) StopBeep(ch *channel.Channel, id string) error {
	return e.SetState(ch, id, "off")
}
