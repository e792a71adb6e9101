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

package stats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veloxvoip/mediahook/pkg/config"
)

type HealthStatus int

const (
	HealthOK HealthStatus = iota
	HealthUnderLoad
	HealthShuttingDown
)

func (s HealthStatus) String() string {
	switch s {
	case HealthOK:
		return "ok"
	case HealthUnderLoad:
		return "under load"
	case HealthShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

type Monitor struct {
	shutdown atomic.Bool

	hooksCreated     prometheus.Counter
	hooksActive      prometheus.Gauge
	channelsActive   prometheus.Gauge
	framesProcessed  prometheus.Counter
	firings          prometheus.Counter
	dispatchFailures prometheus.Counter
}

func NewMonitor(conf *config.Config) (*Monitor, error) {
	m := &Monitor{
		hooksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mediahook",
			Name:        "hooks_created_total",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
		hooksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "mediahook",
			Name:        "hooks_active",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
		channelsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "mediahook",
			Name:        "channels_active",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mediahook",
			Name:        "frames_processed_total",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
		firings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mediahook",
			Name:        "hook_firings_total",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
		dispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mediahook",
			Name:        "hook_dispatch_failures_total",
			ConstLabels: prometheus.Labels{"node_id": conf.NodeID},
		}),
	}

	if err := prometheus.Register(m.hooksCreated); err != nil {
		return nil, err
	}
	if err := prometheus.Register(m.hooksActive); err != nil {
		return nil, err
	}
	if err := prometheus.Register(m.channelsActive); err != nil {
		return nil, err
	}
	if err := prometheus.Register(m.framesProcessed); err != nil {
		return nil, err
	}
	if err := prometheus.Register(m.firings); err != nil {
		return nil, err
	}
	if err := prometheus.Register(m.dispatchFailures); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Monitor) Shutdown() {
	if m == nil {
		return
	}
	m.shutdown.Store(true)
}

func (m *Monitor) Health() HealthStatus {
	if m == nil {
		return HealthOK
	}
	if m.shutdown.Load() {
		return HealthShuttingDown
	}
	return HealthOK
}

func (m *Monitor) HookCreated() {
	if m == nil {
		return
	}
	m.hooksCreated.Inc()
	m.hooksActive.Inc()
}

func (m *Monitor) HookDestroyed() {
	if m == nil {
		return
	}
	m.hooksActive.Dec()
}

func (m *Monitor) ChannelStarted() {
	if m == nil {
		return
	}
	m.channelsActive.Inc()
}

func (m *Monitor) ChannelEnded() {
	if m == nil {
		return
	}
	m.channelsActive.Dec()
}

func (m *Monitor) FrameProcessed() {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
}

func (m *Monitor) HookFired() {
	if m == nil {
		return
	}
	m.firings.Inc()
}

func (m *Monitor) DispatchFailed() {
	if m == nil {
		return
	}
	m.dispatchFailures.Inc()
}
