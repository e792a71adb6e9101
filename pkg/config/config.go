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

package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/livekit/protocol/logger"
	"github.com/livekit/protocol/utils/guid"

	"github.com/veloxvoip/mediahook/pkg/errors"
)

const (
	DefaultMaxHooksPerChannel = 64
	DefaultDispatchWorkers    = 4
	DefaultDispatchQueue      = 64
	DefaultExecuteTimeout     = 60 * time.Second
	DefaultClosedChannelTTL   = 5 * time.Minute

	DefaultBeepContext   = "hooks"
	DefaultBeepExtension = "beep"
)

// ExecutorConfig selects the action-execution backend that hook firings
// are handed to.
type ExecutorConfig struct {
	Type    string   `yaml:"type"` // "log" (default) or "command"
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Config struct {
	HealthPort     int `yaml:"health_port"`
	PrometheusPort int `yaml:"prometheus_port"`
	PProfPort      int `yaml:"pprof_port"`
	ControlPort    int `yaml:"control_port"`

	// ControlAllowedIPs restricts who may call the HTTP control surface.
	// Empty means any source is accepted.
	ControlAllowedIPs []string `yaml:"control_allowed_ips"`

	Logging logger.Config `yaml:"logging"`

	// MaxHooksPerChannel caps how many periodic hooks a single channel may
	// carry at once.
	MaxHooksPerChannel int `yaml:"max_hooks_per_channel"`

	// DispatchWorkers sizes the worker pool that runs triggered hook
	// actions. Ignored when UnboundedDispatch is set.
	DispatchWorkers int `yaml:"dispatch_workers"`
	DispatchQueue   int `yaml:"dispatch_queue"`

	// UnboundedDispatch spawns a detached goroutine per firing instead of
	// using the worker pool.
	UnboundedDispatch bool `yaml:"unbounded_dispatch"`

	// ExecuteTimeout bounds a single hook action invocation.
	ExecuteTimeout time.Duration `yaml:"execute_timeout"`

	// Target used by the beep convenience helpers.
	BeepContext   string `yaml:"beep_context"`
	BeepExtension string `yaml:"beep_extension"`

	// ClosedChannelTTL controls how long summaries of closed channels stay
	// visible in the registry.
	ClosedChannelTTL time.Duration `yaml:"closed_channel_ttl"`

	Executor ExecutorConfig `yaml:"executor"`

	// internal
	ServiceName string `yaml:"-"`
	NodeID      string // Do not provide, will be overwritten
}

func NewConfig(confString string) (*Config, error) {
	conf := &Config{
		ServiceName: "mediahook",
	}
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.ErrCouldNotParseConfig(err)
		}
	}
	return conf, nil
}

func (c *Config) Init() error {
	c.NodeID = guid.New("HK_")

	if c.MaxHooksPerChannel <= 0 {
		c.MaxHooksPerChannel = DefaultMaxHooksPerChannel
	}
	if c.DispatchWorkers <= 0 {
		c.DispatchWorkers = DefaultDispatchWorkers
	}
	if c.DispatchQueue <= 0 {
		c.DispatchQueue = DefaultDispatchQueue
	}
	if c.ExecuteTimeout <= 0 {
		c.ExecuteTimeout = DefaultExecuteTimeout
	}
	if c.ClosedChannelTTL <= 0 {
		c.ClosedChannelTTL = DefaultClosedChannelTTL
	}
	if c.BeepContext == "" {
		c.BeepContext = DefaultBeepContext
	}
	if c.BeepExtension == "" {
		c.BeepExtension = DefaultBeepExtension
	}
	if c.Executor.Type == "" {
		c.Executor.Type = "log"
	}

	return c.InitLogger()
}

func (c *Config) InitLogger(values ...interface{}) error {
	zl, err := logger.NewZapLogger(&c.Logging)
	if err != nil {
		return err
	}

	values = append(c.GetLoggerValues(), values...)
	l := zl.WithValues(values...)
	logger.SetLogger(l, c.ServiceName)

	return nil
}

// To use with zap logger
func (c *Config) GetLoggerValues() []interface{} {
	if c.NodeID == "" {
		return nil
	}
	return []interface{}{"nodeID", c.NodeID}
}

// To use with logrus
func (c *Config) GetLoggerFields() logrus.Fields {
	fields := logrus.Fields{
		"logger": c.ServiceName,
	}
	v := c.GetLoggerValues()
	for i := 0; i < len(v); i += 2 {
		fields[v[i].(string)] = v[i+1]
	}

	return fields
}
