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
	"fmt"
	"os"
	"os/exec"

	"github.com/livekit/protocol/logger"

	"github.com/veloxvoip/mediahook/pkg/config"
)

// NewExecutor builds the executor selected by the config.
func NewExecutor(conf *config.Config, log logger.Logger) (Executor, error) {
	switch conf.Executor.Type {
	case "", "log":
		return NewLogExecutor(log), nil
	case "command":
		if conf.Executor.Command == "" {
			return nil, fmt.Errorf("command executor requires executor.command")
		}
		return NewCommandExecutor(conf.Executor.Command, conf.Executor.Args...), nil
	default:
		return nil, fmt.Errorf("unknown executor type: %q", conf.Executor.Type)
	}
}

// LogExecutor logs each invocation. Default when no real action-execution
// engine is wired in.
type LogExecutor struct {
	log logger.Logger
}

func NewLogExecutor(log logger.Logger) *LogExecutor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &LogExecutor{log: log}
}

func (x *LogExecutor) Execute(_ context.Context, target Target, vars map[string]string) error {
	x.log.Infow("hook action",
		"context", target.Context, "extension", target.Name,
		"channel", vars[VarHookChannel], "hookID", vars[VarHookID])
	return nil
}

// CommandExecutor runs an external command per firing, with the hook
// variables in its environment. The context deadline kills it.
type CommandExecutor struct {
	name string
	args []string
}

func NewCommandExecutor(name string, args ...string) *CommandExecutor {
	return &CommandExecutor{name: name, args: args}
}

func (x *CommandExecutor) Execute(ctx context.Context, target Target, vars map[string]string) error {
	cmd := exec.CommandContext(ctx, x.name, x.args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("HOOK_CONTEXT=%s", target.Context),
		fmt.Sprintf("HOOK_EXTEN=%s", target.Name),
	)
	for k, v := range vars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return cmd.Run()
}
