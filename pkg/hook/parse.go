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
	"strings"

	"github.com/livekit/psrpc"
)

// Truth tables for SetState values, matching classic dialplan semantics.
var (
	trueTokens  = []string{"yes", "true", "y", "t", "1", "on"}
	falseTokens = []string{"no", "false", "n", "f", "0", "off"}
)

func isTrue(s string) bool {
	return tokenIn(s, trueTokens)
}

func isFalse(s string) bool {
	return tokenIn(s, falseTokens)
}

func tokenIn(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	return false
}

const maxIntervalDigits = 30

// parseCreateArgs splits a "context,extension,interval" triple. The interval
// must be a positive whole number of seconds with a bounded digit count.
func parseCreateArgs(args string) (Target, uint32, error) {
	parts := strings.SplitN(args, ",", 3)
	if len(parts) != 3 {
		return Target{}, 0, psrpc.NewErrorf(psrpc.InvalidArgument,
			"expected context,extension,interval, got %q", args)
	}
	target := Target{Context: parts[0], Name: parts[1]}
	ivs := parts[2]

	if ivs == "" || len(ivs) > maxIntervalDigits {
		return Target{}, 0, psrpc.NewErrorf(psrpc.InvalidArgument, "invalid hook interval: %q", ivs)
	}
	interval, err := strconv.ParseUint(ivs, 10, 32)
	if err != nil || interval == 0 {
		return Target{}, 0, psrpc.NewErrorf(psrpc.InvalidArgument, "invalid hook interval: %q", ivs)
	}
	if target.Context == "" || target.Name == "" {
		return Target{}, 0, psrpc.NewErrorf(psrpc.InvalidArgument, "a context and extension are required")
	}
	return target, uint32(interval), nil
}

func parseHookID(s string) (HookID, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return HookID(v), true
}
