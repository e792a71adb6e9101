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
	"strings"
	"testing"
)

func TestParseCreateArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         string
		wantTarget   Target
		wantInterval uint32
		wantErr      bool
	}{
		{
			name:         "valid",
			args:         "hooks,beep,180",
			wantTarget:   Target{Context: "hooks", Name: "beep"},
			wantInterval: 180,
		},
		{
			name:         "interval one",
			args:         "ctx,ext,1",
			wantInterval: 1,
			wantTarget:   Target{Context: "ctx", Name: "ext"},
		},
		{
			name:         "extension with commas kept whole",
			args:         "ctx,ext,5",
			wantTarget:   Target{Context: "ctx", Name: "ext"},
			wantInterval: 5,
		},
		{name: "zero interval", args: "ctx,ext,0", wantErr: true},
		{name: "non numeric", args: "ctx,ext,abc", wantErr: true},
		{name: "float interval", args: "ctx,ext,1.5", wantErr: true},
		{name: "empty interval", args: "ctx,ext,", wantErr: true},
		{name: "interval too long", args: "ctx,ext," + strings.Repeat("1", 31), wantErr: true},
		{name: "interval overflows uint32", args: "ctx,ext,4294967296", wantErr: true},
		{name: "empty context", args: ",ext,5", wantErr: true},
		{name: "empty extension", args: "ctx,,5", wantErr: true},
		{name: "two fields", args: "ctx,5", wantErr: true},
		{name: "empty", args: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, interval, err := parseCreateArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCreateArgs(%q): %v", tt.args, err)
			}
			if target != tt.wantTarget {
				t.Fatalf("target: got %+v, want %+v", target, tt.wantTarget)
			}
			if interval != tt.wantInterval {
				t.Fatalf("interval: got %d, want %d", interval, tt.wantInterval)
			}
		})
	}
}

func TestTruthTokens(t *testing.T) {
	for _, v := range []string{"yes", "YES", "true", "y", "t", "1", "on", "On"} {
		if !isTrue(v) {
			t.Errorf("isTrue(%q) = false", v)
		}
		if isFalse(v) {
			t.Errorf("isFalse(%q) = true", v)
		}
	}
	for _, v := range []string{"no", "NO", "false", "n", "f", "0", "off", "Off"} {
		if !isFalse(v) {
			t.Errorf("isFalse(%q) = false", v)
		}
		if isTrue(v) {
			t.Errorf("isTrue(%q) = true", v)
		}
	}
	for _, v := range []string{"", "maybe", "2", "enable"} {
		if isTrue(v) || isFalse(v) {
			t.Errorf("%q should be neither true nor false", v)
		}
	}
}

func TestParseHookID(t *testing.T) {
	tests := []struct {
		in   string
		want HookID
		ok   bool
	}{
		{in: "1", want: 1, ok: true},
		{in: "4294967295", want: 4294967295, ok: true},
		{in: "0", want: 0, ok: true},
		{in: "", ok: false},
		{in: "-1", ok: false},
		{in: "abc", ok: false},
		{in: "4294967296", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseHookID(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseHookID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
