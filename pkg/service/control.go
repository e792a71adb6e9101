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

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/livekit/psrpc"

	"github.com/veloxvoip/mediahook/pkg/channel"
	"github.com/veloxvoip/mediahook/pkg/ipallow"
)

// HTTP control surface: channels are created and torn down here, and hooks
// are controlled through the engine's create / set-state operations.

type createChannelRequest struct {
	Name string `json:"name"`
}

type createHookRequest struct {
	Channel   string `json:"channel"`
	Context   string `json:"context"`
	Extension string `json:"extension"`
	Interval  string `json:"interval"`
}

type createHookResponse struct {
	HookID string `json:"hook_id"`
}

type setHookStateRequest struct {
	Channel string `json:"channel"`
	HookID  string `json:"hook_id"`
	Value   string `json:"value"`
}

type channelListResponse struct {
	Active []string `json:"active"`
}

func (s *Service) controlHandler(allow *ipallow.Matcher) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/channels", s.handleListChannels)
	mux.HandleFunc("POST /v1/channels", s.handleCreateChannel)
	mux.HandleFunc("DELETE /v1/channels/{name}", s.handleCloseChannel)
	mux.HandleFunc("POST /v1/hooks", s.handleCreateHook)
	mux.HandleFunc("POST /v1/hooks/state", s.handleSetHookState)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow.Allowed(r.RemoteAddr) {
			s.log.Warnw("control request from disallowed source", nil, "remote", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *Service) handleListChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, channelListResponse{Active: s.reg.Names(0)})
}

func (s *Service) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ch, err := s.reg.Create(req.Name, channel.NewNullWriter(channel.DefaultSampleRate))
	if err != nil {
		writeError(w, err)
		return
	}
	// Self-clocked channel: silence frames drive the hooks attached to it.
	channel.NewPump(ch)
	s.mon.ChannelStarted()
	ch.Lock()
	ch.OnCloseLocked(s.mon.ChannelEnded)
	ch.Unlock()

	writeJSON(w, http.StatusCreated, createChannelRequest{Name: req.Name})
}

func (s *Service) handleCloseChannel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ch := s.reg.Get(name)
	if ch == nil {
		writeError(w, psrpc.NewErrorf(psrpc.NotFound, "channel %q not found", name))
		return
	}
	_ = ch.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleCreateHook(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ch := s.reg.Get(req.Channel)
	if ch == nil {
		writeError(w, psrpc.NewErrorf(psrpc.NotFound, "channel %q not found", req.Channel))
		return
	}
	id, err := s.eng.CreateFromArgs(ch, fmt.Sprintf("%s,%s,%s", req.Context, req.Extension, req.Interval))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createHookResponse{HookID: id})
}

func (s *Service) handleSetHookState(w http.ResponseWriter, r *http.Request) {
	var req setHookStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ch := s.reg.Get(req.Channel)
	if ch == nil {
		writeError(w, psrpc.NewErrorf(psrpc.NotFound, "channel %q not found", req.Channel))
		return
	}
	if err := s.eng.SetState(ch, req.HookID, req.Value); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var perr psrpc.Error
	if errors.As(err, &perr) {
		switch perr.Code() {
		case psrpc.InvalidArgument, psrpc.MalformedRequest:
			code = http.StatusBadRequest
		case psrpc.NotFound:
			code = http.StatusNotFound
		case psrpc.FailedPrecondition:
			code = http.StatusConflict
		case psrpc.ResourceExhausted:
			code = http.StatusTooManyRequests
		case psrpc.PermissionDenied:
			code = http.StatusForbidden
		}
	}
	http.Error(w, err.Error(), code)
}
