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
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/frostbyte73/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livekit/protocol/logger"

	"github.com/veloxvoip/mediahook/pkg/channel"
	"github.com/veloxvoip/mediahook/pkg/config"
	"github.com/veloxvoip/mediahook/pkg/hook"
	"github.com/veloxvoip/mediahook/pkg/ipallow"
	"github.com/veloxvoip/mediahook/pkg/stats"
	"github.com/veloxvoip/mediahook/version"
)

type Service struct {
	conf *config.Config
	log  logger.Logger

	reg *channel.Registry
	eng *hook.Engine
	mon *stats.Monitor

	promServer    *http.Server
	pprofServer   *http.Server
	healthServer  *http.Server
	controlServer *http.Server

	shutdown core.Fuse
	killed   atomic.Bool
}

func NewService(
	conf *config.Config, log logger.Logger,
	reg *channel.Registry, eng *hook.Engine, mon *stats.Monitor,
) (*Service, error) {
	s := &Service{
		conf: conf,
		log:  log,
		reg:  reg,
		eng:  eng,
		mon:  mon,
	}
	if conf.PrometheusPort > 0 {
		s.promServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.PrometheusPort),
			Handler: promhttp.Handler(),
		}
	}
	if conf.PProfPort > 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		s.pprofServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.PProfPort),
			Handler: mux,
		}
	}
	if conf.HealthPort > 0 {
		mux := http.NewServeMux()
		s.healthServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.HealthPort),
			Handler: mux,
		}

		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			st := s.Health()
			var code int
			switch st {
			case stats.HealthOK:
				code = http.StatusOK
			case stats.HealthUnderLoad:
				code = http.StatusTooManyRequests
			default:
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(code)
			_, _ = w.Write([]byte(st.String()))
		})
	}
	if conf.ControlPort > 0 {
		allow, err := ipallow.New(conf.ControlAllowedIPs)
		if err != nil {
			return nil, err
		}
		s.controlServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.ControlPort),
			Handler: s.controlHandler(allow),
		}
	}
	return s, nil
}

func (s *Service) Stop(kill bool) {
	s.mon.Shutdown()
	s.killed.Store(kill)
	s.shutdown.Break()
}

func (s *Service) Run() error {
	s.log.Debugw("starting service", "version", version.Version)

	for _, srv := range []*http.Server{s.promServer, s.pprofServer, s.healthServer, s.controlServer} {
		if srv == nil {
			continue
		}
		l, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return err
		}
		defer l.Close()
		srv := srv
		go func() {
			_ = srv.Serve(l)
		}()
	}

	s.log.Debugw("service ready")

	<-s.shutdown.Watch()
	s.log.Infow("shutting down")

	if !s.killed.Load() {
		shutdownTicker := time.NewTicker(5 * time.Second)
		defer shutdownTicker.Stop()

		for !s.killed.Load() {
			active := s.reg.ActiveChannels()
			if active == 0 {
				break
			}
			s.log.Infow("waiting for channels to finish",
				"channels", active,
				"hooks", s.eng.ActiveHooks(),
				"sample", s.reg.Names(5),
			)
			<-shutdownTicker.C
		}
	}

	s.reg.CloseAll()
	s.eng.Close()
	return nil
}

func (s *Service) Health() stats.HealthStatus {
	return s.mon.Health()
}
