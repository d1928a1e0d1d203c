// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewDebugRouter serves the Prometheus registry and the pprof handlers
func NewDebugRouter() *mux.Router {
	r := mux.NewRouter()
	r.Path("/metrics").Handler(promhttp.InstrumentMetricHandler(Registry(), promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})))
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	return r
}

// ServeDebug listens on localhost:port until the context is cancelled.
// The returned channel reports the listener error, if any, once the server has stopped.
func ServeDebug(ctx context.Context, port int) (addr string, done <-chan error, err error) {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", nil, i18n.WrapError(ctx, err, i18n.MsgDebugServerFailed, strconv.Itoa(port))
	}
	srv := &http.Server{
		Handler:           wrapCorsIfEnabled(ctx, NewDebugRouter()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		log.L(ctx).Debugf("Debug HTTP endpoint listening on %s", l.Addr())
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			err = nil
		}
		errChan <- err
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return l.Addr().String(), errChan, nil
}
