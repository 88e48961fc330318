/*
   OqtaFlux - magnetic disk flux decoder
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaFlux.

   OqtaFlux is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaFlux is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaFlux. If not, see <http://www.gnu.org/licenses/>.
*/

package control

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
)

// upper limit for uploaded flux
const maxFluxSize = 64 * 1048576

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr, repository string, o arch.Options,
	c decoder.Config) APIServer {
	return newAPI(addr, repository, o, c)
}

//
func newAPI(addr, repository string, o arch.Options, c decoder.Config) *api {
	return &api{
		address:    addr,
		repository: repository,
		options:    o,
		config:     c,
		jobs:       newJobStore(maxJobs),
	}
}

//
type api struct {
	address    string
	repository string
	options    arch.Options
	config     decoder.Config
	server     *http.Server
	jobs       *jobStore
}

//
func (a *api) router() http.Handler {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "formats", "GET", "/formats", a.formats)
	addRoute(router, "repo", "GET", "/repo", a.repoList)
	addRoute(router, "clock", "PUT", "/clock", a.clock)
	addRoute(router, "decode", "PUT", "/decode", a.decode)
	addRoute(router, "jobs", "GET", "/decode", a.listJobs)
	addRoute(router, "job", "GET", "/decode/{id}", a.getJob)
	addRoute(router, "deljob", "DELETE", "/decode/{id}", a.deleteJob)
	addRoute(router, "sector", "GET",
		"/decode/{id}/sector/{track:[0-9]+}/{side:[0-9]+}/{sector:[0-9]+}",
		a.getSector)

	return router
}

//
func (a *api) Serve() error {

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8888", a.address)
	}

	log.Infof("OqtaFlux API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: a.router()}

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server != nil {
		log.Info("API server stopping...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := a.server.Shutdown(ctx)
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}
