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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
	"github.com/xelalexv/oqtaflux/pkg/report"
	"github.com/xelalexv/oqtaflux/pkg/repo"
)

// getFlux reads the revolutions to work on, either from a repository
// reference given with the ref parameter, or from the request body
func (a *api) getFlux(w http.ResponseWriter, req *http.Request) []*flux.Map {

	ref, err := getArg(req, "ref")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return nil
	}

	var revs []*flux.Map

	if ref != "" {
		if revs, err = repo.Resolve(ref, a.repository); err != nil {
			handleError(err, http.StatusNotAcceptable, w)
			return nil
		}

	} else {
		revs, err = fluxfile.Read(io.LimitReader(req.Body, maxFluxSize))
		if err != nil {
			handleError(fmt.Errorf("invalid flux: %v", err),
				http.StatusUnprocessableEntity, w)
			return nil
		}
	}

	return revs
}

//
func getFormat(w http.ResponseWriter, req *http.Request) (arch.Format, bool) {
	arg, err := getArg(req, "format")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, false
	}
	ret, err := arch.Parse(arg)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, false
	}
	return ret, true
}

//
func getIntVar(w http.ResponseWriter, req *http.Request, name string) (int, bool) {
	ret, err := strconv.Atoi(mux.Vars(req)[name])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, false
	}
	return ret, true
}

// getIntArgDefault returns def if arg is not present
func getIntArgDefault(w http.ResponseWriter, req *http.Request, arg string,
	def int) (int, bool) {
	if val, _ := getArg(req, arg); val == "" {
		return def, true
	}
	ret, err := getIntArg(req, arg)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, false
	}
	if ret < 0 {
		handleError(fmt.Errorf("negative %s: %d", arg, ret),
			http.StatusUnprocessableEntity, w)
		return -1, false
	}
	return ret, true
}

//
func isFlagSet(req *http.Request, flag string) bool {
	arg, _ := getArg(req, flag)
	return arg == "true"
}

//
func getArg(req *http.Request, arg string) (string, error) {
	ret := req.URL.Query().Get(arg)
	if ret != "" {
		return url.QueryUnescape(ret)
	}
	return ret, nil
}

//
func getIntArg(req *http.Request, arg string) (int, error) {
	if val, err := getArg(req, arg); err != nil {
		return -1, err
	} else {
		if ret, err := strconv.Atoi(val); err != nil {
			return -1, err
		} else {
			return ret, nil
		}
	}
}

//
func setHeaders(h http.Header, contentType string) {
	h.Set("Content-Type", contentType+"; charset=UTF-8")
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), "text/plain")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), "text/plain")
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing reply: %v", err)
	}
}

// sendReport renders r in the type the client accepts
func sendReport(r *report.Report, statusCode int, w http.ResponseWriter,
	req *http.Request) {

	typ := report.TypeForAccept(req.Header.Get("Accept"))

	// stored reports are shared by concurrent requests, so render a copy
	rep := *r
	rep.Dump = isFlagSet(req, "dump")

	var buf bytes.Buffer
	if handleError(rep.Write(&buf, typ), http.StatusInternalServerError, w) {
		return
	}

	setHeaders(w.Header(), typ.ContentType())
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorf("problem sending report: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	return report.TypeForAccept(req.Header.Get("Accept")) == report.JSON
}
