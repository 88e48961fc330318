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
	"fmt"
	"net/http"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/repo"
)

//
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

//
type ClockInfo struct {
	Median    float64 `json:"median"`
	PeakStart float64 `json:"peakStart"`
	PeakEnd   float64 `json:"peakEnd"`
}

//
func (a *api) formats(w http.ResponseWriter, req *http.Request) {

	var list []*FormatInfo
	for _, f := range arch.Formats() {
		list = append(list, &FormatInfo{Name: f.String(),
			Description: f.Description()})
	}

	if wantsJSON(req) {
		sendJSONReply(list, http.StatusOK, w)
		return
	}

	var buf bytes.Buffer
	for _, f := range list {
		fmt.Fprintf(&buf, "%-10s %s\n", f.Name, f.Description)
	}
	sendReply(buf.Bytes(), http.StatusOK, w)
}

//
func (a *api) repoList(w http.ResponseWriter, req *http.Request) {

	refs, err := repo.List(a.repository)
	if handleError(err, http.StatusNotAcceptable, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(refs, http.StatusOK, w)
		return
	}

	var buf bytes.Buffer
	for _, r := range refs {
		fmt.Fprintln(&buf, r)
	}
	sendReply(buf.Bytes(), http.StatusOK, w)
}

// clock guesses the bit clock of the uploaded flux
func (a *api) clock(w http.ResponseWriter, req *http.Request) {

	revs := a.getFlux(w, req)
	if revs == nil {
		return
	}

	r := flux.NewReaderWithConfig(revs[0], a.config.Reader)
	data := r.GuessClock(flux.DefaultNoiseFloorFactor,
		flux.DefaultSignalLevelFactor)

	if !data.Valid() {
		handleError(fmt.Errorf("no clock found"),
			http.StatusUnprocessableEntity, w)
		return
	}

	if wantsJSON(req) {
		sendJSONReply(&ClockInfo{
			Median:    data.MedianNs(),
			PeakStart: data.PeakStartNs(),
			PeakEnd:   data.PeakEndNs(),
		}, http.StatusOK, w)
		return
	}

	var buf bytes.Buffer
	data.Emit(&buf, 50)
	sendReply(buf.Bytes(), http.StatusOK, w)
}
