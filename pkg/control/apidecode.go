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
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/report"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	decode decodes the flux of one track, which may hold several revolutions.
	The result is kept as a job, so that sector data can be fetched later on.
*/
func (a *api) decode(w http.ResponseWriter, req *http.Request) {

	format, ok := getFormat(w, req)
	if !ok {
		return
	}

	cylinder, ok := getIntArgDefault(w, req, "cylinder", 0)
	if !ok {
		return
	}
	head, ok := getIntArgDefault(w, req, "head", 0)
	if !ok {
		return
	}

	revs := a.getFlux(w, req)
	if revs == nil {
		return
	}

	d, err := arch.NewDecoder(format, a.options, a.config)
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}
	d.SetDetectConflicts(isFlagSet(req, "conflicts"))

	track, err := d.DecodeRevolutions(req.Context(), revs, cylinder, head)
	if err != nil {
		handleError(fmt.Errorf("decoding aborted: %v", err),
			http.StatusServiceUnavailable, w)
		return
	}

	job := a.jobs.add(report.New(format.String(), track))
	log.WithFields(log.Fields{
		"job":     job.ID,
		"format":  format,
		"sectors": len(track.Sectors),
	}).Info("decoded track")

	sendReport(job.Report, http.StatusOK, w, req)
}

//
func (a *api) listJobs(w http.ResponseWriter, req *http.Request) {

	jobs := a.jobs.list()

	if wantsJSON(req) {
		sendJSONReply(jobs, http.StatusOK, w)
		return
	}

	list := "\nJOB                                   FORMAT     SECTORS  GOOD"
	for _, j := range jobs {
		list += fmt.Sprintf("\n%s  %-10s %7d %5d", j.ID, j.Format,
			j.Report.Stats.Sectors, j.Report.Stats.Good)
	}
	sendReply([]byte(list), http.StatusOK, w)
}

//
func (a *api) getJob(w http.ResponseWriter, req *http.Request) {
	if job := a.findJob(w, req); job != nil {
		sendReport(job.Report, http.StatusOK, w, req)
	}
}

//
func (a *api) deleteJob(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	if !a.jobs.remove(id) {
		handleError(fmt.Errorf("no such job: %s", id), http.StatusNotFound, w)
		return
	}
	sendReply([]byte(fmt.Sprintf("removed job %s", id)), http.StatusOK, w)
}

// getSector sends the raw data of one sector
func (a *api) getSector(w http.ResponseWriter, req *http.Request) {

	job := a.findJob(w, req)
	if job == nil {
		return
	}

	var key sector.Key
	var ok bool
	if key.Track, ok = getIntVar(w, req, "track"); !ok {
		return
	}
	if key.Side, ok = getIntVar(w, req, "side"); !ok {
		return
	}
	if key.Sector, ok = getIntVar(w, req, "sector"); !ok {
		return
	}

	var found *sector.Sector
	for _, t := range job.Report.Tracks {
		if found = t.Sector(key); found != nil {
			break
		}
	}

	if found == nil || len(found.Data) == 0 {
		handleError(fmt.Errorf("no data for sector %s", key),
			http.StatusNotFound, w)
		return
	}

	if found.Status != sector.StatusOK && !isFlagSet(req, "force") {
		handleError(errors.New(found.Status.String()),
			http.StatusUnprocessableEntity, w)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Sector-Status", found.Status.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(found.Data); err != nil {
		log.Errorf("problem sending sector: %v", err)
	}
}

//
func (a *api) findJob(w http.ResponseWriter, req *http.Request) *Job {
	id := mux.Vars(req)["id"]
	job := a.jobs.get(id)
	if job == nil {
		handleError(fmt.Errorf("no such job: %s", id), http.StatusNotFound, w)
	}
	return job
}
