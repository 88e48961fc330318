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
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
	"github.com/xelalexv/oqtaflux/pkg/report"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

func testAPI(repository string) *api {
	return newAPI("", repository, arch.DefaultOptions(), decoder.DefaultConfig())
}

func do(a *api, method, path, accept string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	a.router().ServeHTTP(rec, req)
	return rec
}

func ibmSectors() []*sector.Sector {
	var ret []*sector.Sector
	for ix := 1; ix <= 9; ix++ {
		s := sector.New(0, 0)
		s.SetLogical(0, 0, ix)
		s.Data = bytes.Repeat([]byte{byte(ix)}, 512)
		ret = append(ret, s)
	}
	return ret
}

func ibmFlux(t *testing.T) []byte {
	e, err := arch.NewEncoder(arch.IBM, arch.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	m, err := e.Encode(0, 0, ibmSectors())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := fluxfile.Write([]*flux.Map{m, m}, &buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFormats(t *testing.T) {

	a := testAPI("")

	rec := do(a, "GET", "/formats", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "northstar") {
		t.Errorf("unexpected reply: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(a, "GET", "/formats", "application/json", nil)
	var list []FormatInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != len(arch.Formats()) || list[0].Name != "ibm" {
		t.Errorf("unexpected format list: %v", list)
	}
}

func TestDecode(t *testing.T) {

	a := testAPI("")

	rec := do(a, "PUT", "/decode?format=ibm&cylinder=0&head=0",
		"application/json", bytes.NewReader(ibmFlux(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("decoding failed: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("wrong content type: %s", ct)
	}

	var rep struct {
		ID     string
		Tracks []struct{ Revolutions int }
		Stats  struct{ Sectors, Good int }
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.ID == "" || rep.Stats.Sectors != 9 || rep.Stats.Good != 9 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Tracks[0].Revolutions != 2 {
		t.Errorf("wrong number of revolutions: %d", rep.Tracks[0].Revolutions)
	}

	rec = do(a, "GET", fmt.Sprintf("/decode/%s/sector/0/0/3", rep.ID), "", nil)
	if rec.Code != http.StatusOK ||
		!bytes.Equal(rec.Body.Bytes(), bytes.Repeat([]byte{3}, 512)) {
		t.Errorf("wrong sector data: %d % x", rec.Code, rec.Body.Bytes())
	}

	rec = do(a, "GET", fmt.Sprintf("/decode/%s/sector/0/0/10", rep.ID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing sector: got %d", rec.Code)
	}

	rec = do(a, "GET", "/decode/"+rep.ID, "application/yaml", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "format: ibm") {
		t.Errorf("unexpected YAML report: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(a, "GET", "/decode/"+rep.ID+"?dump=true", "", nil)
	if !strings.Contains(rec.Body.String(), "SECTOR: 0.0.9") {
		t.Errorf("sector dump missing from text report: %s", rec.Body.String())
	}

	rec = do(a, "GET", "/decode", "", nil)
	if !strings.Contains(rec.Body.String(), rep.ID) {
		t.Errorf("job missing from list: %s", rec.Body.String())
	}

	if rec = do(a, "DELETE", "/decode/"+rep.ID, "", nil); rec.Code != http.StatusOK {
		t.Errorf("deleting job failed: %d", rec.Code)
	}
	if rec = do(a, "GET", "/decode/"+rep.ID, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("deleted job still there: %d", rec.Code)
	}
}

func TestConcurrentReports(t *testing.T) {

	a := testAPI("")

	rec := do(a, "PUT", "/decode?format=ibm", "application/json",
		bytes.NewReader(ibmFlux(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("decoding failed: %d %s", rec.Code, rec.Body.String())
	}
	var rep struct{ ID string }
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for ix := 0; ix < 40; ix++ {
		wg.Add(1)
		go func(dump bool) {
			defer wg.Done()
			path := "/decode/" + rep.ID
			if dump {
				path += "?dump=true"
			}
			rec := do(a, "GET", path, "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("getting report failed: %d", rec.Code)
				return
			}
			if got := strings.Contains(rec.Body.String(), "SECTOR:"); got != dump {
				t.Errorf("dump requested: %v, sector dump in report: %v",
					dump, got)
			}
		}(ix%2 == 0)
	}
	wg.Wait()

	// the stored report is left as it was
	if job := a.jobs.get(rep.ID); job == nil || job.Report.Dump {
		t.Errorf("stored report changed: %+v", job)
	}
}

func TestDecodeErrors(t *testing.T) {

	a := testAPI("")

	tests := []struct {
		name string
		path string
		body []byte
		code int
	}{
		{"unknown format", "/decode?format=amiga", ibmFlux(t),
			http.StatusUnprocessableEntity},
		{"bad cylinder", "/decode?format=ibm&cylinder=x", ibmFlux(t),
			http.StatusUnprocessableEntity},
		{"no flux", "/decode?format=ibm", nil, http.StatusUnprocessableEntity},
		{"no repository", "/decode?format=ibm&ref=repo://a.flux", nil,
			http.StatusNotAcceptable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(a, "PUT", tt.path, "", bytes.NewReader(tt.body))
			if rec.Code != tt.code {
				t.Errorf("got %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
		})
	}

	if rec := do(a, "GET", "/decode/nope/sector/0/0/1", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown job: got %d", rec.Code)
	}
}

func TestDecodeFromRepository(t *testing.T) {

	dir, err := os.MkdirTemp("", "control")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	revs, err := fluxfile.Read(bytes.NewReader(ibmFlux(t)))
	if err != nil {
		t.Fatal(err)
	}
	if err := fluxfile.Save(filepath.Join(dir, "pc", "t0.flux"), revs); err != nil {
		t.Fatal(err)
	}

	a := testAPI(dir)

	rec := do(a, "GET", "/repo", "", nil)
	if !strings.Contains(rec.Body.String(), "repo://pc/t0.flux") {
		t.Errorf("flux file missing from repository list: %s", rec.Body.String())
	}

	rec = do(a, "PUT", "/decode?format=ibm&ref=repo://pc/t0.flux", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "9 good") {
		t.Errorf("decoding from repository failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestClock(t *testing.T) {

	a := testAPI("")

	rec := do(a, "PUT", "/clock", "application/json", bytes.NewReader(ibmFlux(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("clock failed: %d %s", rec.Code, rec.Body.String())
	}

	var info ClockInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	// shortest MFM interval is two bit cells
	if info.Median < 3900 || info.Median > 4100 {
		t.Errorf("wrong clock: %+v", info)
	}

	rec = do(a, "PUT", "/clock", "", bytes.NewReader([]byte{0x3f, 0x3f}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("clock without pulses: got %d", rec.Code)
	}
}

func TestJobStoreEviction(t *testing.T) {
	s := newJobStore(2)
	first := s.add(report.New("ibm"))
	s.add(report.New("ibm"))
	last := s.add(report.New("agat"))
	if s.get(first.ID) != nil {
		t.Error("oldest job not evicted")
	}
	if l := s.list(); len(l) != 2 || l[1] != last {
		t.Errorf("unexpected jobs: %v", l)
	}
}
