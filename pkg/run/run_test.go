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

package run

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
)

func tempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "fluxctl")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// ibmImage creates an image with constant data per sector
func ibmImage(cylinders int) []byte {
	var ret []byte
	for ix := 0; ix < cylinders*9; ix++ {
		ret = append(ret, bytes.Repeat([]byte{byte(ix + 1)}, 512)...)
	}
	return ret
}

func TestImageTracks(t *testing.T) {

	g := arch.Geometry{Sectors: 4, SectorSize: 4, FirstSector: 1}
	data := make([]byte, 2*2*16-6)
	for ix := range data {
		data[ix] = byte(ix)
	}

	tracks := newImageTracks(data, g, 2)
	if c := tracks.cylinders(); c != 2 {
		t.Fatalf("got %d cylinders, want 2", c)
	}

	sectors := tracks.sectors(0, 1)
	if len(sectors) != 4 {
		t.Fatalf("got %d sectors", len(sectors))
	}
	if k := sectors[0].Key(); k.Track != 0 || k.Side != 1 || k.Sector != 1 {
		t.Errorf("unexpected key: %s", k)
	}
	if !bytes.Equal(sectors[0].Data, []byte{16, 17, 18, 19}) {
		t.Errorf("unexpected data: %v", sectors[0].Data)
	}

	last := tracks.sectors(1, 1)
	if !bytes.Equal(last[2].Data, []byte{56, 57, 0, 0}) {
		t.Errorf("last sector not padded: %v", last[2].Data)
	}
	if !bytes.Equal(last[3].Data, []byte{0, 0, 0, 0}) {
		t.Errorf("sector beyond image not empty: %v", last[3].Data)
	}
}

func TestLoadOptions(t *testing.T) {

	o, err := loadOptions("")
	if err != nil || o != arch.DefaultOptions() {
		t.Errorf("defaults expected without config file: %v", err)
	}

	file := filepath.Join(tempDir(t), "formats.yaml")
	conf := `
ibm:
  swap-sides: true
  min-sector: 1
  max-sector: 9
ibm-encoder:
  sector-size: 256
  gap3: 54
agat-encoder:
  volume: 17
`
	if err := ioutil.WriteFile(file, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}

	if o, err = loadOptions(file); err != nil {
		t.Fatal(err)
	}
	if !o.IBM.SwapSides || o.IBM.MinSector != 1 || o.IBM.MaxSector != 9 {
		t.Errorf("IBM options not loaded: %+v", o.IBM)
	}
	if o.IBMEncoder.SectorSize != 256 || o.IBMEncoder.Gap3 != 54 ||
		o.IBMEncoder.Gap2 != arch.DefaultOptions().IBMEncoder.Gap2 {
		t.Errorf("IBM encoder options not merged: %+v", o.IBMEncoder)
	}
	if o.AgatEncoder.Volume != 17 {
		t.Errorf("agat volume not loaded: %d", o.AgatEncoder.Volume)
	}

	if _, err := loadOptions(filepath.Join(tempDir(t), "none.yaml")); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestDecoderConfig(t *testing.T) {

	r := &Runner{BitErrorThreshold: 0.2, PulseDebounceThreshold: 0.3,
		MinimumClockUs: 0.75, PLLPhase: 0.6, PLLAdjust: 0.05, FluxScale: 1}
	c, err := r.decoderConfig()
	if err != nil {
		t.Fatal(err)
	}
	if c.Reader.BitErrorThreshold != 0.2 || c.PLL.Phase != 0.6 {
		t.Errorf("unexpected config: %+v", c)
	}

	r.FluxScale = 0
	if _, err := r.decoderConfig(); err == nil {
		t.Error("invalid flux scale accepted")
	}
}

func TestMinimumClockUsage(t *testing.T) {
	f := NewDecode().cmd.Flags().Lookup("minimum-clock")
	if f == nil {
		t.Fatal("minimum-clock setting missing")
	}
	if !strings.Contains(f.Usage, "fastest clock") ||
		strings.Contains(f.Usage, "slowest") {
		t.Errorf("misleading usage: %s", f.Usage)
	}
}

func TestEncodeDecode(t *testing.T) {

	dir := tempDir(t)
	image := filepath.Join(dir, "disk.img")
	if err := ioutil.WriteFile(image, ibmImage(2), 0644); err != nil {
		t.Fatal(err)
	}
	tracks := filepath.Join(dir, "tracks")

	err := NewEncode().Execute([]string{"-f", "ibm", "-r", "2", image, tracks})
	if err != nil {
		t.Fatal(err)
	}

	files, err := fluxfile.TrackFiles(tracks)
	if err != nil || len(files) != 2 {
		t.Fatalf("expected 2 track files: %v, %v", files, err)
	}
	revs, err := fluxfile.Load(files[1])
	if err != nil || len(revs) != 2 {
		t.Fatalf("expected 2 revolutions: %d, %v", len(revs), err)
	}

	var out bytes.Buffer
	d := NewDecode()
	d.out = &out
	if err := d.Execute([]string{"-f", "ibm", "--dump", tracks}); err != nil {
		t.Fatal(err)
	}

	report := out.String()
	for _, want := range []string{
		"FORMAT: ibm",
		"TRACK 1.0: 9 sectors, 2 revolutions",
		"18 sectors: 18 good, 0 bad checksum, 0 missing, 0 conflicts",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("'%s' missing in report:\n%s", want, report)
		}
	}
}

func TestEncodeErrors(t *testing.T) {

	dir := tempDir(t)
	image := filepath.Join(dir, "disk.img")
	if err := ioutil.WriteFile(image, ibmImage(1), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.img")
	if err := ioutil.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-f", "amiga", image, dir}},
		{"missing folder", []string{"-f", "ibm", image}},
		{"bad heads", []string{"-f", "ibm", "-H", "3", image, dir}},
		{"track overrun", []string{"-f", "ibm", "-s", "12", image, dir}},
		{"empty image", []string{"-f", "ibm", empty, dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewEncode().Execute(tt.args); err == nil {
				t.Error("no error")
			}
		})
	}
}

func writeTrack(t *testing.T) string {
	file := fluxfile.TrackFile(tempDir(t), 0, 0)
	m := flux.NewMap().AppendIndex()
	for ix := 0; ix < 200; ix++ {
		m.AppendInterval(24).AppendPulse()
	}
	if err := fluxfile.Save(file, []*flux.Map{m}); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestGetClock(t *testing.T) {

	file := writeTrack(t)

	var out bytes.Buffer
	g := NewGetClock()
	g.out = &out
	if err := g.Execute([]string{"-w", "20", file}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "median:       2.00 us") {
		t.Errorf("unexpected histogram:\n%s", out.String())
	}

	if err := NewGetClock().Execute([]string{"-r", "1", file}); err == nil {
		t.Error("missing revolution accepted")
	}
}

func TestFluxDump(t *testing.T) {

	file := writeTrack(t)

	var out bytes.Buffer
	f := NewFluxDump()
	f.out = &out
	if err := f.Execute([]string{"-l", "3", file}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("unexpected dump:\n%s", out.String())
	}
	if !strings.HasSuffix(lines[3], "0.000  index") {
		t.Errorf("first event not index: %s", lines[3])
	}
	if !strings.HasSuffix(lines[4], "2.000  pulse") {
		t.Errorf("unexpected pulse line: %s", lines[4])
	}
}

// apiServer fakes the API server, recording the last request
func apiServer(t *testing.T, reply string, status int,
	last **http.Request) []string {

	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			*last = req
			w.WriteHeader(status)
			w.Write([]byte(reply))
		}))
	t.Cleanup(s.Close)

	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatal(err)
	}
	return []string{"--server", u.Hostname(), "-p", u.Port()}
}

func TestRemoteDecode(t *testing.T) {

	var req *http.Request
	args := apiServer(t, "FORMAT: agat\n", http.StatusOK, &req)

	var out bytes.Buffer
	d := NewDecode()
	d.out = &out
	err := d.Execute(append(args, "--remote", "-f", "agat", "-c", "3",
		"-o", "json", "repo://disk/track03.0.flux"))
	if err != nil {
		t.Fatal(err)
	}

	if req.Method != "PUT" || req.URL.Path != "/decode" {
		t.Errorf("unexpected request: %s %s", req.Method, req.URL)
	}
	q := req.URL.Query()
	if q.Get("format") != "agat" || q.Get("cylinder") != "3" ||
		q.Get("ref") != "repo://disk/track03.0.flux" {
		t.Errorf("unexpected query: %s", req.URL.RawQuery)
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Errorf("unexpected accept header: %s", req.Header.Get("Accept"))
	}
	if out.String() != "FORMAT: agat\n" {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestRemoteError(t *testing.T) {

	var req *http.Request
	args := apiServer(t, "no such file\n", http.StatusNotAcceptable, &req)

	err := NewDecode().Execute(append(args, "--remote", "-f", "ibm",
		"repo://missing.flux"))
	if err == nil || !strings.Contains(err.Error(), "no such file") {
		t.Errorf("expected server message in error, got %v", err)
	}
}

func TestList(t *testing.T) {

	var req *http.Request
	args := apiServer(t, `["repo://a/track00.0.flux","repo://b/track00.0.flux"]`,
		http.StatusOK, &req)

	var out bytes.Buffer
	l := NewList()
	l.out = &out
	if err := l.Execute(append(args, "b/")); err != nil {
		t.Fatal(err)
	}

	if req.URL.Path != "/repo" {
		t.Errorf("unexpected path: %s", req.URL.Path)
	}
	if out.String() != "repo://b/track00.0.flux\n\n1 flux files\n" {
		t.Errorf("unexpected listing:\n%s", out.String())
	}
}

func TestFormats(t *testing.T) {

	var out bytes.Buffer
	f := NewFormats()
	f.out = &out
	if err := f.Execute([]string{}); err != nil {
		t.Fatal(err)
	}

	for _, format := range arch.Formats() {
		if !strings.Contains(out.String(), format.Description()) {
			t.Errorf("%s missing in list:\n%s", format, out.String())
		}
	}
}
