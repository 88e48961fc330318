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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

//
type Type int

const (
	Text Type = iota
	JSON
	YAML
)

//
func (t Type) String() string {

	switch t {

	case Text:
		return "text"

	case JSON:
		return "json"

	case YAML:
		return "yaml"

	default:
		return "<unknown>"
	}
}

//
func (t Type) ContentType() string {

	switch t {

	case JSON:
		return "application/json"

	case YAML:
		return "application/yaml"

	default:
		return "text/plain"
	}
}

// ParseType returns the report type called name.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "", "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return Text, fmt.Errorf("unsupported report type: %s", name)
}

// TypeForAccept picks the report type matching an HTTP Accept header.
func TypeForAccept(accept string) Type {
	switch {
	case strings.Contains(accept, "application/json"):
		return JSON
	case strings.Contains(accept, "yaml"):
		return YAML
	default:
		return Text
	}
}

// Stats counts sectors by outcome.
type Stats struct {
	Sectors     int `json:"sectors" yaml:"sectors"`
	Good        int `json:"good" yaml:"good"`
	BadChecksum int `json:"badChecksum" yaml:"badChecksum"`
	Missing     int `json:"missing" yaml:"missing"`
	Conflicts   int `json:"conflicts" yaml:"conflicts"`
}

//
func (s *Stats) add(sectors []*sector.Sector) {
	for _, sec := range sectors {
		s.Sectors++
		switch sec.Status {
		case sector.StatusOK:
			s.Good++
		case sector.StatusBadChecksum:
			s.BadChecksum++
		case sector.StatusConflict:
			s.Conflicts++
		default:
			s.Missing++
		}
	}
}

// Report is the result of decoding one or more tracks.
type Report struct {
	ID     string           `json:"id,omitempty" yaml:"id,omitempty"`
	Format string           `json:"format" yaml:"format"`
	Tracks []*decoder.Track `json:"tracks" yaml:"tracks"`
	Stats  Stats            `json:"stats" yaml:"stats"`
	// include sector data in text reports
	Dump bool `json:"-" yaml:"-"`
}

//
func New(format string, tracks ...*decoder.Track) *Report {
	r := &Report{Format: format}
	for _, t := range tracks {
		r.Add(t)
	}
	return r
}

//
func (r *Report) Add(t *decoder.Track) {
	r.Tracks = append(r.Tracks, t)
	r.Stats.add(t.Sectors)
}

//
func (r *Report) Write(w io.Writer, t Type) error {

	switch t {

	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)

	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()

	case Text:
		r.emit(w)
		return nil

	default:
		return fmt.Errorf("unsupported report type: %d", t)
	}
}

//
func (r *Report) emit(w io.Writer) {

	if r.ID != "" {
		fmt.Fprintf(w, "JOB: %s\n", r.ID)
	}
	fmt.Fprintf(w, "FORMAT: %s\n", r.Format)

	for _, t := range r.Tracks {
		t.Emit(w)
		if r.Dump {
			for _, s := range t.Sectors {
				if len(s.Data) > 0 {
					s.Emit(w)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%d sectors: %d good, %d bad checksum, %d missing, %d conflicts\n",
		r.Stats.Sectors, r.Stats.Good, r.Stats.BadChecksum, r.Stats.Missing,
		r.Stats.Conflicts)
}
