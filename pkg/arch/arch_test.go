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

package arch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

func TestParse(t *testing.T) {

	for _, f := range Formats() {
		got, err := Parse(f.String())
		if err != nil || got != f {
			t.Errorf("%s: got %v, %v", f, got, err)
		}
		if f.Description() == "" {
			t.Errorf("%s: no description", f)
		}
	}

	if f, err := Parse("IBM-FM"); err != nil || f != IBMFM {
		t.Errorf("case insensitive parsing failed: %v, %v", f, err)
	}

	if _, err := Parse("amiga"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected unknown format error, got %v", err)
	}
	if Format(42).String() != "<unknown>" {
		t.Error("unexpected name for invalid format")
	}
}

func TestFactoryErrors(t *testing.T) {
	if _, err := NewPolicy(Format(42), DefaultOptions()); err == nil {
		t.Error("policy created for invalid format")
	}
	if _, err := NewEncoder(Format(42), DefaultOptions()); err == nil {
		t.Error("encoder created for invalid format")
	}
}

func sectorsFor(f Format) []*sector.Sector {

	size, count, first := 512, 9, 1
	switch f {
	case IBMFM:
		size, count = 128, 8
	case Agat:
		size, count, first = 256, 21, 0
	case Northstar:
		size, count, first = 256, 10, 0
	}

	var ret []*sector.Sector
	for ix := first; ix < first+count; ix++ {
		s := sector.New(1, 0)
		s.SetLogical(1, 0, ix)
		s.Data = bytes.Repeat([]byte{byte(ix + 1)}, size)
		ret = append(ret, s)
	}
	return ret
}

func TestAllFormatsRoundTrip(t *testing.T) {

	for _, f := range Formats() {
		t.Run(f.String(), func(t *testing.T) {

			want := sectorsFor(f)
			e, err := NewEncoder(f, DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			m, err := e.Encode(1, 0, want)
			if err != nil {
				t.Fatal(err)
			}

			d, err := NewDecoder(f, DefaultOptions(), decoder.DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			track, err := d.DecodeToSectors(context.Background(), m, 1, 0)
			if err != nil {
				t.Fatal(err)
			}

			if len(track.Sectors) != len(want) {
				t.Fatalf("got %d sectors, want %d", len(track.Sectors), len(want))
			}
			for _, w := range want {
				got := track.Sector(w.Key())
				if got == nil || got.Status != sector.StatusOK ||
					!bytes.Equal(got.Data, w.Data) {
					t.Errorf("sector %s not read back: %v", w.Key(), got)
				}
			}
		})
	}
}

func TestDefaultGeometry(t *testing.T) {

	for _, f := range Formats() {
		t.Run(f.String(), func(t *testing.T) {

			o := DefaultOptions()
			g, err := DefaultGeometry(f, o)
			if err != nil {
				t.Fatal(err)
			}

			var sectors []*sector.Sector
			for ix := g.FirstSector; ix < g.FirstSector+g.Sectors; ix++ {
				s := sector.New(2, 0)
				s.SetLogical(2, 0, ix)
				s.Data = bytes.Repeat([]byte{0x55 ^ byte(ix)}, g.SectorSize)
				sectors = append(sectors, s)
			}

			e, err := NewEncoder(f, o)
			if err != nil {
				t.Fatal(err)
			}
			m, err := e.Encode(2, 0, sectors)
			if err != nil {
				t.Fatalf("full track does not fit: %v", err)
			}

			d, err := NewDecoder(f, o, decoder.DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			track, err := d.DecodeToSectors(context.Background(), m, 2, 0)
			if err != nil {
				t.Fatal(err)
			}
			if n := track.Count(sector.StatusOK); n != g.Sectors {
				t.Errorf("got %d good sectors, want %d", n, g.Sectors)
			}
		})
	}

	if _, err := DefaultGeometry(Format(42), DefaultOptions()); err == nil {
		t.Error("geometry returned for invalid format")
	}
}

func TestSetSectorSize(t *testing.T) {

	o := DefaultOptions()
	o.SetSectorSize(IBM, 1024)
	o.SetSectorSize(IBMFM, 256)
	o.SetSectorSize(Agat, 512)

	if o.IBMEncoder.SectorSize != 1024 || o.IBMFMEncoder.SectorSize != 256 {
		t.Errorf("sector sizes not changed: %d, %d",
			o.IBMEncoder.SectorSize, o.IBMFMEncoder.SectorSize)
	}
	if o.AgatEncoder != DefaultOptions().AgatEncoder {
		t.Error("agat options changed")
	}
}
