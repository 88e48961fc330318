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

package northstar

import (
	"bytes"
	"context"
	"testing"

	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		data []byte
		want byte
	}{
		{[]byte{0x01}, 0x02},
		{[]byte{0x80}, 0x01},
		{[]byte{0x01, 0x02, 0x03}, 0x06},
		{bytes.Repeat([]byte{0xff}, 8), 0x00},
	}
	for _, tt := range tests {
		if got := Checksum(tt.data); got != tt.want {
			t.Errorf("% x: got %02x, want %02x", tt.data, got, tt.want)
		}
	}
}

// sectors for all hard sectors but 6
func testSectors(size int) []*sector.Sector {
	var ret []*sector.Sector
	for ix := 0; ix < HardSectors; ix++ {
		if ix == 6 {
			continue
		}
		s := sector.New(4, 0)
		s.SetLogical(4, 0, ix)
		s.Data = make([]byte, size)
		for b := range s.Data {
			s.Data[b] = byte(ix*13 + b)
		}
		ret = append(ret, s)
	}
	return ret
}

func decode(t *testing.T, maps ...*flux.Map) *decoder.Track {
	d, err := decoder.New(NewPolicy(), decoder.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	track, err := d.DecodeRevolutions(context.Background(), maps, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	return track
}

func TestRoundTrip(t *testing.T) {

	for _, tt := range []struct {
		name  string
		size  int
		clock float64
	}{
		{"single density", SectorSizeSD, 4000},
		{"double density", SectorSizeDD, 2000},
	} {
		t.Run(tt.name, func(t *testing.T) {

			want := testSectors(tt.size)
			m, err := NewEncoder().Encode(4, 0, want)
			if err != nil {
				t.Fatal(err)
			}
			if len(m.IndexMarks()) != HardSectors {
				t.Errorf("wrong number of sector holes: %d", len(m.IndexMarks()))
			}
			if m.Duration() < revolutionNs-100 || m.Duration() > revolutionNs+100 {
				t.Errorf("wrong revolution length: %f", m.Duration())
			}

			track := decode(t, m)
			if len(track.Sectors) != HardSectors {
				t.Fatalf("wrong number of sectors: %d", len(track.Sectors))
			}

			missing := track.Sectors[6]
			if missing.LogicalSector != 6 || missing.Status != sector.StatusMissing {
				t.Errorf("sector 6 should be missing: %v", missing)
			}

			for _, w := range want {
				got := track.Sector(w.Key())
				if got == nil || got.Status != sector.StatusOK {
					t.Errorf("sector %s not read: %v", w.Key(), got)
					continue
				}
				if !bytes.Equal(got.Data, w.Data) {
					t.Errorf("sector %s: data differs", w.Key())
				}
				if got.Clock < tt.clock-10 || got.Clock > tt.clock+10 {
					t.Errorf("sector %s: wrong clock %f", w.Key(), got.Clock)
				}
			}
		})
	}
}

func TestBadChecksum(t *testing.T) {

	data := make([]byte, SectorSizeDD)
	m := flux.NewMap()
	appendSlot(m, 0, nil, 0)
	appendSlot(m, 1, sectorBits(data, Checksum(data)^0x01), 2000)
	appendSlot(m, 2, sectorBits(data, Checksum(data)), 2000)

	track := decode(t, m)

	if s := track.Sector(sector.Key{Track: 4, Sector: 1}); s == nil ||
		s.Status != sector.StatusBadChecksum {
		t.Errorf("sector 1 should have a bad checksum: %v", s)
	}
	if s := track.Sector(sector.Key{Track: 4, Sector: 2}); s == nil ||
		s.Status != sector.StatusOK {
		t.Errorf("sector 2 should be OK: %v", s)
	}
	if c := track.Count(sector.StatusMissing); c != 8 {
		t.Errorf("wrong number of missing sectors: %d", c)
	}
}

func TestEncoderErrors(t *testing.T) {

	tests := map[string]func(s []*sector.Sector){
		"size":      func(s []*sector.Sector) { s[0].Data = make([]byte, 128) },
		"mixed":     func(s []*sector.Sector) { s[1].Data = make([]byte, SectorSizeDD) },
		"number":    func(s []*sector.Sector) { s[0].LogicalSector = 10 },
		"duplicate": func(s []*sector.Sector) { s[1].LogicalSector = 0 },
	}

	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			sectors := testSectors(SectorSizeSD)
			modify(sectors)
			if _, err := NewEncoder().Encode(4, 0, sectors); err == nil {
				t.Error("invalid track accepted")
			}
		})
	}
}
