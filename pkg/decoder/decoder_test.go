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

package decoder

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

// A minimal soft sectored format: every record starts with an MFM 0x4489
// sync word, followed by a type byte. Headers carry the sector number and its
// complement, data records four bytes and their sum.
var toySync = flux.MustPattern(16, 0x4489)

type toyPolicy struct {
	required []sector.Key
}

func (p *toyPolicy) AdvanceToNextRecord(s *Session) float64 {
	return s.SeekToPattern(toySync)
}

func (p *toyPolicy) DecodeSectorRecord(s *Session) {
	s.ReadRaw(16)
	b := s.ReadFmMfm(3)
	if len(b) < 3 || b[0] != 'H' {
		return
	}
	if b[1]^0xff == b[2] {
		s.Sector().SetLogical(s.Cylinder(), s.Head(), int(b[1]))
		s.Sector().Status = sector.StatusDataMissing
	}
}

func (p *toyPolicy) DecodeDataRecord(s *Session) {
	s.ReadRaw(16)
	b := s.ReadFmMfm(6)
	if len(b) < 6 || b[0] != 'D' {
		return
	}
	s.Sector().Data = b[1:5]
	var sum byte
	for _, d := range b[1:5] {
		sum += d
	}
	if sum == b[5] {
		s.Sector().Status = sector.StatusOK
	} else {
		s.Sector().Status = sector.StatusBadChecksum
	}
}

func (p *toyPolicy) RequiredSectors(cylinder, head int) []sector.Key {
	return p.required
}

type toySector struct {
	id   byte
	data []byte
	good bool
}

func toyTrack(sectors []toySector) *flux.Map {

	var bits []bool
	last := false

	gap := func() {
		bits = append(bits, codec.EncodeMfm(make([]byte, 12), &last)...)
	}
	record := func(data []byte) {
		gap()
		bits = append(bits, codec.ToBits(0x4489, 16)...)
		last = true
		bits = append(bits, codec.EncodeMfm(data, &last)...)
	}

	for _, s := range sectors {
		record([]byte{'H', s.id, s.id ^ 0xff})
		if s.data == nil {
			continue
		}
		var sum byte
		for _, d := range s.data {
			sum += d
		}
		if !s.good {
			sum ^= 1
		}
		record(append(append([]byte{'D'}, s.data...), sum))
	}
	gap()

	return flux.NewMap().AppendBits(bits, 2000)
}

func newToyDecoder(t *testing.T, p Policy) *Decoder {
	d, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDecodeToSectors(t *testing.T) {

	m := toyTrack([]toySector{
		{1, []byte{1, 2, 3, 4}, true},
		{2, []byte{5, 6, 7, 8}, false},
		{3, []byte{9, 9, 9, 9}, true},
		{4, nil, true},
	})

	track, err := newToyDecoder(t, &toyPolicy{}).DecodeToSectors(
		context.Background(), m, 7, 1)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		id     int
		status sector.Status
		data   []byte
	}{
		{1, sector.StatusOK, []byte{1, 2, 3, 4}},
		{2, sector.StatusBadChecksum, []byte{5, 6, 7, 8}},
		{3, sector.StatusOK, []byte{9, 9, 9, 9}},
		{4, sector.StatusDataMissing, nil},
	}

	if len(track.Sectors) != len(want) {
		t.Fatalf("wrong number of sectors: %d", len(track.Sectors))
	}

	for ix, w := range want {
		s := track.Sectors[ix]
		if s.LogicalSector != w.id || s.Status != w.status ||
			!bytes.Equal(s.Data, w.data) {
			t.Errorf("sector %d: got %v, data % x", ix, s, s.Data)
		}
		if s.PhysicalCylinder != 7 || s.PhysicalHead != 1 ||
			s.LogicalTrack != 7 {
			t.Errorf("sector %d: wrong location %v", ix, s)
		}
		if s.Clock < 1990 || s.Clock > 2010 {
			t.Errorf("sector %d: wrong clock %f", ix, s.Clock)
		}
	}

	first := track.Sectors[0]
	if !(first.HeaderStartTime < first.HeaderEndTime &&
		first.HeaderEndTime < first.DataStartTime &&
		first.DataStartTime < first.DataEndTime) {
		t.Errorf("inconsistent record times: %+v", first)
	}

	// header and data records of three sectors, header of the last
	if len(track.Records) != 7 {
		t.Fatalf("wrong number of records: %d", len(track.Records))
	}
	for ix, r := range track.Records {
		if len(r.Raw) < 2 || r.Raw[0] != 0x44 || r.Raw[1] != 0x89 {
			t.Errorf("record %d does not start with sync: % x", ix, r.Raw)
		}
	}
}

func TestHeaderWithoutData(t *testing.T) {

	m := toyTrack([]toySector{
		{1, nil, true},
		{2, []byte{5, 6, 7, 8}, true},
		{3, []byte{1, 1, 1, 1}, true},
	})

	track, err := newToyDecoder(t, &toyPolicy{}).DecodeToSectors(
		context.Background(), m, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(track.Sectors) != 3 {
		t.Fatalf("wrong number of sectors: %v", track.Sectors)
	}

	first := track.Sectors[0]
	if first.LogicalSector != 1 || first.Status != sector.StatusDataMissing ||
		first.Data != nil {
		t.Errorf("sector without data: got %v, data % x", first, first.Data)
	}

	second := track.Sectors[1]
	if second.LogicalSector != 2 || second.Status != sector.StatusOK ||
		!bytes.Equal(second.Data, []byte{5, 6, 7, 8}) {
		t.Errorf("following sector: got %v, data % x", second, second.Data)
	}
	if second.HeaderStartTime <= first.HeaderEndTime {
		t.Errorf("following sector starts inside first header: %+v", second)
	}

	// each record is seen once
	if len(track.Records) != 5 {
		t.Errorf("wrong number of records: %d", len(track.Records))
	}
}

func TestDecodeRevolutions(t *testing.T) {

	revs := []*flux.Map{
		toyTrack([]toySector{
			{1, []byte{1, 1, 1, 1}, true},
			{2, []byte{2, 2, 2, 2}, false},
		}),
		toyTrack([]toySector{
			{1, []byte{1, 1, 1, 1}, false},
			{2, []byte{2, 2, 2, 2}, true},
		}),
	}

	p := &toyPolicy{required: []sector.Key{
		{Track: 0, Side: 0, Sector: 1},
		{Track: 0, Side: 0, Sector: 2},
		{Track: 0, Side: 0, Sector: 3},
	}}
	track, err := newToyDecoder(t, p).DecodeRevolutions(
		context.Background(), revs, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	if track.Revolutions != 2 {
		t.Errorf("wrong revolution count: %d", track.Revolutions)
	}
	if len(track.Sectors) != 3 {
		t.Fatalf("wrong number of sectors: %d", len(track.Sectors))
	}
	for ix, st := range []sector.Status{
		sector.StatusOK, sector.StatusOK, sector.StatusMissing} {
		if track.Sectors[ix].Status != st {
			t.Errorf("sector %d: got %v, want %v", ix, track.Sectors[ix], st)
		}
	}
	if track.Good() {
		t.Error("track with missing sector reported good")
	}
	if track.Count(sector.StatusOK) != 2 {
		t.Errorf("wrong OK count: %d", track.Count(sector.StatusOK))
	}
	if s := track.Sector(sector.Key{Sector: 2}); s == nil ||
		!bytes.Equal(s.Data, []byte{2, 2, 2, 2}) {
		t.Errorf("wrong sector 2: %v", s)
	}
}

func TestDecodeConflict(t *testing.T) {

	revs := []*flux.Map{
		toyTrack([]toySector{{1, []byte{1, 1, 1, 1}, true}}),
		toyTrack([]toySector{{1, []byte{1, 2, 1, 1}, true}}),
	}

	d := newToyDecoder(t, &toyPolicy{})
	d.SetDetectConflicts(true)

	track, err := d.DecodeRevolutions(context.Background(), revs, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(track.Sectors) != 1 ||
		track.Sectors[0].Status != sector.StatusConflict {
		t.Errorf("conflict not detected: %v", track.Sectors)
	}
}

func TestDecodeCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := toyTrack([]toySector{{1, []byte{1, 1, 1, 1}, true}})
	_, err := newToyDecoder(t, &toyPolicy{}).DecodeToSectors(ctx, m, 0, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

// stuckPolicy claims to find a record everywhere, but never reads anything
type stuckPolicy struct {
	calls int
}

func (p *stuckPolicy) AdvanceToNextRecord(s *Session) float64 {
	p.calls++
	return 2000
}

func (p *stuckPolicy) DecodeSectorRecord(s *Session) {}

func (p *stuckPolicy) DecodeDataRecord(s *Session) {}

func TestDecodeMakesProgress(t *testing.T) {

	m := flux.NewMap()
	for ix := 0; ix < 50; ix++ {
		m.AppendInterval(24).AppendPulse()
	}

	p := &stuckPolicy{}
	track, err := newToyDecoder(t, p).DecodeToSectors(
		context.Background(), m, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(track.Sectors) != 0 {
		t.Errorf("unexpected sectors: %v", track.Sectors)
	}
	if p.calls != 51 {
		t.Errorf("wrong number of record searches: %d", p.calls)
	}
}

func TestNewDecoderErrors(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("missing policy accepted")
	}
	c := DefaultConfig()
	c.Reader.BitErrorThreshold = 0
	if _, err := New(&toyPolicy{}, c); err == nil {
		t.Error("invalid configuration accepted")
	}
}
