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
	"context"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/pll"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

// bit cell in ns used before any clock is known, that of double density MFM
const fallbackClock = 2000

/*
	Session is the state of decoding one revolution of flux. It owns the flux
	reader and bit decoder, and holds the sector currently being assembled.
	Policies do all their reading through a session.
*/
type Session struct {
	ctx      context.Context
	config   Config
	reader   *flux.Reader
	bits     *pll.Decoder
	clock    float64
	cylinder int
	head     int
	sector   *sector.Sector
	matched  flux.Matcher
	err      error
}

func newSession(ctx context.Context, m *flux.Map, cylinder, head int,
	c Config) *Session {
	s := &Session{
		ctx:      ctx,
		config:   c,
		reader:   flux.NewReaderWithConfig(m, c.Reader),
		cylinder: cylinder,
		head:     head,
	}
	s.ResetFluxDecoder()
	return s
}

//
func (s *Session) Context() context.Context {
	return s.ctx
}

//
func (s *Session) Cylinder() int {
	return s.cylinder
}

//
func (s *Session) Head() int {
	return s.head
}

// Sector returns the sector currently being decoded.
func (s *Session) Sector() *sector.Sector {
	return s.sector
}

// Clock returns the clock in ns of the most recent pattern match.
func (s *Session) Clock() float64 {
	return s.clock
}

// Matched returns the matcher that produced the most recent pattern match.
// For a pattern set, this is the member that matched.
func (s *Session) Matched() flux.Matcher {
	return s.matched
}

//
func (s *Session) Tell() flux.Position {
	return s.reader.Tell()
}

// Now returns the current position in ns.
func (s *Session) Now() float64 {
	return s.reader.Tell().Ns()
}

//
func (s *Session) EOF() bool {
	return s.reader.EOF()
}

// Seek returns to a position obtained via Tell, and restarts bit recovery
// there.
func (s *Session) Seek(p flux.Position) {
	s.reader.SeekToPosition(p)
	s.ResetFluxDecoder()
}

// ResetFluxDecoder restarts bit recovery at the current position, using the
// current clock.
func (s *Session) ResetFluxDecoder() {
	clock := s.clock
	if clock <= 0 {
		clock = fallbackClock
	}
	s.bits = pll.NewDecoder(s.reader, clock, s.config.PLL)
}

/*
	SeekToPattern searches for the next occurrence of m. If found, bit recovery
	is restarted at the match using the clock found there, which is also
	returned. At the end of the flux, or if the session got cancelled, zero is
	returned.
*/
func (s *Session) SeekToPattern(m flux.Matcher) float64 {

	clock, matched, err := s.reader.SeekToPatternContext(s.ctx, m)
	if err != nil {
		s.err = err
		return 0
	}

	s.matched = matched
	if clock > 0 {
		s.clock = clock
		s.ResetFluxDecoder()
	}
	return clock
}

// SeekToIndexMark moves to just after the next index mark and restarts bit
// recovery there.
func (s *Session) SeekToIndexMark() {
	s.reader.SeekToIndexMark()
	s.ResetFluxDecoder()
}

// SkipToEvent moves to just after the next event e.
func (s *Session) SkipToEvent(e flux.Event) {
	s.reader.SkipToEvent(e)
}

// ReadRawBits recovers up to count line coded bits.
func (s *Session) ReadRawBits(count int) []bool {
	return s.bits.ReadBits(count)
}

// ReadRaw recovers up to 64 line coded bits and returns them as a number.
func (s *Session) ReadRaw(count int) uint64 {
	return codec.Uint(s.bits.ReadBits(count))
}

//
func (s *Session) ReadRaw48() uint64 {
	return s.ReadRaw(48)
}

//
func (s *Session) ReadRaw64() uint64 {
	return s.ReadRaw(64)
}

// ReadFmMfm recovers count bytes of FM or MFM coded data. Fewer bytes are
// returned if the flux ends.
func (s *Session) ReadFmMfm(count int) []byte {
	return codec.DecodeFmMfm(s.bits.ReadBits(count * 16))
}

// SyncLost tells whether bit recovery lost sync since it was last restarted.
func (s *Session) SyncLost() bool {
	return s.bits.SyncLost()
}

// rawRecord re-reads the bits between start and end, without disturbing the
// current state.
func (s *Session) rawRecord(start, end flux.Position) []byte {

	here := s.reader.Tell()
	s.reader.SeekToPosition(start)

	clock := s.sector.Clock
	if clock <= 0 {
		clock = s.clock
	}
	if clock <= 0 {
		clock = fallbackClock
	}
	bits := pll.NewDecoder(s.reader, clock, s.config.PLL).ReadBitsUntil(end)

	s.reader.SeekToPosition(here)
	return codec.ToBytes(bits)
}
