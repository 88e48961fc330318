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

package agat

import (
	"fmt"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

const (
	rawClock      = 2000
	trackLengthNs = 200e6
)

// EncoderOptions set the gaps in bytes before each header and between header
// and data, and the volume number written to headers.
type EncoderOptions struct {
	PreHeaderGap int  `mapstructure:"pre-header-gap" yaml:"preHeaderGap"`
	PreDataGap   int  `mapstructure:"pre-data-gap" yaml:"preDataGap"`
	Volume       byte `mapstructure:"volume" yaml:"volume"`
}

//
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{PreHeaderGap: 13, PreDataGap: 5, Volume: 0xfe}
}

// Encoder writes Agat tracks.
type Encoder struct {
	options EncoderOptions
}

//
func NewEncoder(o EncoderOptions) (*Encoder, error) {
	if o.PreHeaderGap < 0 || o.PreDataGap < 0 {
		return nil, fmt.Errorf("negative gap size")
	}
	return &Encoder{options: o}, nil
}

//
func (e *Encoder) Encode(cylinder, head int, sectors []*sector.Sector) (
	*flux.Map, error) {

	bits, err := e.EncodeBits(cylinder, head, sectors)
	if err != nil {
		return nil, err
	}
	return flux.NewMap().AppendBits(bits, rawClock), nil
}

//
func (e *Encoder) EncodeBits(cylinder, head int, sectors []*sector.Sector) (
	[]bool, error) {

	w := codec.NewMfmWriter()

	for _, s := range sectors {
		if len(s.Data) > SectorSize {
			return nil, fmt.Errorf(
				"sector %s has %d bytes, exceeding sector size %d",
				s.Key(), len(s.Data), SectorSize)
		}

		w.WriteFill(e.options.PreHeaderGap, gapFill)
		w.WriteRaw(SectorID, 48)
		w.WriteBytes([]byte{e.options.Volume,
			byte(s.LogicalTrack<<1 | s.LogicalSide&1),
			byte(s.LogicalSector), trailer})

		w.WriteFill(e.options.PreDataGap, gapFill)
		w.WriteRaw(DataID, 48)
		data := make([]byte, SectorSize, dataLength+1)
		copy(data, s.Data)
		w.WriteBytes(append(data, Checksum(data), trailer))
	}

	total := int(trackLengthNs / rawClock)
	if w.Len() > total {
		return nil, fmt.Errorf(
			"track %d.%d too long: %d raw bits, but only %d fit",
			cylinder, head, w.Len(), total)
	}
	for w.Len() < total {
		w.WriteFill(1, gapFill)
	}

	return w.Bits(), nil
}
