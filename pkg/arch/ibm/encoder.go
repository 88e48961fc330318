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

package ibm

import (
	"fmt"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/crc"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	EncoderOptions describe the track layout written by the encoder. The clock
	rate is the data rate, each data bit takes two raw bits on disk. The gaps
	are counted in bytes of the fill value: Gap0 before the index mark, Gap1
	after it, Gap2 between a header and its data, and Gap3 after the data.
*/
type EncoderOptions struct {
	FM            bool    `mapstructure:"fm" yaml:"fm"`
	ClockRateKHz  float64 `mapstructure:"clock-rate-khz" yaml:"clockRateKHz"`
	TrackLengthMs float64 `mapstructure:"track-length-ms" yaml:"trackLengthMs"`
	SectorSize    int     `mapstructure:"sector-size" yaml:"sectorSize"`
	Gap0          int     `mapstructure:"gap0" yaml:"gap0"`
	Gap1          int     `mapstructure:"gap1" yaml:"gap1"`
	Gap2          int     `mapstructure:"gap2" yaml:"gap2"`
	Gap3          int     `mapstructure:"gap3" yaml:"gap3"`
	GapFill       byte    `mapstructure:"gap-fill" yaml:"gapFill"`
	UseIAM        bool    `mapstructure:"use-iam" yaml:"useIAM"`
}

// DefaultMfmEncoderOptions gives a 720k PC double density layout.
func DefaultMfmEncoderOptions() EncoderOptions {
	return EncoderOptions{
		ClockRateKHz:  250,
		TrackLengthMs: 200,
		SectorSize:    512,
		Gap0:          80,
		Gap1:          50,
		Gap2:          22,
		Gap3:          80,
		GapFill:       0x4e,
		UseIAM:        true,
	}
}

//
func DefaultFmEncoderOptions() EncoderOptions {
	return EncoderOptions{
		FM:            true,
		ClockRateKHz:  125,
		TrackLengthMs: 200,
		SectorSize:    128,
		Gap0:          40,
		Gap1:          26,
		Gap2:          11,
		Gap3:          27,
		GapFill:       0xff,
		UseIAM:        true,
	}
}

// RawClock returns the duration of one raw bit in ns.
func (o EncoderOptions) RawClock() float64 {
	return 1e6 / (2 * o.ClockRateKHz)
}

//
func (o EncoderOptions) Validate() error {
	if o.ClockRateKHz <= 0 {
		return fmt.Errorf("clock rate must be positive: %f", o.ClockRateKHz)
	}
	if o.TrackLengthMs <= 0 {
		return fmt.Errorf("track length must be positive: %f", o.TrackLengthMs)
	}
	if SizeCode(o.SectorSize) < 0 {
		return fmt.Errorf("unsupported sector size: %d", o.SectorSize)
	}
	if o.Gap0 < 0 || o.Gap1 < 0 || o.Gap2 < 0 || o.Gap3 < 0 {
		return fmt.Errorf("negative gap size")
	}
	return nil
}

// Encoder writes IBM formatted tracks.
type Encoder struct {
	options EncoderOptions
}

//
func NewEncoder(o EncoderOptions) (*Encoder, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid IBM encoder options: %v", err)
	}
	return &Encoder{options: o}, nil
}

//
func (e *Encoder) Options() EncoderOptions {
	return e.options
}

/*
	Encode writes the sectors to a track in the order given, using their
	logical addresses for the headers. Sectors with less data than the sector
	size are padded with zeroes.
*/
func (e *Encoder) Encode(cylinder, head int, sectors []*sector.Sector) (
	*flux.Map, error) {

	bits, err := e.EncodeBits(cylinder, head, sectors)
	if err != nil {
		return nil, err
	}
	return flux.NewMap().AppendBits(bits, e.options.RawClock()), nil
}

// EncodeBits is Encode, but returns the line coded bits of the track.
func (e *Encoder) EncodeBits(cylinder, head int, sectors []*sector.Sector) (
	[]bool, error) {

	o := e.options
	var w *codec.Writer
	if o.FM {
		w = codec.NewFmWriter()
	} else {
		w = codec.NewMfmWriter()
	}

	w.WriteFill(o.Gap0, o.GapFill)
	if o.UseIAM {
		e.writeIndexMark(w)
		w.WriteFill(o.Gap1, o.GapFill)
	}

	for _, s := range sectors {
		if len(s.Data) > o.SectorSize {
			return nil, fmt.Errorf(
				"sector %s has %d bytes, exceeding sector size %d",
				s.Key(), len(s.Data), o.SectorSize)
		}
		header := []byte{byte(s.LogicalTrack), byte(s.LogicalSide),
			byte(s.LogicalSector), byte(SizeCode(o.SectorSize))}
		e.writeRecord(w, IDAM, header)
		w.WriteFill(o.Gap2, o.GapFill)

		data := make([]byte, o.SectorSize)
		copy(data, s.Data)
		e.writeRecord(w, DAM2, data)
		w.WriteFill(o.Gap3, o.GapFill)
	}

	total := int(o.TrackLengthMs * 1e6 / o.RawClock())
	if w.Len() > total {
		return nil, fmt.Errorf(
			"track %d.%d too long: %d raw bits, but only %d fit",
			cylinder, head, w.Len(), total)
	}
	for w.Len() < total {
		w.WriteFill(1, o.GapFill)
	}

	return w.Bits(), nil
}

//
func (e *Encoder) preMarkZeroes(w *codec.Writer) {
	if w.IsFm() {
		w.WriteFill(6, 0x00)
	} else {
		w.WriteFill(12, 0x00)
	}
}

//
func (e *Encoder) writeIndexMark(w *codec.Writer) {
	e.preMarkZeroes(w)
	if w.IsFm() {
		w.WriteRaw(fmIndexMark, 16)
		return
	}
	for ix := 0; ix < mfmSyncCount; ix++ {
		w.WriteRaw(mfmIndexSyncWord, 16)
	}
	w.WriteRaw(mfmIndexMark, 16)
}

// writeRecord writes address mark, payload, and CRC
func (e *Encoder) writeRecord(w *codec.Writer, mark byte, payload []byte) {

	e.preMarkZeroes(w)

	var sum uint16
	if w.IsFm() {
		w.WriteRaw(fmPatterns[mark].Value(), 16)
		sum = crc.CCITT([]byte{mark})
	} else {
		for ix := 0; ix < mfmSyncCount; ix++ {
			w.WriteRaw(mfmSyncWord, 16)
		}
		w.WriteBytes([]byte{mark})
		sum = crc.CCITT([]byte{mfmSyncByte, mfmSyncByte, mfmSyncByte, mark})
	}

	sum = crc.Update(sum, payload)
	w.WriteBytes(payload)
	w.WriteBytes([]byte{byte(sum >> 8), byte(sum)})
}
