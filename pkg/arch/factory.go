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
	"fmt"

	"github.com/xelalexv/oqtaflux/pkg/arch/agat"
	"github.com/xelalexv/oqtaflux/pkg/arch/ibm"
	"github.com/xelalexv/oqtaflux/pkg/arch/northstar"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

// Encoder writes sectors to the flux of one track.
type Encoder interface {
	Encode(cylinder, head int, sectors []*sector.Sector) (*flux.Map, error)
}

// Options collects the tuning of all formats, as read from a config file.
type Options struct {
	IBM          ibm.Options         `mapstructure:"ibm" yaml:"ibm"`
	IBMEncoder   ibm.EncoderOptions  `mapstructure:"ibm-encoder" yaml:"ibmEncoder"`
	IBMFMEncoder ibm.EncoderOptions  `mapstructure:"ibm-fm-encoder" yaml:"ibmFMEncoder"`
	AgatEncoder  agat.EncoderOptions `mapstructure:"agat-encoder" yaml:"agatEncoder"`
}

//
func DefaultOptions() Options {
	return Options{
		IBM:          ibm.DefaultOptions(),
		IBMEncoder:   ibm.DefaultMfmEncoderOptions(),
		IBMFMEncoder: ibm.DefaultFmEncoderOptions(),
		AgatEncoder:  agat.DefaultEncoderOptions(),
	}
}

// NewPolicy creates a fresh decoding policy. Policies carry state, so each
// decoder needs its own.
func NewPolicy(f Format, o Options) (decoder.Policy, error) {

	switch f {

	case IBM, IBMFM:
		return ibm.NewPolicy(o.IBM), nil

	case Agat:
		return agat.NewPolicy(), nil

	case Northstar:
		return northstar.NewPolicy(), nil

	default:
		return nil, fmt.Errorf("unsupported format for policy: %d", f)
	}
}

//
func NewEncoder(f Format, o Options) (Encoder, error) {

	switch f {

	case IBM:
		return ibm.NewEncoder(o.IBMEncoder)

	case IBMFM:
		return ibm.NewEncoder(o.IBMFMEncoder)

	case Agat:
		return agat.NewEncoder(o.AgatEncoder)

	case Northstar:
		return northstar.NewEncoder(), nil

	default:
		return nil, fmt.Errorf("unsupported format for encoder: %d", f)
	}
}

// NewDecoder creates a decoder for format f.
func NewDecoder(f Format, o Options, c decoder.Config) (*decoder.Decoder, error) {
	p, err := NewPolicy(f, o)
	if err != nil {
		return nil, err
	}
	return decoder.New(p, c)
}

// Geometry is the layout of a track as written by an encoder.
type Geometry struct {
	Sectors     int
	SectorSize  int
	FirstSector int
}

// DefaultGeometry returns the track layout that fills a track of format f
// with its encoder's settings from o.
func DefaultGeometry(f Format, o Options) (Geometry, error) {

	switch f {

	case IBM:
		return Geometry{Sectors: 9, SectorSize: o.IBMEncoder.SectorSize,
			FirstSector: 1}, nil

	case IBMFM:
		return Geometry{Sectors: 16, SectorSize: o.IBMFMEncoder.SectorSize,
			FirstSector: 1}, nil

	case Agat:
		return Geometry{Sectors: 21, SectorSize: agat.SectorSize}, nil

	case Northstar:
		return Geometry{Sectors: northstar.HardSectors,
			SectorSize: northstar.SectorSizeDD}, nil

	default:
		return Geometry{}, fmt.Errorf("unsupported format for geometry: %d", f)
	}
}

// SetSectorSize changes the sector size the encoder for format f writes.
// Formats with a fixed size, or with a size derived from the data, are left
// unchanged.
func (o *Options) SetSectorSize(f Format, size int) {
	switch f {
	case IBM:
		o.IBMEncoder.SectorSize = size
	case IBMFM:
		o.IBMFMEncoder.SectorSize = size
	}
}
