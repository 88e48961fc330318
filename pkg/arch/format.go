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
	"errors"
	"fmt"
	"strings"
)

//
var ErrUnknownFormat = errors.New("unknown disk format")

//
type Format int

const (
	IBM Format = iota
	IBMFM
	Agat
	Northstar
)

// Formats lists all supported formats.
func Formats() []Format {
	return []Format{IBM, IBMFM, Agat, Northstar}
}

//
func (f Format) String() string {

	switch f {

	case IBM:
		return "ibm"

	case IBMFM:
		return "ibm-fm"

	case Agat:
		return "agat"

	case Northstar:
		return "northstar"

	default:
		return "<unknown>"
	}
}

//
func (f Format) Description() string {

	switch f {

	case IBM:
		return "IBM System/34 MFM, double density PC disks (decodes FM, too)"

	case IBMFM:
		return "IBM 3740 FM, single density"

	case Agat:
		return "Agat 840k MFM"

	case Northstar:
		return "North Star hard sectored, SD (FM) and DD (MFM)"

	default:
		return ""
	}
}

// Parse returns the format called name.
func Parse(name string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}
