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

package flux

import (
	"fmt"
)

/*
	Position is the state of a Reader's cursor. Zeroes is the number of zero
	bits a bit decoder has to emit before it starts consuming flux, as set by a
	pattern match.
*/
type Position struct {
	Bytes  int
	Ticks  int
	Zeroes int
}

// Ns returns the tick offset in nanoseconds.
func (p Position) Ns() float64 {
	return float64(p.Ticks) * NsPerTick
}

//
func (p Position) String() string {
	return fmt.Sprintf("[b:%d, t:%d, z:%d]", p.Bytes, p.Ticks, p.Zeroes)
}
