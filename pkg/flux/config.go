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

//
const (
	DefaultPulseDebounceThreshold = 0.30
	DefaultBitErrorThreshold      = 0.20
	DefaultMinimumClockUs         = 0.75
)

// ReaderConfig carries the tuning knobs of a Reader.
type ReaderConfig struct {
	// intervals shorter than this fraction of a clock are merged into the
	// following interval
	PulseDebounceThreshold float64
	// allowed deviation of a pattern interval, as fraction of one clock
	BitErrorThreshold float64
	// pattern matches with a clock at or below this are discarded
	MinimumClockUs float64
}

//
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		PulseDebounceThreshold: DefaultPulseDebounceThreshold,
		BitErrorThreshold:      DefaultBitErrorThreshold,
		MinimumClockUs:         DefaultMinimumClockUs,
	}
}

//
func (c ReaderConfig) Validate() error {
	if c.PulseDebounceThreshold < 0 || c.PulseDebounceThreshold >= 1 {
		return fmt.Errorf(
			"pulse debounce threshold must be in [0, 1): %v",
			c.PulseDebounceThreshold)
	}
	if c.BitErrorThreshold <= 0 || c.BitErrorThreshold >= 1 {
		return fmt.Errorf(
			"bit error threshold must be in (0, 1): %v", c.BitErrorThreshold)
	}
	if c.MinimumClockUs < 0 {
		return fmt.Errorf("minimum clock must not be negative: %v",
			c.MinimumClockUs)
	}
	return nil
}
