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

package pll

import (
	"fmt"
)

//
const (
	DefaultPhase     = 0.60
	DefaultAdjust    = 0.05
	DefaultFluxScale = 1.0
)

// Config holds the loop parameters of a Decoder.
type Config struct {
	// fraction of the remaining phase error dropped after each pulse
	Phase float64
	// how far the clock follows the phase error, and at the same time the
	// maximum relative deviation of the clock from its centre
	Adjust float64
	// scale applied to every interval before it enters the loop
	FluxScale float64
}

//
func DefaultConfig() Config {
	return Config{
		Phase:     DefaultPhase,
		Adjust:    DefaultAdjust,
		FluxScale: DefaultFluxScale,
	}
}

//
func (c Config) Validate() error {
	if c.Phase < 0 || c.Phase > 1 {
		return fmt.Errorf("PLL phase must be in [0, 1]: %v", c.Phase)
	}
	if c.Adjust < 0 || c.Adjust >= 1 {
		return fmt.Errorf("PLL adjust must be in [0, 1): %v", c.Adjust)
	}
	if c.FluxScale <= 0 {
		return fmt.Errorf("flux scale must be positive: %v", c.FluxScale)
	}
	return nil
}
