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
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/pll"
)

// Config bundles the settings of flux reading and bit recovery.
type Config struct {
	Reader flux.ReaderConfig
	PLL    pll.Config
}

//
func DefaultConfig() Config {
	return Config{
		Reader: flux.DefaultReaderConfig(),
		PLL:    pll.DefaultConfig(),
	}
}

//
func (c Config) Validate() error {
	if err := c.Reader.Validate(); err != nil {
		return err
	}
	return c.PLL.Validate()
}
