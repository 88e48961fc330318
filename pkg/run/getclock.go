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

package run

import (
	"fmt"
	"io"
	"os"

	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
)

//
func NewGetClock() *GetClock {

	g := &GetClock{out: os.Stdout}
	g.Runner = *NewRunner(
		`getclock [-r|--revolution {index}] [-w|--width {columns}]
         [--noise-floor {factor}] [--signal-level {factor}] {flux file}`,
		"show pulse interval histogram of flux",
		`Use the getclock command for finding out at which clock a flux file was recorded.
It prints a histogram of the pulse intervals in one revolution, and the median of
its first peak. For MFM, this is the time of two bit cells.`,
		"", runnerHelpEpilogue, g.Run)

	g.AddSetting(&g.Revolution, "revolution", "r", "", 0,
		"revolution to examine", false)
	g.AddSetting(&g.Width, "width", "w", "", 60,
		"width of histogram bars", false)
	g.AddSetting(&g.NoiseFloor, "noise-floor", "", "",
		flux.DefaultNoiseFloorFactor,
		"noise floor, as fraction between lowest and highest bucket", false)
	g.AddSetting(&g.SignalLevel, "signal-level", "", "",
		flux.DefaultSignalLevelFactor,
		"signal level, as fraction between lowest and highest bucket", false)

	return g
}

//
type GetClock struct {
	Runner
	//
	Revolution  int
	Width       int
	NoiseFloor  float64
	SignalLevel float64
	//
	out io.Writer
}

//
func (g *GetClock) Run() error {

	if err := g.ParseSettings(); err != nil {
		return err
	}

	m, err := loadRevolution(g.Args, g.Revolution)
	if err != nil {
		return err
	}

	data := flux.NewReader(m).GuessClock(g.NoiseFloor, g.SignalLevel)
	data.Emit(g.out, g.Width)
	if !data.Valid() {
		return fmt.Errorf("no clock found")
	}
	return nil
}

// loadRevolution loads the flux file given as the only argument, and returns
// the revolution with index rev.
func loadRevolution(args []string, rev int) (*flux.Map, error) {

	if len(args) != 1 {
		return nil, fmt.Errorf("please specify one flux file")
	}

	revs, err := fluxfile.Load(args[0])
	if err != nil {
		return nil, err
	}

	if rev < 0 || rev >= len(revs) {
		return nil, fmt.Errorf("no revolution %d, file has %d",
			rev, len(revs))
	}
	return revs[rev], nil
}
