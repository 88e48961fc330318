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
)

//
func NewFluxDump() *FluxDump {

	f := &FluxDump{out: os.Stdout}
	f.Runner = *NewRunner(
		`fluxdump [-r|--revolution {index}] [-l|--limit {count}]
         [--pulses] {flux file}`,
		"list flux events",
		`Use the fluxdump command for listing the events in one revolution of a flux
file. Each line gives byte offset and time of the event, the interval since the
previous event, and the event type.`,
		"", runnerHelpEpilogue, f.Run)

	f.AddSetting(&f.Revolution, "revolution", "r", "", 0,
		"revolution to list", false)
	f.AddSetting(&f.Limit, "limit", "l", "", 0,
		"maximum number of events to list, 0 for all", false)
	f.AddSetting(&f.Pulses, "pulses", "", "", false,
		"list pulses only", false)

	return f
}

//
type FluxDump struct {
	Runner
	//
	Revolution int
	Limit      int
	Pulses     bool
	//
	out io.Writer
}

//
func (f *FluxDump) Run() error {

	if err := f.ParseSettings(); err != nil {
		return err
	}

	m, err := loadRevolution(f.Args, f.Revolution)
	if err != nil {
		return err
	}

	fmt.Fprintf(f.out, "%d bytes, %d ticks, %.3f ms\n\n",
		m.Bytes(), m.Ticks(), m.Duration()/1e6)
	fmt.Fprintf(f.out, "%10s %14s %12s  %s\n",
		"offset", "time (ns)", "delta (us)", "event")

	r := flux.NewReader(m)
	var pending uint

	for count := 0; f.Limit == 0 || count < f.Limit; {

		offset := r.Tell().Bytes
		ev, ticks := r.NextEvent()
		if ev == flux.EventEOF {
			break
		}

		pending += ticks
		if f.Pulses && !ev.Has(flux.EventPulse) {
			continue
		}

		fmt.Fprintf(f.out, "%10d %14.0f %12.3f  %s\n", offset, r.Tell().Ns(),
			float64(pending)*flux.NsPerTick/1000, ev)
		pending = 0
		count++
	}

	return nil
}
