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

	"github.com/xelalexv/oqtaflux/pkg/arch"
)

//
func NewFormats() *Formats {

	f := &Formats{out: os.Stdout}
	f.Runner = *NewRunner(
		"formats [--remote]",
		"list supported disk formats",
		`Use the formats command for listing the disk formats that can be decoded and
encoded. With --remote, the API server is asked instead.`,
		"", runnerHelpEpilogue, f.Run)

	f.AddBaseSettings()
	f.AddSetting(&f.Remote, "remote", "", "", false,
		"list formats of API server", false)

	return f
}

//
type Formats struct {
	Runner
	//
	Remote bool
	out    io.Writer
}

//
func (f *Formats) Run() error {

	if err := f.ParseSettings(); err != nil {
		return err
	}

	if f.Remote {
		resp, err := f.apiCall("GET", "/formats", "text/plain", nil)
		if err != nil {
			return err
		}
		defer resp.Close()
		_, err = io.Copy(f.out, resp)
		return err
	}

	for _, format := range arch.Formats() {
		fmt.Fprintf(f.out, "%-10s %s\n", format, format.Description())
	}
	return nil
}
