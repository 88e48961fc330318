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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

//
func NewList() *List {

	l := &List{out: os.Stdout}
	l.Runner = *NewRunner(
		"ls [-p|--port {port}] [--server {host}] [{filter}]",
		"list flux files in the API server's repository",
		`Use the ls command for listing the flux files in the repository of the API server.
The references shown can be passed to 'fluxctl decode --remote'. When a filter is
given, only references containing it are listed.`,
		"", runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()

	return l
}

//
type List struct {
	Runner
	out io.Writer
}

//
func (l *List) Run() error {

	if err := l.ParseSettings(); err != nil {
		return err
	}

	var filter string
	if len(l.Args) > 0 {
		filter = l.Args[0]
	}

	resp, err := l.apiCall("GET", "/repo", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	var refs []string
	if err := json.NewDecoder(resp).Decode(&refs); err != nil {
		return fmt.Errorf("invalid repo listing: %v", err)
	}

	count := 0
	for _, r := range refs {
		if strings.Contains(r, filter) {
			fmt.Fprintln(l.out, r)
			count++
		}
	}
	fmt.Fprintf(l.out, "\n%d flux files\n", count)
	return nil
}
