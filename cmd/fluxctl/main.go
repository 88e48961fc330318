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

package main

import (
	"fmt"
	"os"

	"github.com/xelalexv/oqtaflux/pkg/run"
)

//
var OqtaFluxVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: fluxctl {serve|decode|encode|capture|getclock|fluxdump|formats|ls|version} ...

run 'fluxctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nOqtaFlux %s\n\n", OqtaFluxVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "decode":
		run.DieOnError(run.NewDecode().Execute(args))

	case "encode":
		run.DieOnError(run.NewEncode().Execute(args))

	case "capture":
		run.DieOnError(run.NewCapture().Execute(args))

	case "getclock":
		run.DieOnError(run.NewGetClock().Execute(args))

	case "fluxdump":
		run.DieOnError(run.NewFluxDump().Execute(args))

	case "formats":
		run.DieOnError(run.NewFormats().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "version":
		version()

	case "", "-h", "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
