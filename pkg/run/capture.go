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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/capture"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
)

//
func NewCapture() *Capture {

	c := &Capture{}
	c.Runner = *NewRunner(
		`capture -d|--device {device} [-b|--baud {rate}] [-t|--idle {duration}]
        [-l|--limit {bytes}] [-c|--cylinder {cylinder}] [-H|--head {head}]
        [-o|--output {file}] [--indexed] {track folder}`,
		"capture flux from a serial device",
		`Use the capture command for receiving flux bytecode streamed by a capture device
over a serial port. Start the capture on the device, then run this command. It
stops once the device has been silent for the idle time. The flux gets stored as
track file for the given cylinder and head, unless an output file is specified.`,
		"", loggingHelpEpilogue+runnerHelpEpilogue, c.Run)

	defaults := capture.DefaultOptions()

	c.AddSetting(&c.Device, "device", "d", "FLUX_DEVICE", nil,
		"serial port device of capture hardware", true)
	c.AddSetting(&c.Baud, "baud", "b", "FLUX_BAUD", defaults.BaudRate,
		"baud rate", false)
	c.AddSetting(&c.Idle, "idle", "t", "", defaults.IdleTimeout,
		"capture ends after device was silent for this long", false)
	c.AddSetting(&c.Limit, "limit", "l", "", 0,
		"maximum number of bytes to capture, 0 for no limit", false)
	c.AddSetting(&c.Cylinder, "cylinder", "c", "", 0,
		"cylinder being captured", false)
	c.AddSetting(&c.Head, "head", "H", "", 0, "head being captured", false)
	c.AddSetting(&c.Output, "output", "o", "", nil,
		"file to write flux to, instead of track file in folder", false)
	c.AddSetting(&c.Indexed, "indexed", "", "", false,
		"keep only revolutions that carry an index mark", false)

	return c
}

//
type Capture struct {
	Runner
	//
	Device   string
	Baud     uint
	Idle     time.Duration
	Limit    int
	Cylinder int
	Head     int
	Output   string
	Indexed  bool
}

//
func (c *Capture) Run() error {

	if err := c.ParseSettings(); err != nil {
		return err
	}

	file := c.Output
	if file == "" {
		if len(c.Args) != 1 {
			return fmt.Errorf("please specify track folder or output file")
		}
		file = fluxfile.TrackFile(c.Args[0], c.Cylinder, c.Head)
	}

	cpt, err := capture.Open(capture.Options{
		Port:        c.Device,
		BaudRate:    c.Baud,
		IdleTimeout: c.Idle,
		Limit:       c.Limit,
	})
	if err != nil {
		return err
	}
	defer cpt.Close()

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("device", c.Device).Info("waiting for flux")
	m, err := cpt.Capture(ctx)
	if err != nil {
		return err
	}

	revs := m.Split()
	if c.Indexed {
		revs = indexedRevolutions(revs)
	}
	if len(revs) == 0 {
		return fmt.Errorf("no flux captured")
	}

	if err := fluxfile.Save(file, revs); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"file":        file,
		"bytes":       m.Bytes(),
		"revolutions": len(revs),
	}).Info("flux captured")
	return nil
}

//
func indexedRevolutions(revs []*flux.Map) []*flux.Map {
	var ret []*flux.Map
	for _, r := range revs {
		if len(r.IndexMarks()) > 0 {
			ret = append(ret, r)
		}
	}
	return ret
}
