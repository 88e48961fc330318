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

package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/flux"
)

const receiveBufferLength = 4096

// Options for capturing flux from a serial device.
type Options struct {
	Port     string
	BaudRate uint
	// capture ends when the device sends nothing for this long
	IdleTimeout time.Duration
	// capture ends after this many bytes, 0 for no limit
	Limit int
}

//
func DefaultOptions() Options {
	return Options{
		BaudRate:    1000000,
		IdleTimeout: 500 * time.Millisecond,
	}
}

/*
	Capturer reads flux bytecode streamed by a capture device. It does not
	talk back to the device, so capture needs to be started on the device's
	side. The stream may contain several revolutions separated by desync bytes.
*/
type Capturer struct {
	port    io.ReadCloser
	options Options
}

//
func Open(o Options) (*Capturer, error) {

	if o.Port == "" {
		return nil, fmt.Errorf("no serial port given")
	}

	timeout := o.IdleTimeout.Milliseconds()
	if timeout < 100 {
		timeout = 100
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:              o.Port,
		BaudRate:              o.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %v", o.Port, err)
	}

	return NewCapturer(port, o), nil
}

// NewCapturer creates a capturer reading from port.
func NewCapturer(port io.ReadCloser, o Options) *Capturer {
	return &Capturer{port: port, options: o}
}

// Capture reads until the device goes quiet, the byte limit is reached, or ctx
// is done. Whatever was received up to then is returned.
func (c *Capturer) Capture(ctx context.Context) (*flux.Map, error) {

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// unblocks a pending read
			c.port.Close()
		case <-done:
		}
	}()

	m := flux.NewMap()
	buf := make([]byte, receiveBufferLength)
	start := time.Now()

	for {
		want := len(buf)
		if c.options.Limit > 0 {
			if rem := c.options.Limit - m.Bytes(); rem < want {
				want = rem
			}
			if want <= 0 {
				break
			}
		}

		n, err := c.port.Read(buf[:want])
		m.AppendBytes(buf[:n])

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error capturing flux: %v", err)
		}
	}

	log.WithFields(log.Fields{
		"bytes":    m.Bytes(),
		"duration": m.Duration() / 1e6,
		"took":     time.Now().Sub(start),
	}).Info("flux captured")

	return m, nil
}

//
func (c *Capturer) Close() error {
	return c.port.Close()
}
