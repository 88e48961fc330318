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
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

type fakePort struct {
	io.Reader
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// blockingPort blocks reading until closed
type blockingPort struct {
	closed chan struct{}
}

func (p *blockingPort) Read(b []byte) (int, error) {
	<-p.closed
	return 0, errors.New("port closed")
}

func (p *blockingPort) Close() error {
	close(p.closed)
	return nil
}

func TestCaptureUntilQuiet(t *testing.T) {

	data := []byte{0x98, 0xb0, 0x00, 0x85, 0x41}
	port := &fakePort{Reader: bytes.NewReader(data)}
	c := NewCapturer(port, DefaultOptions())

	m, err := c.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(m.Raw(), data) {
		t.Errorf("got % x, want % x", m.Raw(), data)
	}
	if len(m.Split()) != 2 {
		t.Errorf("wrong number of revolutions: %d", len(m.Split()))
	}

	c.Close()
	if !port.closed {
		t.Error("port not closed")
	}
}

func TestCaptureLimit(t *testing.T) {

	port := &fakePort{Reader: bytes.NewReader(bytes.Repeat([]byte{0x98}, 10000))}
	o := DefaultOptions()
	o.Limit = 5000

	m, err := NewCapturer(port, o).Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m.Bytes() != 5000 {
		t.Errorf("wrong number of bytes: %d", m.Bytes())
	}
}

func TestCaptureCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCapturer(&blockingPort{closed: make(chan struct{})}, DefaultOptions())
	if _, err := c.Capture(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestOpenWithoutPort(t *testing.T) {
	if _, err := Open(DefaultOptions()); err == nil {
		t.Error("opened capturer without port")
	}
}
