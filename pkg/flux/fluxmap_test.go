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

package flux

import (
	"bytes"
	"testing"
)

func TestAppendInterval(t *testing.T) {

	tests := []struct {
		name  string
		ticks uint32
		want  []byte
	}{
		{"short", 5, []byte{0x85}},
		{"max single", 62, []byte{0xbe}},
		{"exactly one chunk", 63, []byte{0x3f, 0x80}},
		{"two bytes", 100, []byte{0x3f, 0xa5}},
		{"three bytes", 130, []byte{0x3f, 0x3f, 0x84}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMap().AppendInterval(tt.ticks).AppendPulse()
			if !bytes.Equal(m.Raw(), tt.want) {
				t.Errorf("wrong bytecode: got % x, want % x", m.Raw(), tt.want)
			}
			if m.Ticks() != int(tt.ticks) {
				t.Errorf("wrong ticks: got %d, want %d", m.Ticks(), tt.ticks)
			}
		})
	}
}

func TestTicksAreSumOfLowBits(t *testing.T) {

	raw := []byte{0xc1, 0x82, 0x41, 0x00, 0x3f, 0xff, 0x7f}
	m := NewMapFromBytes(raw)

	want := 0
	for _, b := range raw {
		want += int(b & 0x3f)
	}
	if m.Ticks() != want {
		t.Errorf("wrong ticks: got %d, want %d", m.Ticks(), want)
	}
	if m.Bytes() != len(raw) {
		t.Errorf("wrong byte count: got %d, want %d", m.Bytes(), len(raw))
	}
	if d := m.Duration(); d != float64(want)*NsPerTick {
		t.Errorf("wrong duration: %f", d)
	}
}

func TestAppendIndexOnEmptyMap(t *testing.T) {
	m := NewMap().AppendIndex()
	if !bytes.Equal(m.Raw(), []byte{0x40}) {
		t.Errorf("unexpected bytecode: % x", m.Raw())
	}
}

func TestAppendBits(t *testing.T) {

	m := NewMap().AppendBits([]bool{true, false, true, false, false}, 2000)

	want := []byte{0x98, 0xb0}
	if !bytes.Equal(m.Raw(), want) {
		t.Errorf("wrong bytecode: got % x, want % x", m.Raw(), want)
	}
	if m.Ticks() != 72 {
		t.Errorf("wrong ticks: %d", m.Ticks())
	}

	// continues at the end of the previous bits
	m.AppendBits([]bool{true}, 2000)
	if m.Ticks() != 96 {
		t.Errorf("wrong ticks after second append: %d", m.Ticks())
	}
}

func TestRawIsCopy(t *testing.T) {
	m := NewMapFromBytes([]byte{0x81})
	raw := m.Raw()
	raw[0] = 0
	if m.Raw()[0] != 0x81 {
		t.Error("modifying raw bytes changed the map")
	}
}

func TestSplit(t *testing.T) {

	m := NewMapFromBytes([]byte{0x00, 0x81, 0x82, 0x00, 0x00, 0x83, 0x00})
	revs := m.Split()

	if len(revs) != 2 {
		t.Fatalf("wrong number of revolutions: %d", len(revs))
	}
	if !bytes.Equal(revs[0].Raw(), []byte{0x81, 0x82}) {
		t.Errorf("wrong first revolution: % x", revs[0].Raw())
	}
	if !bytes.Equal(revs[1].Raw(), []byte{0x83}) {
		t.Errorf("wrong second revolution: % x", revs[1].Raw())
	}
	if revs[0].Ticks() != 3 {
		t.Errorf("wrong ticks in first revolution: %d", revs[0].Ticks())
	}
}

func TestIndexMarks(t *testing.T) {

	m := NewMap()
	m.AppendInterval(12).AppendIndex()
	m.AppendInterval(24).AppendPulse()
	m.AppendInterval(24).AppendPulse().AppendIndex()

	marks := m.IndexMarks()
	if len(marks) != 2 {
		t.Fatalf("wrong number of index marks: %d", len(marks))
	}
	if marks[0] != 12*NsPerTick || marks[1] != 60*NsPerTick {
		t.Errorf("wrong index mark times: %v", marks)
	}
}
