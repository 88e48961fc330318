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

package sector

import (
	"fmt"
	"strings"
)

// Status is the outcome of decoding a sector.
type Status int

const (
	StatusOK Status = iota
	StatusBadChecksum
	StatusMissing
	StatusDataMissing
	StatusConflict
	StatusInternalError
)

var statusNames = map[Status]string{
	StatusOK:            "OK",
	StatusBadChecksum:   "bad checksum",
	StatusMissing:       "sector not found",
	StatusDataMissing:   "present but no data found",
	StatusConflict:      "conflicting data",
	StatusInternalError: "internal error",
}

//
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("unknown status %d", int(s))
}

// Char returns a short marker for track listings, blank for OK.
func (s Status) Char() string {
	switch s {
	case StatusOK:
		return " "
	case StatusBadChecksum, StatusDataMissing:
		return "!"
	case StatusConflict:
		return "*"
	default:
		return "?"
	}
}

// rank orders statuses by how much of the sector they deliver
func (s Status) rank() int {
	switch s {
	case StatusOK:
		return 4
	case StatusBadChecksum:
		return 3
	case StatusDataMissing:
		return 2
	case StatusMissing:
		return 1
	default:
		return 0
	}
}

// Better tells whether s delivers more of a sector than o.
func (s Status) Better(o Status) bool {
	return s.rank() > o.rank()
}

// ParseStatus is the inverse of String. It also accepts "missing". Anything
// unknown is an internal error.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "missing") {
		return StatusMissing
	}
	for k, v := range statusNames {
		if v == s {
			return k
		}
	}
	return StatusInternalError
}

//
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

//
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}
