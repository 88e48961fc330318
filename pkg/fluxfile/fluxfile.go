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

package fluxfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/flux"
)

// Extension of raw flux files
const Extension = ".flux"

//
var ErrNoFlux = errors.New("no flux data")

/*
	Read loads a raw flux file. It holds flux bytecode as is, with the
	revolutions of a track separated by desync bytes.
*/
func Read(in io.Reader) ([]*flux.Map, error) {

	raw, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("error reading flux: %v", err)
	}

	revs := flux.NewMapFromBytes(raw).Split()
	if len(revs) == 0 {
		return nil, ErrNoFlux
	}

	log.WithFields(log.Fields{
		"bytes":       len(raw),
		"revolutions": len(revs),
	}).Debug("read flux")

	return revs, nil
}

// Write stores revolutions in a raw flux file.
func Write(maps []*flux.Map, out io.Writer) error {

	if len(maps) == 0 {
		return ErrNoFlux
	}

	w := bufio.NewWriter(out)
	for ix, m := range maps {
		if ix > 0 {
			if err := w.WriteByte(0x00); err != nil {
				return err
			}
		}
		if _, err := w.Write(m.Raw()); err != nil {
			return err
		}
	}
	return w.Flush()
}

//
func Load(file string) ([]*flux.Map, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return Read(bufio.NewReader(fd))
}

/*
	Save writes revolutions to file. The data goes to a temporary file first,
	which then replaces the target, so that readers never see a partial file.
*/
func Save(file string, maps []*flux.Map) error {

	start := time.Now()

	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := fmt.Sprintf("%s_", file)

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := Write(maps, fd); err != nil {
		fd.Close()
		os.Remove(tmp)
		return err
	}

	if err := fd.Sync(); err != nil {
		fd.Close()
		return err
	}

	if err := fd.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, file); err != nil {
		return err
	}

	log.Debugf("saving %s took %v", file, time.Now().Sub(start))
	return nil
}

// TrackFile returns the name of the flux file for a track within dir.
func TrackFile(dir string, cylinder, head int) string {
	return filepath.Join(dir,
		fmt.Sprintf("track%02d.%d%s", cylinder, head, Extension))
}

// ParseTrackFile recovers cylinder and head from a name created by TrackFile.
func ParseTrackFile(file string) (cylinder, head int, ok bool) {
	var rest string
	n, _ := fmt.Sscanf(filepath.Base(file), "track%d.%d%s",
		&cylinder, &head, &rest)
	if n != 3 || rest != Extension || cylinder < 0 || head < 0 {
		return 0, 0, false
	}
	return cylinder, head, true
}

// TrackFiles lists the track files within dir, ordered by cylinder and head.
func TrackFiles(dir string) ([]string, error) {

	files, err := filepath.Glob(filepath.Join(dir, "track*"+Extension))
	if err != nil {
		return nil, err
	}

	var ret []string
	for _, f := range files {
		if _, _, ok := ParseTrackFile(f); ok {
			ret = append(ret, f)
		}
	}

	sort.Slice(ret, func(i, j int) bool {
		ci, hi, _ := ParseTrackFile(ret[i])
		cj, hj, _ := ParseTrackFile(ret[j])
		if ci != cj {
			return ci < cj
		}
		return hi < hj
	})

	return ret, nil
}
