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
	"io/ioutil"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

//
func NewEncode() *Encode {

	e := &Encode{}
	e.Runner = *NewRunner(
		`encode -f|--format {format} [-c|--cylinders {count}] [-H|--heads {count}]
       [-s|--sectors {count}] [--size {bytes}] [--first {sector}]
       [-r|--revolutions {count}] [-y|--yes] {image file} {track folder}`,
		"encode a sector image into flux files",
		`Use the encode command for turning a sector image into flux, one file per track.
The image holds the sectors of all tracks back to back, ordered by cylinder, head,
and sector. Sector count, size, and number of the first sector default to what
fills a track of the format. The last track is padded with zeroes if the image
ends early.`,
		"", configHelpEpilogue+runnerHelpEpilogue, e.Run)

	e.AddSetting(&e.Config, "config", "", "FLUX_CONFIG", nil,
		"config file with format options", false)
	e.AddSetting(&e.Format, "format", "f", "FLUX_FORMAT", nil,
		"disk format, see 'fluxctl formats'", true)
	e.AddSetting(&e.Cylinders, "cylinders", "c", "", 0,
		"number of cylinders, 0 for as many as the image holds", false)
	e.AddSetting(&e.Heads, "heads", "H", "", 1, "number of heads", false)
	e.AddSetting(&e.Sectors, "sectors", "s", "", 0,
		"sectors per track, 0 for format default", false)
	e.AddSetting(&e.Size, "size", "", "", 0,
		"sector size, 0 for format default", false)
	e.AddSetting(&e.First, "first", "", "", -1,
		"number of first sector, -1 for format default", false)
	e.AddSetting(&e.Revolutions, "revolutions", "r", "", 1,
		"revolutions to write per track", false)
	e.AddSetting(&e.Yes, "yes", "y", "", false,
		"overwrite existing track files without asking", false)

	return e
}

//
type Encode struct {
	Runner
	//
	Format      string
	Cylinders   int
	Heads       int
	Sectors     int
	Size        int
	First       int
	Revolutions int
	Yes         bool
}

//
func (e *Encode) Run() error {

	if err := e.ParseSettings(); err != nil {
		return err
	}

	if len(e.Args) != 2 {
		return fmt.Errorf("please specify image file and track folder")
	}
	image, dir := e.Args[0], e.Args[1]

	format, err := arch.Parse(e.Format)
	if err != nil {
		return err
	}
	opts, err := e.archOptions()
	if err != nil {
		return err
	}

	g, err := e.geometry(format, &opts)
	if err != nil {
		return err
	}

	enc, err := arch.NewEncoder(format, opts)
	if err != nil {
		return err
	}

	data, err := ioutil.ReadFile(image)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("image %s is empty", image)
	}

	if !e.confirmOverwrite(dir) {
		return fmt.Errorf("encoding cancelled")
	}

	tracks := newImageTracks(data, g, e.Heads)
	cylinders := e.Cylinders
	if cylinders == 0 {
		cylinders = tracks.cylinders()
	}

	for c := 0; c < cylinders; c++ {
		for h := 0; h < e.Heads; h++ {

			m, err := enc.Encode(c, h, tracks.sectors(c, h))
			if err != nil {
				return err
			}

			revs := make([]*flux.Map, e.Revolutions)
			for ix := range revs {
				revs[ix] = m
			}

			file := fluxfile.TrackFile(dir, c, h)
			if err := fluxfile.Save(file, revs); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"file":    file,
				"sectors": g.Sectors,
			}).Debug("track written")
		}
	}

	log.Infof("%d tracks written to %s", cylinders*e.Heads, dir)
	return nil
}

// geometry returns the track layout to use, i.e. the format's default with
// any explicitly given setting applied
func (e *Encode) geometry(f arch.Format, o *arch.Options) (arch.Geometry, error) {

	g, err := arch.DefaultGeometry(f, *o)
	if err != nil {
		return g, err
	}

	if e.Sectors > 0 {
		g.Sectors = e.Sectors
	}
	if e.Size > 0 {
		g.SectorSize = e.Size
		o.SetSectorSize(f, e.Size)
	}
	if e.First >= 0 {
		g.FirstSector = e.First
	}

	if e.Heads < 1 || e.Heads > 2 {
		return g, fmt.Errorf("invalid number of heads: %d", e.Heads)
	}
	if e.Revolutions < 1 {
		return g, fmt.Errorf("invalid number of revolutions: %d",
			e.Revolutions)
	}
	return g, nil
}

//
func (e *Encode) confirmOverwrite(dir string) bool {
	if e.Yes {
		return true
	}
	existing, err := fluxfile.TrackFiles(dir)
	if err != nil || len(existing) == 0 {
		return true
	}
	return GetUserConfirmation(fmt.Sprintf(
		"%s already holds %d track files, overwrite?", dir, len(existing)))
}

// imageTracks slices a sector image into tracks
type imageTracks struct {
	data     []byte
	geometry arch.Geometry
	heads    int
}

//
func newImageTracks(data []byte, g arch.Geometry, heads int) *imageTracks {
	return &imageTracks{data: data, geometry: g, heads: heads}
}

//
func (t *imageTracks) trackSize() int {
	return t.geometry.Sectors * t.geometry.SectorSize
}

// cylinders returns how many cylinders are needed to hold the image
func (t *imageTracks) cylinders() int {
	size := t.trackSize() * t.heads
	return (len(t.data) + size - 1) / size
}

// sectors returns the sectors of a track. Data beyond the end of the image
// reads as zeroes.
func (t *imageTracks) sectors(cylinder, head int) []*sector.Sector {

	g := t.geometry
	offset := (cylinder*t.heads + head) * t.trackSize()

	ret := make([]*sector.Sector, 0, g.Sectors)
	for ix := 0; ix < g.Sectors; ix++ {

		s := sector.New(cylinder, head)
		s.SetLogical(cylinder, head, g.FirstSector+ix)
		s.Status = sector.StatusOK
		s.Data = make([]byte, g.SectorSize)

		if start := offset + ix*g.SectorSize; start < len(t.data) {
			copy(s.Data, t.data[start:])
		}
		ret = append(ret, s)
	}

	return ret
}
