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
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
	"github.com/xelalexv/oqtaflux/pkg/report"
	"github.com/xelalexv/oqtaflux/pkg/repo"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

//
func NewDecode() *Decode {

	d := &Decode{out: os.Stdout}
	d.Runner = *NewRunner(
		`decode -f|--format {format} [-c|--cylinder {cylinder}] [-H|--head {head}]
       [-o|--output {text|json|yaml}] [--dump] [--conflicts] [--remote]
       {flux file|track folder|repo reference}`,
		"decode sectors from flux",
		`Use the decode command to decode the sectors stored in flux files. When given a
folder, all track files in it are decoded. Cylinder and head are taken from track
file names, unless given explicitly. With --remote, decoding is done by the API server. The flux file
is then uploaded, unless a repo reference (repo://...) is given.`,
		"", configHelpEpilogue+runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddDecoderSettings()
	d.AddSetting(&d.Format, "format", "f", "FLUX_FORMAT", nil,
		"disk format, see 'fluxctl formats'", true)
	d.AddSetting(&d.Cylinder, "cylinder", "c", "", 0,
		"physical cylinder the flux was read from", false)
	d.AddSetting(&d.Head, "head", "H", "", 0,
		"physical head the flux was read from", false)
	d.AddSetting(&d.Output, "output", "o", "", "text",
		"report type, 'text', 'json', or 'yaml'", false)
	d.AddSetting(&d.Dump, "dump", "", "", false,
		"include hex dumps of sector data in text report", false)
	d.AddSetting(&d.Conflicts, "conflicts", "", "", false,
		"flag sectors read with different data in different revolutions",
		false)
	d.AddSetting(&d.Remote, "remote", "", "", false,
		"decode with API server", false)

	return d
}

//
type Decode struct {
	Runner
	//
	Format    string
	Cylinder  int
	Head      int
	Output    string
	Dump      bool
	Conflicts bool
	Remote    bool
	//
	out io.Writer
}

//
func (d *Decode) Run() error {

	if err := d.ParseSettings(); err != nil {
		return err
	}

	if len(d.Args) != 1 {
		return fmt.Errorf(
			"please specify one flux file, track folder, or repo reference")
	}
	src := d.Args[0]

	format, err := arch.Parse(d.Format)
	if err != nil {
		return err
	}
	typ, err := report.ParseType(d.Output)
	if err != nil {
		return err
	}

	if d.Remote {
		return d.remote(format, typ, src)
	}
	if repo.IsReference(src) {
		return fmt.Errorf("repo references can only be decoded with --remote")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := d.local(ctx, format, src)
	if err != nil {
		return err
	}
	return r.Write(d.out, typ)
}

//
func (d *Decode) local(ctx context.Context, format arch.Format,
	src string) (*report.Report, error) {

	conf, err := d.decoderConfig()
	if err != nil {
		return nil, err
	}
	opts, err := d.archOptions()
	if err != nil {
		return nil, err
	}

	files := []string{src}
	if fi, err := os.Stat(src); err != nil {
		return nil, err
	} else if fi.IsDir() {
		if files, err = fluxfile.TrackFiles(src); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no track files in %s", src)
		}
	}

	ret := report.New(format.String())
	ret.Dump = d.Dump

	for _, f := range files {

		cylinder, head := d.Cylinder, d.Head
		if c, h, ok := fluxfile.ParseTrackFile(f); ok && d.fromFileName() {
			cylinder, head = c, h
		}

		revs, err := fluxfile.Load(f)
		if err != nil {
			return nil, err
		}

		track, err := d.decodeTrack(ctx, format, opts, conf, revs, cylinder, head)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %v", f, err)
		}

		log.WithFields(log.Fields{
			"file":     f,
			"cylinder": cylinder,
			"head":     head,
			"good":     track.Count(sector.StatusOK),
		}).Debug("track decoded")
		ret.Add(track)
	}

	return ret, nil
}

// fromFileName tells whether cylinder and head should be taken from track file
// names, which is the case unless they were given explicitly
func (d *Decode) fromFileName() bool {
	return !d.IsSet("cylinder") && !d.IsSet("head")
}

//
func (d *Decode) decodeTrack(ctx context.Context, format arch.Format,
	opts arch.Options, conf decoder.Config, revs []*flux.Map,
	cylinder, head int) (*decoder.Track, error) {

	dec, err := arch.NewDecoder(format, opts, conf)
	if err != nil {
		return nil, err
	}
	dec.SetDetectConflicts(d.Conflicts)
	return dec.DecodeRevolutions(ctx, revs, cylinder, head)
}

//
func (d *Decode) remote(format arch.Format, typ report.Type, src string) error {

	query := url.Values{}
	query.Set("format", format.String())
	query.Set("cylinder", fmt.Sprint(d.Cylinder))
	query.Set("head", fmt.Sprint(d.Head))
	if d.Dump {
		query.Set("dump", "true")
	}
	if d.Conflicts {
		query.Set("conflicts", "true")
	}

	var body io.Reader
	if repo.IsReference(src) {
		query.Set("ref", src)
	} else {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		body = f
	}

	resp, err := d.apiCall("PUT", "/decode?"+query.Encode(),
		typ.ContentType(), body)
	if err != nil {
		return err
	}
	defer resp.Close()

	_, err = io.Copy(d.out, resp)
	return err
}
