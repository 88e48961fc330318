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
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/control"
)

//
const loggingHelpEpilogue = `- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

`

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve [-a|--address {address}] [-r|--repo {repo base folder}]
      [--config {file}] [decoder settings]`,
		"API server command",
		`Use the serve command for running the API server. Clients upload flux or refer
to flux files in the repository, and get back decoded sectors. Decoded tracks are
kept as jobs, so their sector data can be fetched afterwards.`,
		"", loggingHelpEpilogue+configHelpEpilogue+runnerHelpEpilogue, s.Run)

	s.AddDecoderSettings()
	s.AddSetting(&s.Address, "address", "a", "FLUX_ADDRESS", ":8888",
		"listen address of API server", false)
	s.AddSetting(&s.Repository, "repo", "r", "FLUX_REPO", nil,
		`flux repo base folder; when omitted, decoding flux files
from the server's file system is prohibited`, false)

	return s
}

//
type Serve struct {
	Runner
	//
	Address    string
	Repository string
}

//
func (s *Serve) Run() error {

	if err := s.ParseSettings(); err != nil {
		return err
	}

	conf, err := s.decoderConfig()
	if err != nil {
		return err
	}
	opts, err := s.archOptions()
	if err != nil {
		return err
	}

	api := control.NewAPIServer(s.Address, s.Repository, opts, conf)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0

	for {
		select {

		case sig := <-sigs:
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {
			case 1:
				log.Info("shutting down, hit Ctrl-C twice to force exit...")
				go func() {
					if err := api.Stop(); err != nil {
						log.Errorf("error stopping API server: %v", err)
					}
				}()
			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")
			default:
				log.Warn("forcing server to stop immediately")
				os.Exit(1)
			}

		case <-stopped:
			log.Info("OqtaFlux stopped")
			return nil
		}
	}
}
