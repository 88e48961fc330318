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
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/xelalexv/oqtaflux/pkg/arch"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/pll"
)

//
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.
`

//
const configHelpEpilogue = `- The config file may be YAML, JSON, or TOML, and holds format options in the
  sections ibm, ibm-encoder, ibm-fm-encoder, and agat-encoder, e.g.:

    ibm:
      swap-sides: true
      min-sector: 1
      max-sector: 9
`

/*
	NewRunner creates the base for commands. The parameters are passed on to
	the wrapped command.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	Command
	//
	Port   int
	Server string
	//
	Config                 string
	BitErrorThreshold      float64
	PulseDebounceThreshold float64
	MinimumClockUs         float64
	PLLPhase               float64
	PLLAdjust              float64
	FluxScale              float64
}

// AddBaseSettings adds the settings for reaching the API server. This needs
// to be called from the top level command type, not from NewRunner, or Cobra
// and Viper won't fill in the values.
func (r *Runner) AddBaseSettings() {
	r.AddSetting(&r.Port, "port", "p", "FLUX_PORT", 8888,
		"port of API server", false)
	r.AddSetting(&r.Server, "server", "", "FLUX_SERVER", "127.0.0.1",
		"host of API server", false)
}

// AddDecoderSettings adds the tuning settings for flux reading and bit
// recovery, and the format options file.
func (r *Runner) AddDecoderSettings() {
	r.AddSetting(&r.Config, "config", "", "FLUX_CONFIG", nil,
		"config file with format options", false)
	r.AddSetting(&r.BitErrorThreshold, "bit-error-threshold", "",
		"FLUX_BIT_ERROR_THRESHOLD", flux.DefaultBitErrorThreshold,
		"allowed deviation of pattern intervals, as fraction of a clock", false)
	r.AddSetting(&r.PulseDebounceThreshold, "pulse-debounce", "",
		"FLUX_PULSE_DEBOUNCE", flux.DefaultPulseDebounceThreshold,
		"intervals below this fraction of a clock are merged", false)
	r.AddSetting(&r.MinimumClockUs, "minimum-clock", "",
		"FLUX_MINIMUM_CLOCK_US", flux.DefaultMinimumClockUs,
		"shortest bit cell in us accepted for pattern matches, i.e. fastest clock",
		false)
	r.AddSetting(&r.PLLPhase, "pll-phase", "", "FLUX_PLL_PHASE",
		pll.DefaultPhase, "PLL phase correction", false)
	r.AddSetting(&r.PLLAdjust, "pll-adjust", "", "FLUX_PLL_ADJUST",
		pll.DefaultAdjust, "PLL clock adjustment", false)
	r.AddSetting(&r.FluxScale, "flux-scale", "", "FLUX_SCALE",
		pll.DefaultFluxScale, "scale applied to flux intervals", false)
}

//
func (r *Runner) decoderConfig() (decoder.Config, error) {
	c := decoder.Config{
		Reader: flux.ReaderConfig{
			PulseDebounceThreshold: r.PulseDebounceThreshold,
			BitErrorThreshold:      r.BitErrorThreshold,
			MinimumClockUs:         r.MinimumClockUs,
		},
		PLL: pll.Config{
			Phase:     r.PLLPhase,
			Adjust:    r.PLLAdjust,
			FluxScale: r.FluxScale,
		},
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid decoder settings: %v", err)
	}
	return c, nil
}

// archOptions returns the format options, starting from the defaults and
// overlaid with what the config file holds, if one was given.
func (r *Runner) archOptions() (arch.Options, error) {
	return loadOptions(r.Config)
}

//
func loadOptions(file string) (arch.Options, error) {

	o := arch.DefaultOptions()
	if file == "" {
		return o, nil
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return o, fmt.Errorf("cannot read config file '%s': %v", file, err)
	}
	if err := v.Unmarshal(&o); err != nil {
		return o, fmt.Errorf("invalid config file '%s': %v", file, err)
	}

	log.WithField("file", v.ConfigFileUsed()).Debug("format options loaded")
	return o, nil
}

/*
	apiCall sends a request to the API server, asking for a reply of type
	accept. The caller needs to close the returned body. Replies with an error
	status are turned into an error carrying the server's message.
*/
func (r *Runner) apiCall(method, path, accept string,
	body io.Reader) (io.ReadCloser, error) {

	url := fmt.Sprintf("http://%s:%d%s", r.Server, r.Port, path)
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/octet-stream")
	req.Header.Add("Accept", accept)

	log.WithFields(log.Fields{"method": method, "url": url}).Debug("API call")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		msg, _ := ioutil.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: %s", resp.Status,
			strings.TrimSpace(string(msg)))
	}

	return resp.Body, nil
}
