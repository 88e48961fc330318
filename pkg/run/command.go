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
	"os"
	"reflect"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//
const (
	prologueHeader = ""
	epilogueHeader = `
Notes:

`
)

/*
	The package initializer sets up logging based on logrus. Logging goes to
	stderr, so that command output such as reports or flux dumps on stdout can
	be piped. These environment variables configure logging:

		LOG_FORMAT		set to `json` for JSON logging
		LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
		LOG_METHODS		set to non-empty for including methods in log
		LOG_LEVEL		`panic`, `fatal`, `error`, `warn`, `info`, `debug`, `trace`
*/
func init() {

	log.SetOutput(os.Stderr)

	switch {
	case strings.ToLower(os.Getenv("LOG_FORMAT")) == "json":
		log.SetFormatter(&log.JSONFormatter{})
	case os.Getenv("LOG_FORCE_COLORS") != "":
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	}

	log.SetReportCaller(os.Getenv("LOG_METHODS") != "")

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			log.Errorf("invalid log level: '%s'; valid levels are: panic, "+
				"fatal, error, warn, info, debug, trace", level)
		} else {
			log.SetLevel(l)
		}
	}
}

// UnderTest turns exits into panics
var UnderTest bool

// DieOnError prints e and exits the process, unless e is nil.
func DieOnError(e error) {
	if e != nil {
		Die("%v\n", e)
	}
}

// Die prints the message and exits the process.
func Die(msg string, params ...interface{}) {
	out := msg
	if len(params) > 0 {
		out = fmt.Sprintf(msg, params...)
	}
	if UnderTest {
		panic(out)
	}
	fmt.Fprint(os.Stderr, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

//
func GetUserConfirmation(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	var res string
	fmt.Scanln(&res)
	return strings.ToLower(strings.TrimSpace(res)) == "y"
}

/*
	NewCommand wraps a new Cobra command. exec gets invoked when Execute is
	called on the returned command.
*/
func NewCommand(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Command {

	ret := &Command{
		cmd: &cobra.Command{
			Use:   use,
			Short: short,
			Long:  long,
			RunE: func(*cobra.Command, []string) error {
				return exec()
			},
			SilenceErrors:         true,
			SilenceUsage:          true,
			DisableFlagsInUseLine: true,
		},
		settings:     map[string]*setting{},
		helpPrologue: helpPrologue,
		helpEpilogue: helpEpilogue,
	}
	ret.helpFunc = ret.cmd.HelpFunc()
	ret.cmd.SetHelpFunc(ret.help)
	return ret
}

/*
	Command sits on top of Cobra and Viper. A setting can come from a command
	line flag or an environment variable, with the flag taking precedence.
	Settings are bound to a target variable, which holds the effective value
	after ParseSettings was called. Required settings that are missing produce
	an error naming both, flag and variable.
*/
type Command struct {
	cmd          *cobra.Command
	settings     map[string]*setting
	Args         []string
	helpPrologue string
	helpEpilogue string
	helpFunc     func(*cobra.Command, []string)
}

//
func (c *Command) help(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if c.helpPrologue != "" {
		fmt.Fprintln(out, prologueHeader+c.helpPrologue)
	}
	if c.helpFunc != nil {
		c.helpFunc(cmd, args)
	}
	if c.helpEpilogue != "" {
		fmt.Fprintln(out, epilogueHeader+c.helpEpilogue)
	} else {
		fmt.Fprintln(out)
	}
}

// Execute runs the command with args, which do not include the command name.
func (c *Command) Execute(args []string) error {
	if args == nil {
		args = []string{}
	}
	c.cmd.SetArgs(args)
	return c.cmd.Execute()
}

/*
	AddSetting binds the setting named flag to target, which needs to be a
	pointer. short is the single-dash flag, env the optional environment
	variable. def is the default value, nil meaning the zero value of target's
	type. Required settings must not have a default.
*/
func (c *Command) AddSetting(target interface{}, flag, short, env string,
	def interface{}, help string, required bool) {

	s := &setting{flag: flag, env: env, required: required, target: target}
	c.settings[flag] = s

	t, n, err := s.typeAndName()
	DieOnError(err)

	log.Tracef("add setting: flag=%s, env=%s, type=%s", flag, env, t)

	if strings.HasSuffix(n, "Slice") && n != "StringSlice" && env != "" {
		Die("cannot use environment variable on non-string array setting")
	}

	// pflag supports more types than Viper has getters for
	if _, err := viperGetterForTypeName(n); err != nil {
		Die("setting '%s' is of unsupported type: no Viper getter", flag)
	}

	defVal := reflect.Zero(t)
	if required {
		if def != nil {
			Die("required setting '%s' does not take a default value", flag)
		}
	} else if def != nil {
		if !reflect.TypeOf(def).ConvertibleTo(t) {
			Die("default value for setting '%s' has incorrect type", flag)
		}
		defVal = reflect.ValueOf(def).Convert(t)
	}

	flags := c.cmd.Flags()
	method, err := pflagMethodForTypeName(n, flags)
	if err != nil {
		Die("setting '%s' is of unsupported type: no pflag method", flag)
	}

	if env != "" {
		help = fmt.Sprintf("%s (%s)", help, env)
	}

	method.Call([]reflect.Value{
		reflect.ValueOf(target),
		reflect.ValueOf(flag),
		reflect.ValueOf(short),
		defVal,
		reflect.ValueOf(help),
	})

	viper.BindPFlag(flag, flags.Lookup(flag))
	if env != "" {
		viper.BindEnv(flag, env)
	}
}

// GetSetting resolves the setting for flag and stores it in its target.
func (c *Command) GetSetting(flag string) (interface{}, error) {
	s, ok := c.settings[flag]
	if !ok {
		return nil, fmt.Errorf("undefined setting: %s", flag)
	}
	return s.get()
}

// IsSet tells whether the setting for flag was given as flag or environment
// variable.
func (c *Command) IsSet(flag string) bool {
	if _, ok := c.settings[flag]; !ok {
		return false
	}
	return viper.IsSet(flag)
}

/*
	ParseSettings resolves all settings added so far, and collects the
	remaining positional arguments in Args. Call this at the start of exec,
	before using any bound variable.
*/
func (c *Command) ParseSettings() error {
	for _, s := range c.settings {
		if _, err := s.get(); err != nil {
			return err
		}
	}
	c.Args = c.cmd.Flags().Args()
	return nil
}
