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
	"reflect"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//
type setting struct {
	flag     string
	env      string
	required bool
	target   interface{}
}

// typeAndName returns the type of the setting's target, and the name under
// which Viper and pflag know that type, e.g. Float64 or StringSlice.
func (s *setting) typeAndName() (reflect.Type, string, error) {

	typ := reflect.TypeOf(s.target)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return nil, "", fmt.Errorf(
			"target for setting '%s' is not a pointer", s.flag)
	}

	elem := typ.Elem()
	if elem.Kind() == reflect.Slice {
		return elem, strings.Title(elem.Elem().Name()) + "Slice", nil
	}
	return elem, strings.Title(elem.Name()), nil
}

//
func (s *setting) missingError() error {
	msg := fmt.Sprintf("you need to specify the --%s command line flag", s.flag)
	if s.env != "" {
		msg = fmt.Sprintf("%s or the %s environment variable", msg, s.env)
	}
	return fmt.Errorf("%s", msg)
}

//
func (s *setting) get() (interface{}, error) {

	t, n, err := s.typeAndName()
	if err != nil {
		return nil, err
	}

	getter, err := viperGetterForTypeName(n)
	if err != nil {
		return nil, err
	}

	val := getter.Call([]reflect.Value{reflect.ValueOf(s.flag)})[0]
	log.WithFields(log.Fields{
		"flag":    s.flag,
		"type":    t,
		"value":   val,
		"default": !viper.IsSet(s.flag),
	}).Trace("setting")

	if s.required {
		var missing bool
		if val.Kind() == reflect.Slice {
			missing = val.Len() == 0
		} else {
			missing = val.Interface() == reflect.Zero(t).Interface()
		}
		if missing {
			return nil, s.missingError()
		}
	}

	// Viper's BindEnv does not touch the target, so values coming from the
	// environment need to be copied over. For flags and defaults, target and
	// val are already the same.
	if s.env != "" {
		target := reflect.ValueOf(s.target).Elem()
		if val.Kind() == reflect.Slice {
			if target.Len() == 0 {
				target.Set(reflect.ValueOf(stringSliceFromValue(val)))
			}
		} else {
			target.Set(val)
		}
	}

	return val.Interface(), nil
}

//
func viperGetterForTypeName(n string) (reflect.Value, error) {
	method := "Get" + n
	ret := reflect.ValueOf(viper.GetViper()).MethodByName(method)
	if ret.Kind() != reflect.Func {
		return ret, fmt.Errorf("no Viper getter %s for type %s", method, n)
	}
	return ret, nil
}

//
func pflagMethodForTypeName(n string, f *pflag.FlagSet) (reflect.Value, error) {
	method := n + "VarP"
	ret := reflect.ValueOf(f).MethodByName(method)
	if ret.Kind() != reflect.Func {
		return ret, fmt.Errorf("no pflag method %s for type %s", method, n)
	}
	return ret, nil
}

// stringSliceFromValue flattens a slice of comma separated strings
func stringSliceFromValue(v reflect.Value) []string {
	var ret []string
	if v.Kind() == reflect.Slice {
		for ix := 0; ix < v.Len(); ix++ {
			ret = append(ret, strings.Split(v.Index(ix).String(), ",")...)
		}
	}
	return ret
}
