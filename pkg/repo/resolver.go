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

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/fluxfile"
)

//
const PrefixRepoRef = "repo://"

// path of a referenced flux file within the repository
func refPath(ref, repo string) (string, error) {

	if repo == "" {
		return "", fmt.Errorf("flux repository is not enabled")
	}

	rel := filepath.Clean(ref[len(PrefixRepoRef):])
	if rel == "." || filepath.IsAbs(rel) || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid repository reference: %s", ref)
	}

	return filepath.Join(repo, rel), nil
}

// Resolve loads the revolutions of the flux file that ref points to.
func Resolve(ref, repo string) ([]*flux.Map, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving ref")

	if !IsReference(ref) {
		return nil, fmt.Errorf("not a repository reference: %s", ref)
	}

	file, err := refPath(ref, repo)
	if err != nil {
		return nil, err
	}
	return fluxfile.Load(file)
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}

// List returns references to all flux files in the repository.
func List(repo string) ([]string, error) {

	if repo == "" {
		return nil, fmt.Errorf("flux repository is not enabled")
	}

	var ret []string
	err := filepath.Walk(repo, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != fluxfile.Extension {
			return nil
		}
		rel, err := filepath.Rel(repo, path)
		if err != nil {
			return err
		}
		ret = append(ret, PrefixRepoRef+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(ret)
	return ret, nil
}
