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

package control

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xelalexv/oqtaflux/pkg/report"
)

// decode results kept at most, oldest are dropped first
const maxJobs = 64

//
type Job struct {
	ID      string         `json:"id"`
	Created time.Time      `json:"created"`
	Format  string         `json:"format"`
	Report  *report.Report `json:"-"`
	seq     uint64
}

//
type jobStore struct {
	max  int
	seq  uint64
	jobs map[string]*Job
	lock sync.RWMutex
}

//
func newJobStore(max int) *jobStore {
	return &jobStore{max: max, jobs: make(map[string]*Job)}
}

// add stores r under a new job ID, and returns the job.
func (s *jobStore) add(r *report.Report) *Job {

	j := &Job{
		ID:      uuid.New().String(),
		Created: time.Now(),
		Format:  r.Format,
		Report:  r,
	}
	r.ID = j.ID

	s.lock.Lock()
	defer s.lock.Unlock()

	s.seq++
	j.seq = s.seq

	for len(s.jobs) >= s.max {
		var oldest *Job
		for _, o := range s.jobs {
			if oldest == nil || o.seq < oldest.seq {
				oldest = o
			}
		}
		delete(s.jobs, oldest.ID)
	}

	s.jobs[j.ID] = j
	return j
}

//
func (s *jobStore) get(id string) *Job {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.jobs[id]
}

//
func (s *jobStore) remove(id string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// list returns all jobs, oldest first.
func (s *jobStore) list() []*Job {
	s.lock.RLock()
	ret := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		ret = append(ret, j)
	}
	s.lock.RUnlock()

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].seq < ret[j].seq
	})
	return ret
}
