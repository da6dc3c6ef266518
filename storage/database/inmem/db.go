package inmemdb

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/recruitment"
	"github.com/trezcool/chaguo/core/student"
)

type (
	// DB keeps every table in memory. Each table is guarded by its own lock.
	DB struct {
		accounts        *table[account.Account]
		students        *table[student.Student]
		institutions    *table[catalog.Institution]
		courses         *table[catalog.Course]
		companies       *table[catalog.Company]
		jobs            *table[catalog.Job]
		applications    *table[admission.Application]
		jobApplications *table[recruitment.JobApplication]
		savedJobs       *table[recruitment.SavedJob] // {studentID/jobID: saved job}
	}

	table[V any] struct {
		mu   sync.RWMutex
		rows map[string]V
	}
)

func Open() *DB {
	return &DB{
		accounts:        newTable[account.Account](),
		students:        newTable[student.Student](),
		institutions:    newTable[catalog.Institution](),
		courses:         newTable[catalog.Course](),
		companies:       newTable[catalog.Company](),
		jobs:            newTable[catalog.Job](),
		applications:    newTable[admission.Application](),
		jobApplications: newTable[recruitment.JobApplication](),
		savedJobs:       newTable[recruitment.SavedJob](),
	}
}

func newTable[V any]() *table[V] {
	return &table[V]{rows: make(map[string]V)}
}

// get must be called with t.mu held.
func (t *table[V]) get(id string) (V, bool) {
	row, ok := t.rows[id]
	return row, ok
}

// filter returns the rows keep accepts, sorted with less. It must be called with t.mu held.
func (t *table[V]) filter(keep func(V) bool, less func(a, b V) bool) []V {
	return filterRows(t.rows, keep, less)
}

func filterRows[V any](rows map[string]V, keep func(V) bool, less func(a, b V) bool) []V {
	kept := make([]V, 0)
	for _, row := range rows {
		if keep == nil || keep(row) {
			kept = append(kept, row)
		}
	}
	if less != nil {
		sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })
	}
	return kept
}

// snapshot copies the rows, for units of work that may be discarded. It must be called with t.mu held.
func (t *table[V]) snapshot() map[string]V {
	rows := make(map[string]V, len(t.rows))
	for id, row := range t.rows {
		rows[id] = row
	}
	return rows
}

func newID() string {
	return uuid.New().String()
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}
