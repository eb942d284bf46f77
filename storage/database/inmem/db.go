// Package inmemdb is a process-local storage engine used for development and tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

type (
	// DB guards every table with a single lock so that cascading deletes are atomic.
	DB struct {
		sync.RWMutex
		seq         int // insertion sequence, shared by all tables
		class       map[string]*classRow
		student     map[string]*studentRow
		composition map[string]*compositionRow
		score       map[string]*scoreRow
	}

	classRow struct {
		seq int
		class.Class
	}

	studentRow struct {
		seq int
		student.Student
	}

	compositionRow struct {
		seq int
		composition.Composition
	}

	scoreRow struct {
		seq int
		score.Score
	}
)

func Open() (*DB, error) {
	db := &DB{
		class:       make(map[string]*classRow),
		student:     make(map[string]*studentRow),
		composition: make(map[string]*compositionRow),
		score:       make(map[string]*scoreRow),
	}
	return db, nil
}

func (db *DB) next() int {
	db.seq++
	return db.seq
}

// deleteScoresWhere must be called with the write lock held.
func (db *DB) deleteScoresWhere(match func(sc score.Score) bool) {
	for id, r := range db.score {
		if match(r.Score) {
			delete(db.score, id)
		}
	}
}
