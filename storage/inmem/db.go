package inmemdb

import (
	"fmt"
	"sync"

	"github.com/shakhna/portal/core/school"
	"github.com/shakhna/portal/core/user"
)

// DB is a process-local stand-in for the remote tabular store, used in tests
// and local development.
type DB struct {
	mutex   sync.RWMutex
	pkCount int

	users     map[string]*user.User
	groups    map[string]*school.Group
	homeworks map[string]*school.Homework
	payments  map[string]*school.Payment
	tests     map[string]*school.AssignedTest
	results   map[string]*school.TestResult
}

func New() *DB {
	return &DB{
		users:     make(map[string]*user.User),
		groups:    make(map[string]*school.Group),
		homeworks: make(map[string]*school.Homework),
		payments:  make(map[string]*school.Payment),
		tests:     make(map[string]*school.AssignedTest),
		results:   make(map[string]*school.TestResult),
	}
}

// nextID mimics the store's opaque record ids.
func (db *DB) nextID() string {
	db.pkCount++
	return fmt.Sprintf("rec%014d", db.pkCount)
}

// Seed helpers for tests and local fixtures.

func (db *DB) AddGroup(grp school.Group) school.Group {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if grp.ID == "" {
		grp.ID = db.nextID()
	}
	db.groups[grp.ID] = &grp
	return grp
}

func (db *DB) AddHomework(hw school.Homework) school.Homework {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if hw.ID == "" {
		hw.ID = db.nextID()
	}
	db.homeworks[hw.ID] = &hw
	return hw
}

func (db *DB) AddPayment(p school.Payment) school.Payment {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if p.ID == "" {
		p.ID = db.nextID()
	}
	db.payments[p.ID] = &p
	return p
}

func (db *DB) AddTest(t school.AssignedTest) school.AssignedTest {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if t.ID == "" {
		t.ID = db.nextID()
	}
	db.tests[t.ID] = &t
	return t
}

func (db *DB) AddResult(res school.TestResult) school.TestResult {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if res.ID == "" {
		res.ID = db.nextID()
	}
	db.results[res.ID] = &res
	return res
}

func (db *DB) AddUser(usr user.User) user.User {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if usr.ID == "" {
		usr.ID = db.nextID()
	}
	db.users[usr.ID] = &usr
	return usr
}
