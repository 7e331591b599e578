package persistence

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timekeeper/internal/core/datamodel/system"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
)

type collection interface {
	size() int
	directoryName() string
	detachedCopy(log *slog.Logger) collection
}

// Database owns every collection in the system.
type Database struct {
	collections map[string]collection
	order       []string
	disk        *DiskPersistence
	logger      *slog.Logger
}

// NewInMemory returns a database that never touches disk.
func NewInMemory(log *slog.Logger) *Database {
	return newDatabase(nil, nil, log)
}

// NewWithSink journals every change to sink instead of the disk.
func NewWithSink(sink Sink, log *slog.Logger) *Database {
	return newDatabase(sink, nil, log)
}

func newDatabase(sink Sink, disk *DiskPersistence, log *slog.Logger) *Database {
	db := &Database{
		collections: make(map[string]collection),
		disk:        disk,
		logger:      log,
	}
	register[timerecording.Employee](db, timerecording.EmployeesDirectory, sink)
	register[user.User](db, user.UsersDirectory, sink)
	register[timerecording.Project](db, timerecording.ProjectsDirectory, sink)
	register[timerecording.TimeEntry](db, timerecording.TimeEntriesDirectory, sink)
	register[timerecording.SubmittedPeriod](db, timerecording.SubmittedPeriodsDirectory, sink)
	register[user.Session](db, user.SessionsDirectory, sink)
	register[user.Invitation](db, user.InvitationsDirectory, sink)
	register[system.SystemConfiguration](db, system.SystemConfigDirectory, sink)
	return db
}

func register[T Entity](db *Database, directory string, sink Sink) {
	db.collections[directory] = newDataAccess[T](directory, sink, db.logger)
	db.order = append(db.order, directory)
}

// Access returns the collection stored under directory. Asking for the
// wrong type is a programming error and panics.
func Access[T Entity](db *Database, directory string) *DataAccess[T] {
	c, ok := db.collections[directory]
	if !ok {
		panic(fmt.Sprintf("persistence: no collection named %q", directory))
	}
	da, ok := c.(*DataAccess[T])
	if !ok {
		panic(fmt.Sprintf("persistence: collection %q holds %T", directory, c))
	}
	return da
}

func (db *Database) Employees() *DataAccess[timerecording.Employee] {
	return Access[timerecording.Employee](db, timerecording.EmployeesDirectory)
}

func (db *Database) Projects() *DataAccess[timerecording.Project] {
	return Access[timerecording.Project](db, timerecording.ProjectsDirectory)
}

func (db *Database) TimeEntries() *DataAccess[timerecording.TimeEntry] {
	return Access[timerecording.TimeEntry](db, timerecording.TimeEntriesDirectory)
}

func (db *Database) SubmittedPeriods() *DataAccess[timerecording.SubmittedPeriod] {
	return Access[timerecording.SubmittedPeriod](db, timerecording.SubmittedPeriodsDirectory)
}

func (db *Database) Users() *DataAccess[user.User] {
	return Access[user.User](db, user.UsersDirectory)
}

func (db *Database) Sessions() *DataAccess[user.Session] {
	return Access[user.Session](db, user.SessionsDirectory)
}

func (db *Database) Invitations() *DataAccess[user.Invitation] {
	return Access[user.Invitation](db, user.InvitationsDirectory)
}

func (db *Database) SystemConfigurations() *DataAccess[system.SystemConfiguration] {
	return Access[system.SystemConfiguration](db, system.SystemConfigDirectory)
}

// IsEmpty reports whether no collection holds anything, i.e. a first run.
func (db *Database) IsEmpty() bool {
	for _, c := range db.collections {
		if c.size() > 0 {
			return false
		}
	}
	return true
}

// Sizes reports the item count per collection.
func (db *Database) Sizes() map[string]int {
	out := make(map[string]int, len(db.collections))
	for name, c := range db.collections {
		out[name] = c.size()
	}
	return out
}

// Copy snapshots every collection into a database with no disk attached.
// Each collection is copied under its own lock, one after the other.
func (db *Database) Copy() *Database {
	out := &Database{
		collections: make(map[string]collection, len(db.collections)),
		order:       append([]string(nil), db.order...),
		logger:      db.logger,
	}
	for _, name := range db.order {
		out.collections[name] = db.collections[name].detachedCopy(db.logger)
	}
	return out
}

// Stop drains the disk journal, if any. It is safe to call more than once.
func (db *Database) Stop() {
	if db.disk != nil {
		db.disk.Stop()
	}
}
