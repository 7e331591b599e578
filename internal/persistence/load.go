package persistence

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/frahmantamala/timekeeper/internal/core/datamodel/system"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
)

type Option func(*options)

type options struct {
	queueSize int
}

func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// StartWithDiskPersistence loads every collection found under dir and
// returns a database that journals further changes there. Any file that
// cannot be read back aborts the load with a *CorruptionError.
func StartWithDiskPersistence(dir string, log *slog.Logger, opts ...Option) (*Database, error) {
	o := options{queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(&o)
	}

	disk, err := newDiskPersistence(dir, o.queueSize, log)
	if err != nil {
		return nil, err
	}
	db := newDatabase(disk, disk, log)

	if err := loadAll(db, dir, log); err != nil {
		return nil, err
	}

	disk.start()
	log.Info("database loaded", "directory", dir, "sizes", db.Sizes())
	return db, nil
}

// loadAll goes collection by collection so that every reference points
// at something already loaded.
func loadAll(db *Database, dir string, log *slog.Logger) error {
	employees := map[timerecording.EmployeeID]struct{}{}
	err := load(db.Employees(), dir, log, func(text string) (timerecording.Employee, error) {
		return timerecording.DeserializeEmployee(text)
	})
	if err != nil {
		return err
	}
	for _, e := range db.Employees().GetAll() {
		employees[e.ID] = struct{}{}
	}
	employeeExists := func(id timerecording.EmployeeID) bool {
		_, ok := employees[id]
		return ok
	}

	users := map[user.UserID]struct{}{}
	err = load(db.Users(), dir, log, func(text string) (user.User, error) {
		return user.DeserializeUser(text, employeeExists)
	})
	if err != nil {
		return err
	}
	for _, u := range db.Users().GetAll() {
		users[u.ID] = struct{}{}
	}

	projects := map[timerecording.ProjectID]struct{}{}
	err = load(db.Projects(), dir, log, func(text string) (timerecording.Project, error) {
		return timerecording.DeserializeProject(text)
	})
	if err != nil {
		return err
	}
	for _, p := range db.Projects().GetAll() {
		projects[p.ID] = struct{}{}
	}

	err = load(db.TimeEntries(), dir, log, func(text string) (timerecording.TimeEntry, error) {
		return timerecording.DeserializeTimeEntry(text, employeeExists, func(id timerecording.ProjectID) bool {
			_, ok := projects[id]
			return ok
		})
	})
	if err != nil {
		return err
	}

	err = load(db.SubmittedPeriods(), dir, log, func(text string) (timerecording.SubmittedPeriod, error) {
		return timerecording.DeserializeSubmittedPeriod(text, employeeExists)
	})
	if err != nil {
		return err
	}

	err = load(db.Sessions(), dir, log, func(text string) (user.Session, error) {
		return user.DeserializeSession(text, func(id user.UserID) bool {
			_, ok := users[id]
			return ok
		})
	})
	if err != nil {
		return err
	}

	err = load(db.Invitations(), dir, log, func(text string) (user.Invitation, error) {
		return user.DeserializeInvitation(text, employeeExists)
	})
	if err != nil {
		return err
	}

	return load(db.SystemConfigurations(), dir, log, system.DeserializeSystemConfiguration)
}

func load[T Entity](da *DataAccess[T], root string, log *slog.Logger, deserialize func(string) (T, error)) error {
	dir := filepath.Join(root, da.Directory())
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &CorruptionError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.Name() == highWaterFile {
			if err := loadHighWater(da, path); err != nil {
				return err
			}
			continue
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			log.Warn("ignoring unexpected file in database directory", "path", path)
			continue
		}

		index, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), fileSuffix), 10, 64)
		if err != nil {
			return &CorruptionError{Path: path, Err: fmt.Errorf("file name is not an index: %w", err)}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return &CorruptionError{Path: path, Err: err}
		}
		item, err := deserialize(string(data))
		if err != nil {
			return &CorruptionError{Path: path, Err: err}
		}
		if item.Index() != index {
			return &CorruptionError{Path: path, Err: fmt.Errorf("file holds index %d", item.Index())}
		}
		if !da.set.AddWithoutTracking(item) {
			return &CorruptionError{Path: path, Err: fmt.Errorf("duplicate entity")}
		}
	}

	log.Debug("collection loaded", "collection", da.Directory(), "count", da.size())
	return nil
}

func loadHighWater[T Entity](da *DataAccess[T], path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CorruptionError{Path: path, Err: err}
	}
	mark, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || mark < 0 {
		return &CorruptionError{Path: path, Err: fmt.Errorf("high water mark %q is not an index", data)}
	}
	da.set.raiseHighWaterTo(mark)
	da.journaledMark = mark
	return nil
}
