package persistence

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

// WriteJob is one journal operation for one entity file. A HighWater job
// instead records the highest index the collection has handed out; Index
// carries the mark.
type WriteJob struct {
	Directory string
	Index     int64
	Content   string
	Delete    bool
	HighWater bool
}

// Sink receives journal operations in the order they happened.
type Sink interface {
	Enqueue(job WriteJob)
}

// DataAccess is the only way to change a collection.
type DataAccess[T Entity] struct {
	mu        sync.Mutex
	set       *ChangeTrackingSet[T]
	directory string
	sink      Sink
	logger    *slog.Logger

	// highest mark already sent to the sink
	journaledMark int64
}

func newDataAccess[T Entity](directory string, sink Sink, log *slog.Logger) *DataAccess[T] {
	return &DataAccess[T]{
		set:       NewChangeTrackingSet[T](),
		directory: directory,
		sink:      sink,
		logger:    log.With("collection", directory),
	}
}

// ActOn runs fn with exclusive access to the collection, then forwards
// whatever fn changed to the journal. Mutations made before fn returned an
// error stay applied and are journaled too; there is no rollback.
//
// fn must not call ActOn on the same collection.
func (d *DataAccess[T]) ActOn(fn func(*ChangeTrackingSet[T]) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := fn(d.set)
	d.flush(d.set.ChangedData())
	return err
}

// Get returns the first item matching pred. It does not wait for ActOn.
func (d *DataAccess[T]) Get(pred func(T) bool) (T, bool) {
	return d.set.First(pred)
}

// GetAll returns a snapshot ordered by index.
func (d *DataAccess[T]) GetAll() []T {
	return sortByIndex(d.set.ToList())
}

func (d *DataAccess[T]) Find(pred func(T) bool) []T {
	return sortByIndex(d.set.Find(pred))
}

func (d *DataAccess[T]) Directory() string {
	return d.directory
}

func (d *DataAccess[T]) flush(changes []Change[T]) {
	topDeleted := false
	for _, change := range changes {
		logger.Trace(d.logger, "journaling change",
			"action", change.Action.String(),
			"index", change.Item.Index())

		if d.sink == nil {
			continue
		}
		job := WriteJob{Directory: d.directory, Index: change.Item.Index()}
		if change.Action == Deleted {
			job.Delete = true
		} else {
			job.Content = codec.Encode(change.Item.Fields())
		}
		d.sink.Enqueue(job)
		if change.Action == Deleted && change.Item.Index() >= d.journaledMark {
			topDeleted = true
		}
	}

	if topDeleted {
		d.journalHighWater()
	}
}

// journalHighWater persists the mark once the item carrying it is gone,
// since a reload could no longer derive it from the remaining files.
func (d *DataAccess[T]) journalHighWater() {
	mark := d.set.highWaterMark()
	if mark <= d.journaledMark || d.set.holdsIndex(mark) {
		return
	}
	logger.Trace(d.logger, "journaling high water mark", "index", mark)
	d.sink.Enqueue(WriteJob{Directory: d.directory, Index: mark, HighWater: true})
	d.journaledMark = mark
}

func (d *DataAccess[T]) size() int {
	return d.set.Len()
}

func (d *DataAccess[T]) directoryName() string {
	return d.directory
}

func (d *DataAccess[T]) detachedCopy(log *slog.Logger) collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &DataAccess[T]{
		set:           d.set.snapshot(),
		directory:     d.directory,
		logger:        log.With("collection", d.directory),
		journaledMark: d.journaledMark,
	}
}

func sortByIndex[T Entity](items []T) []T {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Index() < items[j].Index()
	})
	return items
}
