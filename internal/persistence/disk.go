package persistence

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

const (
	fileSuffix       = ".db"
	highWaterFile    = "highwater"
	defaultQueueSize = 1000
)

// DiskPersistence writes one file per entity under one directory per
// collection. A single worker applies jobs in the order they were queued,
// so a delete and a later create of the same index land in that order.
type DiskPersistence struct {
	root   string
	queue  chan WriteJob
	done   chan struct{}
	logger *slog.Logger

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func newDiskPersistence(root string, queueSize int, log *slog.Logger) (*DiskPersistence, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", root, err)
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &DiskPersistence{
		root:   root,
		queue:  make(chan WriteJob, queueSize),
		done:   make(chan struct{}),
		logger: log.With("component", "disk_persistence"),
	}, nil
}

func (p *DiskPersistence) start() {
	go p.worker()
}

func (p *DiskPersistence) worker() {
	defer close(p.done)
	for job := range p.queue {
		p.apply(job)
	}
}

// Enqueue blocks only while the queue is full.
func (p *DiskPersistence) Enqueue(job WriteJob) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.logger.Warn("write after stop ignored",
			"directory", job.Directory,
			"index", job.Index,
			"delete", job.Delete)
		return
	}
	p.queue <- job
}

// Stop refuses new jobs, waits until every queued job has been applied and
// then returns. Later calls return immediately.
func (p *DiskPersistence) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		p.logger.Info("disk persistence stopped")
	})
}

func (p *DiskPersistence) path(directory string, index int64) string {
	return filepath.Join(p.root, directory, fmt.Sprintf("%d%s", index, fileSuffix))
}

func (p *DiskPersistence) apply(job WriteJob) {
	if job.HighWater {
		path := filepath.Join(p.root, job.Directory, highWaterFile)
		if err := writeAtomic(path, []byte(strconv.FormatInt(job.Index, 10))); err != nil {
			p.logger.Error("failed to write high water mark", "path", path, "error", err)
		}
		return
	}

	path := p.path(job.Directory, job.Index)

	if job.Delete {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				p.logger.Warn("file to delete was already gone", "path", path)
				return
			}
			p.logger.Error("failed to delete entity file", "path", path, "error", err)
		}
		return
	}

	if err := writeAtomic(path, []byte(job.Content)); err != nil {
		p.logger.Error("failed to write entity file", "path", path, "error", err)
	}
}

// writeAtomic writes to a temp file and renames it over path, so a crash
// never leaves a half-written entity behind.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
