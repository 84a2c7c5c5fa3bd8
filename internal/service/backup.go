package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// ErrBackupDisabled is returned by Trigger when no backup storage is configured.
var ErrBackupDisabled = errors.New("backup storage is not configured")

// Snapshotter produces a named snapshot for a manual backup.
type Snapshotter interface {
	Snapshot(ctx context.Context) (name string, data []byte, err error)
}

var _ model.Notifier = (*Backup)(nil)

// uploadJob is one snapshot waiting for the upload worker. seq orders
// snapshots by the time they were taken.
type uploadJob struct {
	ctx    context.Context
	seq    uint64
	name   string
	data   []byte
	result chan error
}

// Backup ships snapshots to object storage. Each snapshot is written twice:
// as the latest copy under prefix/name and under prefix/history.
//
// Uploads run one at a time in snapshot order. The latest copy of a name is
// only overwritten by a newer snapshot, so it always holds the most recent
// state that reached the storage.
type Backup struct {
	storage model.Storage
	prefix  string
	timeout time.Duration
	clock   clock.Clock
	logger  *logger.Logger

	mu      sync.Mutex
	sources []Snapshotter

	queueMu sync.Mutex
	queue   []uploadJob
	seq     uint64
	running bool
	wg      sync.WaitGroup

	// latest is only touched by the upload worker.
	latest map[string]uint64
}

// NewBackup creates a Backup. A nil storage disables uploads.
func NewBackup(storage model.Storage, prefix string, timeout time.Duration, clk clock.Clock, logger *logger.Logger) *Backup {
	return &Backup{
		storage: storage,
		prefix:  prefix,
		timeout: timeout,
		clock:   clk,
		logger:  logger,
		latest:  map[string]uint64{},
	}
}

// Register adds sources included in manual backups.
func (b *Backup) Register(sources ...Snapshotter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, sources...)
}

// Notify queues data for upload and returns immediately. Failures are
// logged and never reach the caller. Callers must notify in mutation order.
func (b *Backup) Notify(name string, data []byte) {
	if b.storage == nil {
		b.logger.Debug("Backup: storage disabled, skipping", "name", name)
		return
	}

	b.queueMu.Lock()
	defer b.queueMu.Unlock()

	b.seq++
	b.enqueueLocked(uploadJob{seq: b.seq, name: name, data: bytes.Clone(data)})
}

// Trigger synchronously backs up every registered source.
func (b *Backup) Trigger(ctx context.Context) ([]string, error) {
	if b.storage == nil {
		return nil, ErrBackupDisabled
	}

	b.mu.Lock()
	sources := append([]Snapshotter(nil), b.sources...)
	b.mu.Unlock()

	var (
		names []string
		errs  []error
	)
	for _, src := range sources {
		// Reserved before the snapshot: a notification arriving while the
		// snapshot is taken carries state at least as new.
		seq := b.nextSeq()

		name, data, err := src.Snapshot(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to take snapshot: %w", err))
			continue
		}

		result := make(chan error, 1)
		b.enqueue(uploadJob{ctx: ctx, seq: seq, name: name, data: data, result: result})

		select {
		case err = <-result:
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names = append(names, name)
	}

	if err := errors.Join(errs...); err != nil {
		b.logger.Error("Backup: manual backup failed", "error", err.Error())
		return names, err
	}

	b.logger.Info("Backup: manual backup completed", "names", names)

	return names, nil
}

// Wait blocks until queued uploads finish.
func (b *Backup) Wait() {
	b.wg.Wait()
}

func (b *Backup) nextSeq() uint64 {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	b.seq++
	return b.seq
}

func (b *Backup) enqueue(job uploadJob) {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	b.enqueueLocked(job)
}

// enqueueLocked starts the worker if it is idle. The caller must hold queueMu.
func (b *Backup) enqueueLocked(job uploadJob) {
	b.queue = append(b.queue, job)
	if b.running {
		return
	}
	b.running = true
	b.wg.Add(1)
	go b.work()
}

// work drains the queue and exits once it is empty.
func (b *Backup) work() {
	defer b.wg.Done()

	for {
		b.queueMu.Lock()
		if len(b.queue) == 0 {
			b.running = false
			b.queueMu.Unlock()
			return
		}
		job := b.queue[0]
		b.queue[0] = uploadJob{}
		b.queue = b.queue[1:]
		b.queueMu.Unlock()

		err := b.process(job)
		if job.result != nil {
			job.result <- err
			continue
		}
		if err != nil {
			b.logger.Error("Backup: upload failed",
				"name", job.name,
				"error", err.Error())
			continue
		}
		b.logger.Debug("Backup: upload completed", "name", job.name, "size", len(job.data))
	}
}

func (b *Backup) process(job uploadJob) error {
	ctx := job.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if job.seq > b.latest[job.name] {
		latest := path.Join(b.prefix, job.name)
		if err := b.storage.Upload(ctx, latest, bytes.NewReader(job.data)); err != nil {
			return fmt.Errorf("failed to upload %s: %w", latest, err)
		}
		b.latest[job.name] = job.seq
	} else {
		b.logger.Debug("Backup: newer snapshot already uploaded, keeping latest copy",
			"name", job.name)
	}

	stamp := b.clock.Now().UTC().Format("20060102T150405Z")
	history := path.Join(b.prefix, "history", fmt.Sprintf("%s-%s-%s", stamp, uuid.NewString(), job.name))
	if err := b.storage.Upload(ctx, history, bytes.NewReader(job.data)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", history, err)
	}

	return nil
}
