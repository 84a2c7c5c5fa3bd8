package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/numbook-server/internal/clock"
	servermocks "github.com/dtroode/numbook-server/internal/mocks"
	"github.com/dtroode/numbook-server/internal/testutil"
)

var backupNow = time.Date(2025, 7, 4, 15, 4, 5, 0, time.UTC)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]string
	failOn  string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(key, m.failOn) {
		return errors.New("upload refused")
	}
	m.objects[key] = string(data)
	return nil
}

func (m *memoryStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

type staticSnapshot struct {
	name string
	data []byte
	err  error
}

func (s staticSnapshot) Snapshot(context.Context) (string, []byte, error) {
	return s.name, s.data, s.err
}

func TestBackup_Notify(t *testing.T) {
	storage := newMemoryStorage()
	b := NewBackup(storage, "backups", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())

	data := []byte("encrypted")
	b.Notify("users.enc", data)
	data[0] = 'X'
	b.Wait()

	assert.Equal(t, "encrypted", storage.objects["backups/users.enc"])

	keys := storage.keys()
	require.Len(t, keys, 2)
	var history string
	for _, k := range keys {
		if strings.HasPrefix(k, "backups/history/") {
			history = k
		}
	}
	require.NotEmpty(t, history)
	assert.True(t, strings.HasPrefix(history, "backups/history/20250704T150405Z-"))
	assert.True(t, strings.HasSuffix(history, "-users.enc"))
	assert.Equal(t, "encrypted", storage.objects[history])
}

func TestBackup_Notify_FailureIsSwallowed(t *testing.T) {
	storage := &servermocks.Storage{}
	storage.On("Upload", mock.Anything, "users.enc", mock.Anything).Return(assert.AnError).Once()

	b := NewBackup(storage, "", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())

	b.Notify("users.enc", []byte("x"))
	b.Wait()

	storage.AssertExpectations(t)
	storage.AssertNumberOfCalls(t, "Upload", 1)
}

func TestBackup_Notify_Disabled(t *testing.T) {
	b := NewBackup(nil, "backups", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())

	b.Notify("users.enc", []byte("x"))
	b.Wait()

	_, err := b.Trigger(context.Background())
	require.ErrorIs(t, err, ErrBackupDisabled)
}

func TestBackup_Trigger(t *testing.T) {
	storage := newMemoryStorage()
	b := NewBackup(storage, "nightly", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())
	b.Register(
		staticSnapshot{name: "users.enc", data: []byte("users")},
		staticSnapshot{name: NumbersBackupName, data: []byte("numbers")},
	)

	names, err := b.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users.enc", NumbersBackupName}, names)
	assert.Equal(t, "users", storage.objects["nightly/users.enc"])
	assert.Equal(t, "numbers", storage.objects["nightly/"+NumbersBackupName])
	assert.Len(t, storage.keys(), 4)
}

func TestBackup_Trigger_PartialFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.failOn = NumbersBackupName

	b := NewBackup(storage, "nightly", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())
	b.Register(
		staticSnapshot{name: "users.enc", data: []byte("users")},
		staticSnapshot{name: NumbersBackupName, data: []byte("numbers")},
		staticSnapshot{err: assert.AnError},
	)

	names, err := b.Trigger(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "upload refused")
	assert.Equal(t, []string{"users.enc"}, names)
}

type slowFirstStorage struct {
	*memoryStorage
	delay time.Duration
	once  sync.Once
}

func (s *slowFirstStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	s.once.Do(func() { time.Sleep(s.delay) })
	return s.memoryStorage.Upload(ctx, key, reader)
}

func (m *memoryStorage) historyCount() int {
	n := 0
	for _, k := range m.keys() {
		if strings.Contains(k, "/history/") {
			n++
		}
	}
	return n
}

func TestBackup_Notify_LatestFollowsMutationOrder(t *testing.T) {
	storage := &slowFirstStorage{memoryStorage: newMemoryStorage(), delay: 100 * time.Millisecond}
	b := NewBackup(storage, "p", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())

	b.Notify("users.enc", []byte("v1-before-delete"))
	b.Notify("users.enc", []byte("v2-after-delete"))
	b.Wait()

	assert.Equal(t, "v2-after-delete", storage.objects["p/users.enc"])
	assert.Equal(t, 2, storage.historyCount())
}

type snapshotFunc func(ctx context.Context) (string, []byte, error)

func (f snapshotFunc) Snapshot(ctx context.Context) (string, []byte, error) {
	return f(ctx)
}

func TestBackup_Trigger_KeepsNewerNotification(t *testing.T) {
	storage := newMemoryStorage()
	b := NewBackup(storage, "p", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())
	b.Register(snapshotFunc(func(context.Context) (string, []byte, error) {
		// A mutation lands while the manual snapshot is being taken.
		b.Notify("users.enc", []byte("newer"))
		return "users.enc", []byte("older"), nil
	}))

	names, err := b.Trigger(context.Background())
	require.NoError(t, err)
	b.Wait()

	assert.Equal(t, []string{"users.enc"}, names)
	assert.Equal(t, "newer", storage.objects["p/users.enc"])
	assert.Equal(t, 2, storage.historyCount())
}

func TestBackup_Notify_LaterSnapshotsStillReplaceLatest(t *testing.T) {
	storage := newMemoryStorage()
	b := NewBackup(storage, "p", time.Second, clock.Fake(backupNow), testutil.MakeNoopLogger())
	b.Register(staticSnapshot{name: "users.enc", data: []byte("manual")})

	b.Notify("users.enc", []byte("first"))
	b.Wait()

	_, err := b.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual", storage.objects["p/users.enc"])

	b.Notify("users.enc", []byte("second"))
	b.Wait()
	assert.Equal(t, "second", storage.objects["p/users.enc"])
}
