package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "export.conll")
	require.NoError(t, Write(ctx, path, []byte("first"), false))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(DefaultFileCreationPerm), info.Mode().Perm())

	err = Write(ctx, path, []byte("second"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	require.NoError(t, Write(ctx, path, []byte("second"), true))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary and lock files must be cleaned up")
}

func TestWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "export.json")
	err := Write(ctx, path, []byte("x"), false)
	assert.True(t, errors.Is(err, context.Canceled))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteWaitsForLock(t *testing.T) {
	saved := lockPollInterval
	lockPollInterval = 5 * time.Millisecond
	defer func() { lockPollInterval = saved }()

	path := filepath.Join(t.TempDir(), "export.csv")
	held := flock.New(path + ".lock")
	require.NoError(t, held.Lock())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := Write(ctx, path, []byte("x"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	done := make(chan error, 1)
	go func() { done <- Write(context.Background(), path, []byte("after unlock"), false) }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, held.Unlock())
	require.NoError(t, <-done)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after unlock", string(got))
}

func TestConcurrentWrites(t *testing.T) {
	saved := lockPollInterval
	lockPollInterval = time.Millisecond
	defer func() { lockPollInterval = saved }()

	path := filepath.Join(t.TempDir(), "export.parquet")
	var wg sync.WaitGroup
	contents := make(map[string]bool)
	for i := range 8 {
		content := fmt.Sprintf("writer-%d", i)
		contents[content] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Write(context.Background(), path, []byte(content), true))
		}()
	}
	wg.Wait()
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, contents[string(got)], "unexpected content %q", got)
}
