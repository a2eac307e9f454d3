package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/inovacc/gitroster/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Name:       "sample-repo",
			URL:        "https://example.com/sample-repo.git",
			LocalPath:  "/home/u/Git/sample-repo",
			Status:     model.StatusUpToDate,
			Branch:     "main",
			LastCommit: "Fix: handle \"quoted\" messages: yes",
		},
		{
			Name:      "tool",
			URL:       "git@github.com:owner/tool.git",
			LocalPath: "/home/u/Git/tool",
			Status:    model.StatusNotCloned,
		},
		{
			Name:      "broken",
			URL:       "https://unreachable.invalid/broken.git",
			LocalPath: "/home/u/Git/broken",
			Status:    model.StatusError,
		},
	}
}

func backends(t *testing.T) map[string]func(path string) Store {
	t.Helper()

	return map[string]func(path string) Store{
		BackendFile: func(path string) Store {
			return NewFile(path)
		},
		BackendBolt: func(path string) Store {
			st, err := NewBolt(path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })

			return st
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))

			want := sampleRecords()
			require.NoError(t, st.Save(want))

			got, err := st.Load()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))

			_, err := st.Load()
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SavedAt(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))

			_, err := st.SavedAt()
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Save(sampleRecords()))

			savedAt, err := st.SavedAt()
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now(), savedAt, 5*time.Second)
		})
	}
}

func TestStore_SaveEmptyThenLoad(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))

			require.NoError(t, st.Save(nil))

			got, err := st.Load()
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStore_SaveShrinks(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))

			records := sampleRecords()
			require.NoError(t, st.Save(records))
			require.NoError(t, st.Save(records[1:2]))

			got, err := st.Load()
			require.NoError(t, err)
			assert.Equal(t, records[1:2], got)
		})
	}
}

func TestStore_ConcurrentSaves(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(filepath.Join(t.TempDir(), DefaultFileName(name)))
			records := sampleRecords()

			var wg sync.WaitGroup

			for i := range 20 {
				wg.Add(1)

				go func(n int) {
					defer wg.Done()
					assert.NoError(t, st.Save(records[:n%len(records)+1]))
				}(i)
			}

			wg.Wait()

			got, err := st.Load()
			require.NoError(t, err)
			assert.NotEmpty(t, got)
			assert.Equal(t, records[:len(got)], got)
		})
	}
}

func TestFile_EmptyFileIsEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repositories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	got, err := NewFile(path).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repositories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repositories: [\n  - name: x\n"), 0o600))

	_, err := NewFile(path).Load()
	assert.ErrorIs(t, err, ErrStoreIO)
}

func TestFile_UnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repositories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repositories:\n  - name: x\n    status: Cloned\n"), 0o600))

	_, err := NewFile(path).Load()
	assert.ErrorIs(t, err, ErrStoreIO)
}

func TestFile_HumanReadableAndNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repositories.yaml")

	require.NoError(t, NewFile(path).Save(sampleRecords()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "repositories:")
	assert.Contains(t, text, "name: sample-repo")
	assert.Contains(t, text, "local_path: /home/u/Git/sample-repo")
	assert.Contains(t, text, "status: UpToDate")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.HasSuffix(entries[0].Name(), ".tmp"))
}

func TestFile_SaveFailsKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repositories.yaml")
	st := NewFile(path)

	require.NoError(t, st.Save(sampleRecords()))

	// The parent directory does not exist, so the temp file cannot be created.
	broken := NewFile(filepath.Join(dir, "missing", "repositories.yaml"))
	err := broken.Save(sampleRecords()[:1])
	assert.ErrorIs(t, err, ErrStoreIO)

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(BackendFile, filepath.Join(dir, "nested", "repositories.yaml"))
	require.NoError(t, err)
	assert.IsType(t, &File{}, st)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	bst, err := Open(BackendBolt, filepath.Join(dir, "repositories.db"))
	require.NoError(t, err)
	assert.IsType(t, &Bolt{}, bst)
	require.NoError(t, bst.Close())

	_, err = Open("sqlite", filepath.Join(dir, "x"))
	assert.Error(t, err)
}
