package filetask

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/process/processtest"
)

// Records how often each path was processed and the peak concurrency.
type recorder struct {
	mu      sync.Mutex
	counts  map[string]int
	active  atomic.Int32
	peak    atomic.Int32
	fail    map[string]int
	delay   map[string]time.Duration
	settled atomic.Int32
}

func newRecorder() *recorder {
	return &recorder{
		counts: make(map[string]int),
		fail:   make(map[string]int),
		delay:  make(map[string]time.Duration),
	}
}

func (r *recorder) op(ctx context.Context, path string) (int, error) {
	n := r.active.Add(1)
	for {
		peak := r.peak.Load()
		if n <= peak || r.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	defer r.active.Add(-1)

	r.mu.Lock()
	r.counts[path]++
	code := r.fail[path]
	delay := r.delay[path]
	r.mu.Unlock()

	time.Sleep(delay)
	r.settled.Add(1)
	return code, nil
}

func fileNames(n int) []string {
	files := make([]string, n)
	for i := range files {
		files[i] = fmt.Sprintf("src/file%02d.cpp", i)
	}
	return files
}

func TestRunCompleteness(t *testing.T) {
	const n = 12
	files := fileNames(n)

	for _, workers := range []int{1, 2, 3, 5, n, n + 4, 0} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			rec := newRecorder()
			for _, f := range files {
				rec.delay[f] = time.Millisecond
			}

			agg := NewRunner(workers).Run(context.Background(), files, rec.op)

			require.True(t, agg.Ok())
			assert.NoError(t, agg.Err())
			assert.Equal(t, n, agg.Discovered)
			assert.Equal(t, n, agg.Completed)
			assert.Len(t, agg.Tasks, n)
			assert.Len(t, rec.counts, n)
			for _, f := range files {
				assert.Equal(t, 1, rec.counts[f], "operation count for %s", f)
			}
			if workers > 0 {
				assert.LessOrEqual(t, int(rec.peak.Load()), workers)
			}
		})
	}
}

func TestRunEmpty(t *testing.T) {
	agg := NewRunner(4).Run(context.Background(), nil, func(context.Context, string) (int, error) {
		t.Fatal("operation called without files")
		return 0, nil
	})
	assert.True(t, agg.Ok())
	assert.Zero(t, agg.Completed)
}

func TestRunFailFastButDrain(t *testing.T) {
	files := []string{"src/one.cpp", "src/two.cpp", "src/three.cpp"}

	rec := newRecorder()
	rec.fail["src/two.cpp"] = 1
	rec.delay["src/one.cpp"] = 50 * time.Millisecond
	rec.delay["src/three.cpp"] = 80 * time.Millisecond

	agg := NewRunner(3).Run(context.Background(), files, rec.op)

	require.False(t, agg.Ok())
	first := agg.FirstFailure()
	require.NotNil(t, first)
	assert.Equal(t, "src/two.cpp", first.Path)
	assert.Equal(t, 1, first.ExitCode)

	assert.Equal(t, 3, agg.Completed)
	assert.Equal(t, 1, agg.Failures)
	assert.EqualValues(t, 3, rec.settled.Load(), "every operation finished before Run returned")
	assert.Equal(t, 1, rec.counts["src/one.cpp"])
	assert.Equal(t, 1, rec.counts["src/three.cpp"])

	var aerr *fault.AggregateError
	require.ErrorAs(t, agg.Err(), &aerr)
	assert.Equal(t, "src/two.cpp", aerr.Path)
	assert.Equal(t, 1, aerr.ExitCode)
	assert.Equal(t, 1, fault.ExitCode(agg.Err()))
}

func TestRunFirstFailureInCompletionOrder(t *testing.T) {
	files := []string{"slow.cpp", "fast.cpp"}

	rec := newRecorder()
	rec.fail["slow.cpp"] = 3
	rec.fail["fast.cpp"] = 4
	rec.delay["slow.cpp"] = 100 * time.Millisecond

	agg := NewRunner(2).Run(context.Background(), files, rec.op)

	require.False(t, agg.Ok())
	assert.Equal(t, "fast.cpp", agg.FirstFailure().Path)
	assert.Equal(t, 4, agg.FirstFailure().ExitCode)
	assert.Equal(t, 2, agg.Failures)
}

func TestRunLaunchError(t *testing.T) {
	launch := errors.New("permission denied")
	op := func(ctx context.Context, path string) (int, error) {
		if path == "b.cpp" {
			return -1, launch
		}
		return 0, nil
	}

	agg := NewRunner(1).Run(context.Background(), []string{"a.cpp", "b.cpp", "c.cpp"}, op)

	require.False(t, agg.Ok())
	assert.Equal(t, 3, agg.Completed)
	err := agg.Err()
	require.ErrorIs(t, err, fault.ErrAggregateFailure)
	require.ErrorIs(t, err, launch)
	assert.Equal(t, fault.ExitFailure, fault.ExitCode(err))
}

func TestRunAllFormatScenario(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "file1.cpp", "file2.cpp", "file3.hpp", "CMakeLists.txt")

	file2 := filepath.Join(root, "file2.cpp")
	fake := processtest.New(processtest.Rule{Prefix: "clang-format -i " + file2, ExitCode: 1})

	op := Command(fake, func(path string) []string {
		return []string{"clang-format", "-i", path, "-style=file"}
	})

	agg, err := NewRunner(0).RunAll(context.Background(), root, []string{"cpp", "hpp"}, op)
	require.NoError(t, err)

	require.False(t, agg.Ok())
	assert.Equal(t, file2, agg.FirstFailure().Path)
	assert.Equal(t, 1, agg.FirstFailure().ExitCode)
	assert.Equal(t, 3, agg.Discovered)
	assert.Equal(t, 3, agg.Completed)

	assert.ElementsMatch(t, []string{
		"clang-format -i " + filepath.Join(root, "file1.cpp") + " -style=file",
		"clang-format -i " + file2 + " -style=file",
		"clang-format -i " + filepath.Join(root, "file3.hpp") + " -style=file",
	}, fake.Lines())
	for _, c := range fake.Calls() {
		assert.True(t, c.FailOnNonZero)
	}
}

func TestRunAllDiscoveryError(t *testing.T) {
	_, err := NewRunner(1).RunAll(context.Background(), filepath.Join(t.TempDir(), "absent"), []string{"cpp"}, nil)
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := processtest.New(processtest.Rule{Prefix: "tidy", Delay: time.Second})
	op := Command(fake, func(path string) []string { return []string{"tidy", path} })

	agg := NewRunner(2).Run(ctx, []string{"a.cpp", "b.cpp"}, op)

	require.False(t, agg.Ok())
	assert.Equal(t, 2, agg.Completed)
	require.ErrorIs(t, agg.Err(), context.Canceled)
}
