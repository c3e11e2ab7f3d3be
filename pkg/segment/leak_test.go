//go:build test

package segment

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bastiangx/weldsplit/pkg/tokens"
)

var leakWelds = []string{
	"123456", "1011", "10111011", "9999",
	strings.Repeat("12", 40),
	strings.Repeat("1", 64),
	strings.Repeat("123", 30) + "7",
}

func leakDict(t *testing.T) *tokens.Dictionary {
	t.Helper()
	d := tokens.New()
	for _, id := range []string{"1", "11", "111", "12", "123", "23", "3", "456", "10", "101", "1011", "99"} {
		if err := d.Add(id, nil); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func heapAlloc() (uint64, int) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m.Alloc, runtime.NumGoroutine()
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, iterations := range []int{100, 1000, 5000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			dict := leakDict(t)
			opts := Options{MaxSteps: 100_000, Timeout: time.Second}
			baseline, baselineGoroutines := heapAlloc()

			for i := 0; i < iterations; i++ {
				for _, weld := range leakWelds {
					_, _ = Solve(context.Background(), Problem{Dict: dict, Weld: weld}, opts)
				}
			}

			final, finalGoroutines := heapAlloc()
			totalOps := iterations * len(leakWelds)
			memPerOp := float64(int64(final)-int64(baseline)) / float64(totalOps)
			t.Logf("iterations=%d ops=%d mem_per_op=%.2f goroutine_delta=%d",
				iterations, totalOps, memPerOp, finalGoroutines-baselineGoroutines)

			if memPerOp > 1000 {
				t.Errorf("excessive retained memory per operation: %.2f bytes", memPerOp)
			}
			if finalGoroutines-baselineGoroutines > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutines-baselineGoroutines)
			}
		})
	}
}

// The dictionary is shared read-only across workers.
func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			memFile, err := os.CreateTemp(t.TempDir(), "concurrent_memory_*.prof")
			if err != nil {
				t.Fatalf("profile file creation failed: %v", err)
			}
			defer memFile.Close()

			dict := leakDict(t)
			want, err := Solve(context.Background(), Problem{Dict: dict, Weld: leakWelds[4]}, Options{})
			if err != nil {
				t.Fatal(err)
			}
			baseline, baselineGoroutines := heapAlloc()

			var (
				wg       sync.WaitGroup
				totalOps atomic.Int64
				mismatch atomic.Int64
			)
			for w := 0; w < config.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < config.iterationsPerWorker; i++ {
						for _, weld := range leakWelds {
							res, err := Solve(context.Background(), Problem{Dict: dict, Weld: weld}, Options{MaxSteps: 100_000})
							totalOps.Add(1)
							if weld == leakWelds[4] && (err != nil || res.Best.Join() != want.Best.Join() || len(res.Best) != len(want.Best)) {
								mismatch.Add(1)
							}
						}
					}
				}()
			}
			wg.Wait()

			final, finalGoroutines := heapAlloc()
			memPerOp := float64(int64(final)-int64(baseline)) / float64(totalOps.Load())
			t.Logf("workers=%d ops=%d mem_per_op=%.2f goroutine_delta=%d",
				config.workers, totalOps.Load(), memPerOp, finalGoroutines-baselineGoroutines)

			if err := pprof.WriteHeapProfile(memFile); err != nil {
				t.Errorf("heap profile write failed: %v", err)
			}
			if n := mismatch.Load(); n > 0 {
				t.Errorf("%d concurrent solves disagreed with the sequential result", n)
			}
			if memPerOp > 1000 {
				t.Errorf("excessive retained memory per operation: %.2f bytes", memPerOp)
			}
			if finalGoroutines-baselineGoroutines > 3 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutines-baselineGoroutines)
			}
		})
	}
}
