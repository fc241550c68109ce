package disect

import (
	"sync/atomic"
	"testing"
)

func TestTaskCoversEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 7} {
		counts := make([]int32, 100)
		task(workers, len(counts), func(i int) {
			atomic.AddInt32(&counts[i], 1)
		})

		for i, c := range counts {
			if c != 1 {
				t.Errorf("workers=%d index %d visited %d times", workers, i, c)
			}
		}
	}
}

func TestTaskMoreWorkersThanWork(t *testing.T) {
	visited := make([]bool, 3)
	task(16, len(visited), func(i int) {
		visited[i] = true
	})

	for i, v := range visited {
		if !v {
			t.Errorf("index %d not visited", i)
		}
	}
}

func TestTaskEmptyRange(t *testing.T) {
	called := false
	task(4, 0, func(i int) { called = true })

	if called {
		t.Error("no work expected for an empty range")
	}
}
