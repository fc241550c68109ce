package disect

import "sync"

// task splits an index range into contiguous chunks across workers. Force
// accumulation writes only to the index it is handed, so chunks never
// overlap and the result is independent of the worker count.
func task(workersCount, count int, fn func(i int)) {
	var wg sync.WaitGroup
	chunkSize := (count + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		end := min(start+chunkSize, count)
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
