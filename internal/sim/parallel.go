package sim

import (
	"runtime"
	"sync"
)

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	neighbors []uint32
}

// dispatcher runs one pass over n work items split into contiguous chunks,
// one goroutine per chunk. run returns only after every chunk finished,
// which is the barrier between passes.
type dispatcher struct {
	workers   int
	scratches []workerScratch
}

func newDispatcher(workers int) *dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].neighbors = make([]uint32, 0, 64)
	}
	return &dispatcher{workers: workers, scratches: scratches}
}

func (d *dispatcher) run(n int, fn func(i0, i1 int, scratch *workerScratch)) {
	if n <= 0 {
		return
	}
	if d.workers == 1 || n == 1 {
		fn(0, n, &d.scratches[0])
		return
	}

	chunkSize := (n + d.workers - 1) / d.workers

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(workerID, i0, i1 int) {
			defer wg.Done()
			fn(i0, i1, &d.scratches[workerID])
		}(w, start, end)
	}
	wg.Wait()
}
