package database

import (
	"context"
	"sync"
	"time"
)

// Pinger is implemented by every client in this package.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency concurrently and reports "ok" or the error
// text per name. ready is false when any check failed.
func CheckAll(ctx context.Context, timeout time.Duration, deps ...Pinger) (status map[string]string, ready bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	status = make(map[string]string, len(deps))
	ready = true

	for _, dep := range deps {
		wg.Add(1)
		go func(dep Pinger) {
			defer wg.Done()
			err := dep.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status[dep.Name()] = err.Error()
				ready = false
				return
			}
			status[dep.Name()] = "ok"
		}(dep)
	}
	wg.Wait()
	return status, ready
}
