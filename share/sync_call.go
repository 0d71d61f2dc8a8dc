package hpshare

import (
	"sync"
)

type CallFn func() error

// SyncCall executes all functions in parallel, waits for them to finish
// and returns the combined error.
func SyncCall(fns ...CallFn) error {
	var wg = sync.WaitGroup{}
	wg.Add(len(fns))
	var errs ErrorCollector

	for _, currFn := range fns {
		fn := currFn
		go func() {
			defer wg.Done()
			errs.Add(fn())
		}()
	}

	wg.Wait()

	return errs.Combine()
}
