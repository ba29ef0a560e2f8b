// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"
	"time"
)

// SwapRetryDelay controls the base delay between swap attempts when the
// live database is transiently locked by a reader. Tests override this
// to avoid real sleeps.
var SwapRetryDelay = 200 * time.Millisecond

const swapRetries = 10

// SwapDatabase moves a freshly built database over the live path. The
// live file may be transiently held by readers, so every file operation
// is retried with a growing delay; after exhaustion the error reports
// the database as in use. The main rename is atomic, so readers never
// observe a half-swapped state.
func SwapDatabase(buildPath, livePath string) error {
	// WAL sidecars of the live database are stale after the swap.
	for _, side := range []string{"-wal", "-shm"} {
		if err := removeWithRetry(livePath + side); err != nil {
			return err
		}
	}

	if err := withRetry(fmt.Sprintf("replacing %s", livePath), func() error {
		return os.Rename(buildPath, livePath)
	}); err != nil {
		return err
	}

	// Carry over the build's sidecars if its final checkpoint left any.
	for _, side := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(buildPath + side); err != nil {
			continue
		}
		if err := withRetry(fmt.Sprintf("moving %s", buildPath+side), func() error {
			return os.Rename(buildPath+side, livePath+side)
		}); err != nil {
			return err
		}
	}
	return nil
}

func removeWithRetry(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return withRetry(fmt.Sprintf("removing %s", path), func() error {
		return os.Remove(path)
	})
}

func withRetry(desc string, fn func() error) error {
	var last error
	for attempt := 0; attempt < swapRetries; attempt++ {
		if err := fn(); err != nil {
			last = err
			time.Sleep(time.Duration(attempt+1) * SwapRetryDelay)
			continue
		}
		return nil
	}
	return fmt.Errorf("%s: database appears to be in use: %w", desc, last)
}
