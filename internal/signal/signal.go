// Package signal provides signal-aware contexts for graceful shutdown of
// long-lived streams, notably follow mode tailing a growing log file.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu            sync.Mutex
	blockCount    int
	pendingCancel context.CancelFunc
)

// WithSignalCancel returns a context cancelled when SIGINT or SIGTERM
// arrives. The returned cancel function must be called to release the signal
// handler.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			mu.Lock()
			if blockCount > 0 {
				// A critical section is active; defer the cancellation
				// until it unblocks.
				pendingCancel = cancel
				mu.Unlock()
			} else {
				mu.Unlock()
				cancel()
			}
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// BlockSignals delays signal-based cancellation during a critical section
// (e.g. applying a history database migration). Calls nest.
func BlockSignals() {
	mu.Lock()
	defer mu.Unlock()
	blockCount++
}

// UnblockSignals ends a critical section. A signal received while blocked
// cancels the context now.
func UnblockSignals() {
	mu.Lock()
	defer mu.Unlock()
	if blockCount > 0 {
		blockCount--
	}
	if blockCount == 0 && pendingCancel != nil {
		pendingCancel()
		pendingCancel = nil
	}
}
