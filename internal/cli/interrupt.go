package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// InterruptHandler cancels a batch run on SIGINT or SIGTERM and reports
// how far it got.
type InterruptHandler struct {
	writer      io.Writer
	cancel      context.CancelFunc
	total       int
	processed   atomic.Int64
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler writing to writer
// (stderr when nil).
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context canceled on the first interrupt, along
// with a stop function that releases the signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, total int) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.total = total

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// Progress records one processed transaction.
func (h *InterruptHandler) Progress() {
	h.processed.Add(1)
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	first := !h.interrupted
	h.interrupted = true
	h.mu.Unlock()

	if first {
		h.showInterruptMessage()
	}
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning("Processing interrupted!")
	if h.total > 0 {
		msg += "\n" + FormatInfo(fmt.Sprintf("%d of %d transactions processed; no output was written",
			h.processed.Load(), h.total))
	}
	msg += "\n" + FormatInfo("Corrections and model updates saved so far are kept") + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted reports whether an interrupt was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
