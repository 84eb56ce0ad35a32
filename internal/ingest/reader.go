package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shanmuk27/smart-dustbin/internal/serialport"
	"github.com/shanmuk27/smart-dustbin/internal/status"
	"go.uber.org/zap"
)

const (
	// heartbeatToken is the liveness-only line the firmware sends; it
	// refreshes last-seen but never reaches attribution.
	heartbeatToken = "hb"

	defaultStaleAfter     = 15 * time.Second
	defaultReconnectDelay = 5 * time.Second
	defaultReadTimeout    = time.Second
)

type lineProcessor interface {
	Process(ctx context.Context, raw string) error
}

// Reader is the long-lived ingestion loop: it keeps the serial connection
// to the dustbin alive, frames newline-delimited messages, and hands
// classification lines to the attributor. It retries forever with a fixed
// backoff and only stops when its context is cancelled.
type Reader struct {
	open      serialport.Opener
	processor lineProcessor
	tracker   *status.Tracker
	logger    *zap.Logger

	staleAfter     time.Duration
	reconnectDelay time.Duration
	readTimeout    time.Duration
}

func NewReader(open serialport.Opener, processor lineProcessor, tracker *status.Tracker, logger *zap.Logger) *Reader {
	return &Reader{
		open:           open,
		processor:      processor,
		tracker:        tracker,
		logger:         logger,
		staleAfter:     defaultStaleAfter,
		reconnectDelay: defaultReconnectDelay,
		readTimeout:    defaultReadTimeout,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) {
	r.logger.Info("ingestion loop started")
	for {
		if ctx.Err() != nil {
			r.logger.Info("ingestion loop stopped")
			return
		}

		port, err := r.open()
		if err != nil {
			r.tracker.SetState(status.Offline)
			r.logger.Warn("dustbin not reachable, retrying", zap.Error(err))
			if !sleepCtx(ctx, r.reconnectDelay) {
				return
			}
			continue
		}

		r.tracker.Touch(time.Now())
		r.logger.Info("dustbin connected")

		err = r.readLines(ctx, port)
		port.Close()

		switch {
		case ctx.Err() != nil:
			r.logger.Info("ingestion loop stopped")
			return
		case err == nil:
			// Stale connection; reconnect immediately.
		default:
			r.tracker.SetState(status.Error)
			r.logger.Error("dustbin read failure", zap.Error(err))
			if !sleepCtx(ctx, r.reconnectDelay) {
				return
			}
		}
	}
}

// readLines consumes the open port until the context is cancelled, a read
// fails, or no line (heartbeat included) arrives within the staleness
// window. A nil return means stale: the caller should reconnect.
func (r *Reader) readLines(ctx context.Context, port serialport.Port) error {
	if err := port.SetReadTimeout(r.readTimeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	buf := make([]byte, 256)
	var pending []byte
	lastSeen := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := port.Read(buf)
		if err != nil {
			return fmt.Errorf("failed to read from serial port: %w", err)
		}

		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimSpace(string(pending[:i]))
			pending = pending[i+1:]
			if line == "" {
				continue
			}

			lastSeen = time.Now()
			r.tracker.Touch(lastSeen)
			if line == heartbeatToken {
				continue
			}

			r.logger.Info("received classification line", zap.String("line", line))
			if perr := r.processor.Process(ctx, line); perr != nil {
				r.logger.Warn("dropping classification line",
					zap.String("line", line),
					zap.Error(perr),
				)
			}
		}

		if time.Since(lastSeen) > r.staleAfter {
			r.tracker.SetState(status.Offline)
			r.logger.Warn("dustbin connection timed out (no heartbeat)")
			return nil
		}
	}
}

// sleepCtx waits for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
