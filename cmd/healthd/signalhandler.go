package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/vitaliisemenov/healthd/internal/supervisor"
)

// signalHandler listens for SIGHUP and triggers a hot reload of the
// silencers file plus every host's pending-transition state, adapted from
// cmd/server/signal.go's debounced reload worker (dropping the
// config-version/rollback machinery that package built around a dynamic
// HTTP config API this engine doesn't have).
type signalHandler struct {
	loop   *supervisor.MainLoop
	logger *slog.Logger

	lastReloadTime atomic.Value
	debounceWindow time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	sigChan    chan os.Signal
	reloadChan chan struct{}
}

func newSignalHandler(loop *supervisor.MainLoop, logger *slog.Logger) *signalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &signalHandler{
		loop:           loop,
		logger:         logger,
		debounceWindow: time.Second,
		ctx:            ctx,
		cancel:         cancel,
		sigChan:        make(chan os.Signal, 1),
		reloadChan:     make(chan struct{}, 1),
	}
}

func (h *signalHandler) start() {
	signal.Notify(h.sigChan, syscall.SIGHUP)

	h.wg.Add(2)
	go h.listen()
	go h.work()
}

func (h *signalHandler) stop() {
	signal.Stop(h.sigChan)
	close(h.sigChan)
	h.cancel()
	h.wg.Wait()
}

func (h *signalHandler) listen() {
	defer h.wg.Done()
	for {
		select {
		case sig, ok := <-h.sigChan:
			if !ok {
				return
			}
			h.logger.Info("received signal", "signal", sig.String())
			select {
			case h.reloadChan <- struct{}{}:
			default:
				h.logger.Warn("reload already queued, skipping duplicate signal")
			}
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *signalHandler) work() {
	defer h.wg.Done()
	for {
		select {
		case <-h.reloadChan:
			if h.debounced() {
				h.logger.Debug("reload debounced")
				continue
			}
			h.lastReloadTime.Store(time.Now())
			h.reload()
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *signalHandler) debounced() bool {
	v := h.lastReloadTime.Load()
	if v == nil {
		return false
	}
	return time.Since(v.(time.Time)) < h.debounceWindow
}

func (h *signalHandler) reload() {
	start := time.Now()
	if err := h.loop.ReloadSilencers(); err != nil {
		h.logger.Error("silencer reload failed", "error", err)
		return
	}
	h.loop.ReloadHosts()
	h.logger.Info("reload completed", "duration_ms", time.Since(start).Milliseconds())
}
