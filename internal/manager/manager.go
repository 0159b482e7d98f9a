// Package manager implements the CacheManager actor (spec §4.5): the
// single-writer coordinator that owns the SegmentCacheIndex and drives
// every configured external CacheProvider. All index and provider access
// happens on one goroutine, reached only through New's returned Manager's
// exported methods, which marshal work onto a bounded command channel
// and await the result.
package manager

import (
	"context"
	"fmt"
	"time"
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cubedata/segcache/internal/cacheindex"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/rollup"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

const commandQueueDepth = 256

// New builds and starts a Manager. The returned Manager must be closed
// with Close to release its providers and stop its run loop.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil || len(cfg.Providers) == 0 {
		return nil, cerr.NewValidationError(nil, cerr.ErrorCodeInvalidInput, "manager: at least one provider is required").
			WithField("Providers").WithRule("required")
	}

	token := uuid.NewString()
	idx, err := cacheindex.New(&cacheindex.Config{OwnerToken: token, MaxHeaders: cfg.MaxIndexHeaders})
	if err != nil {
		return nil, err
	}

	defaultAgg := cfg.DefaultAggregator
	if defaultAgg == nil {
		defaultAgg = rollup.SumAggregator{}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	m := &Manager{
		token:                token,
		providers:            cfg.Providers,
		index:                idx,
		builder:              rollup.NewBuilder(cfg.RollupDensityThreshold),
		defaultAggregator:    defaultAgg,
		aggregatorsByMeasure: cfg.AggregatorsByMeasure,
		readTimeout:          cfg.ReadTimeout,
		lookupTimeout:        cfg.LookupTimeout,
		writeTimeout:         cfg.WriteTimeout,
		scanTimeout:          cfg.ScanTimeout,
		log:                  log,
		metrics:              cfg.Metrics,
		msgCh:                make(chan msg, commandQueueDepth),
		stopCh:                make(chan struct{}),
		stoppedCh:             make(chan struct{}),
		pending:               make(map[string]weak.Pointer[chan *response]),
		loadWaiters:           make(map[[32]byte][]chan LoadOutcome),
	}

	for _, p := range cfg.Providers {
		p.AddListener(m)
	}

	go m.run()
	return m, nil
}

// run is the manager's single designated goroutine: every cacheindex and
// provider access this package performs happens here, under m.token.
func (m *Manager) run() {
	defer close(m.stoppedCh)
	for {
		if m.metrics != nil {
			m.metrics.QueueDepth.Set(float64(len(m.msgCh)))
		}
		select {
		case <-m.stopCh:
			return
		case envelope := <-m.msgCh:
			switch envelope.kind {
			case msgCommand:
				val, err := envelope.cmd.run(m)
				m.deliver(envelope.cmd.id, &response{value: val, err: err})
				if m.metrics != nil {
					m.metrics.CommandsTotal.WithLabelValues("command").Inc()
				}
			case msgEvent:
				m.handleEvent(envelope.evt)
			case msgLoadEvent:
				m.handleLoadEvent(envelope.load)
			case msgForgetWaiter:
				m.forgetLoadWaiterLocked(envelope.forget.id, envelope.forget.ch)
			}
		}
	}
}

// OnSegmentCacheEvent implements provider.EventListener: a provider push
// notification is queued as a tagged event message (spec §9's "Event as
// tagged variant"), never handled on the calling goroutine.
func (m *Manager) OnSegmentCacheEvent(evt provider.Event) {
	select {
	case m.msgCh <- msg{kind: msgEvent, evt: evt}:
	case <-m.stopCh:
	}
}

// NotifyLoadSucceeded delivers spec §4.5's LoadSucceeded event: a SQL
// loader (an out-of-scope collaborator) completed a load for header.
// The manager installs header in the index, wakes any AwaitLoad callers
// waiting on it, and asynchronously writes body to every configured
// provider. Fire-and-forget: it does not block on the index mutation or
// the provider writes completing.
func (m *Manager) NotifyLoadSucceeded(header *segment.Header, body *segment.Body) {
	select {
	case m.msgCh <- msg{kind: msgLoadEvent, load: &loadEvent{kind: loadSucceeded, header: header, body: body}}:
	case <-m.stopCh:
	}
}

// NotifyLoadFailed delivers spec §4.5's LoadFailed event: no index
// mutation occurs, but any AwaitLoad callers waiting on header are woken
// with cause.
func (m *Manager) NotifyLoadFailed(header *segment.Header, cause error) {
	select {
	case m.msgCh <- msg{kind: msgLoadEvent, load: &loadEvent{kind: loadFailed, header: header, cause: cause}}:
	case <-m.stopCh:
	}
}

// dispatch marshals run onto the command channel and awaits its result
// with the given per-call timeout and budget classification.
func (m *Manager) dispatch(ctx context.Context, timeout time.Duration, kind cerr.TimeoutKind, run func(m *Manager) (any, error)) (any, error) {
	ctx = ctxForDispatch(ctx)

	id := uuid.NewString()
	replyCh := make(chan *response, 1)
	wp := weak.Make(&replyCh)

	m.pendingMu.Lock()
	m.pending[id] = wp
	m.pendingMu.Unlock()
	defer func() {
		m.pendingMu.Lock()
		delete(m.pending, id)
		m.pendingMu.Unlock()
	}()

	cmd := &commandEnvelope{id: id, run: run}
	select {
	case m.msgCh <- msg{kind: msgCommand, cmd: cmd}:
	case <-m.stopCh:
		return nil, fmt.Errorf("manager: closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case r := <-replyCh:
		return r.value, r.err
	case <-waitCtx.Done():
		return nil, cerr.NewTimeoutError("manager", kind, timeout.String())
	}
}

// deliver routes a command's result back to its caller via the
// weak-pointer stash, so an abandoned (timed-out) caller's reply channel
// can be garbage collected instead of leaking in m.pending.
func (m *Manager) deliver(id string, resp *response) {
	m.pendingMu.Lock()
	wp, ok := m.pending[id]
	m.pendingMu.Unlock()
	if !ok {
		return
	}

	chPtr := wp.Value()
	if chPtr == nil {
		return
	}

	select {
	case *chPtr <- resp:
	default:
	}
}

// Close stops the run loop and tears down every configured provider. It
// is safe to call more than once; only the first call has any effect.
func (m *Manager) Close(ctx context.Context) error {
	if !m.closing.CompareAndSwap(false, true) {
		return fmt.Errorf("manager: already closed")
	}

	close(m.stopCh)
	<-m.stoppedCh

	var firstErr error
	for _, p := range m.providers {
		if err := p.TearDown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
