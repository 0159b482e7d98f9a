package manager

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/rollup"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

// getOutcome is Get's dispatch payload: Body is nil when Found is false,
// matching provider.GetResult's own absence-is-not-an-error convention.
type getOutcome struct {
	body  *segment.Body
	found bool
}

// Locate implements the locate query (spec §4.3(a)): exact-dimensionality
// candidates under bitKey whose coordinates and compound predicates match.
func (m *Manager) Locate(
	ctx context.Context,
	provenance segment.Provenance,
	bitKey bitkey.BitKey,
	coords map[string]segment.Value,
	compoundPredicates []string,
) ([]*segment.Header, error) {
	val, err := m.dispatch(ctx, m.lookupTimeout, cerr.TimeoutKindLookup, func(m *Manager) (any, error) {
		return m.index.Locate(m.token, provenance, bitKey, coords, compoundPredicates)
	})
	if err != nil {
		return nil, err
	}
	return val.([]*segment.Header), nil
}

// FlushRegion implements the region-targeted eviction (spec §4.3(b)):
// every header intersecting region is removed from both the index and
// every configured provider. Returns the number of headers flushed.
func (m *Manager) FlushRegion(ctx context.Context, provenance segment.Provenance, region []segment.Column) (int, error) {
	val, err := m.dispatch(ctx, m.scanTimeout, cerr.TimeoutKindScan, func(m *Manager) (any, error) {
		headers, err := m.index.IntersectRegion(m.token, provenance, region)
		if err != nil {
			return nil, err
		}

		for _, h := range headers {
			if err := m.removeFromProvidersLocked(ctx, h); err != nil {
				m.log.Warnw("flushRegion: provider removal failed", "header", h.UniqueIDHex(), "error", err)
			}
			if _, err := m.index.Remove(m.token, h); err != nil {
				m.log.Warnw("flushRegion: index removal failed", "header", h.UniqueIDHex(), "error", err)
			}
		}

		if m.metrics != nil {
			m.metrics.IndexHeaders.Set(float64(m.index.Len()))
		}
		return len(headers), nil
	})
	if err != nil {
		return 0, err
	}
	return val.(int), nil
}

// Put admits (header, body) into every configured provider, then into the
// index, matching the SegmentAdd event's semantics (spec §4.5) but as a
// synchronous command rather than a fire-and-forget notification.
func (m *Manager) Put(ctx context.Context, header *segment.Header, body *segment.Body) error {
	_, err := m.dispatch(ctx, m.writeTimeout, cerr.TimeoutKindWrite, func(m *Manager) (any, error) {
		if err := m.putToProvidersLocked(ctx, header, body); err != nil {
			return nil, err
		}
		if _, err := m.index.Add(m.token, header); err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.IndexHeaders.Set(float64(m.index.Len()))
		}
		return nil, nil
	})
	return err
}

// Remove evicts header from every configured provider and from the index.
func (m *Manager) Remove(ctx context.Context, header *segment.Header) error {
	_, err := m.dispatch(ctx, m.writeTimeout, cerr.TimeoutKindWrite, func(m *Manager) (any, error) {
		if err := m.removeFromProvidersLocked(ctx, header); err != nil {
			return nil, err
		}
		_, err := m.index.Remove(m.token, header)
		if m.metrics != nil {
			m.metrics.IndexHeaders.Set(float64(m.index.Len()))
		}
		return nil, err
	})
	return err
}

// Get returns header's body, consulting every provider in configuration
// order and falling back to a SegmentBuilder rollup from a cached
// higher-dimensionality ancestor (spec §4.4) when no provider has header
// directly. Concurrent Get calls for the same header are coalesced so a
// cache-miss storm triggers one rollup, not one per caller.
func (m *Manager) Get(ctx context.Context, header *segment.Header) (*segment.Body, bool, error) {
	v, err, _ := m.sf.Do(header.UniqueIDHex(), func() (any, error) {
		return m.dispatch(ctx, m.readTimeout, cerr.TimeoutKindRead, func(m *Manager) (any, error) {
			return m.getOrRollupLocked(ctx, header)
		})
	})
	if err != nil {
		return nil, false, err
	}
	outcome := v.(getOutcome)
	return outcome.body, outcome.found, nil
}

// getOrRollupLocked runs on the manager's single goroutine: it is the
// command closure behind Get.
func (m *Manager) getOrRollupLocked(ctx context.Context, header *segment.Header) (any, error) {
	body, found, err := m.fetchFromProvidersLocked(ctx, header)
	if err != nil {
		return nil, err
	}
	if found {
		return getOutcome{body: body, found: true}, nil
	}

	candidates, err := m.index.FindRollupCandidates(m.token, header.Provenance(), header.ConstrainedColsBitKey, coordsFromHeader(header))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return getOutcome{}, nil
	}

	ancestor := candidates[0]
	ancestorBody, found, err := m.fetchFromProvidersLocked(ctx, ancestor)
	if err != nil {
		return nil, err
	}
	if !found {
		return getOutcome{}, nil
	}

	keep := make(map[string]bool, len(header.ConstrainedColumns))
	for _, col := range header.ConstrainedColumns {
		keep[col.Expr()] = true
	}

	agg := m.aggregatorFor(header.MeasureName)
	rolledHeader, rolledBody := m.builder.Rollup(
		[]rollup.Input{{Header: ancestor, Body: ancestorBody}},
		keep, header.ConstrainedColsBitKey, agg,
	)
	if m.metrics != nil {
		m.metrics.RollupsTotal.Inc()
	}

	if _, err := m.index.Add(m.token, rolledHeader); err != nil {
		m.log.Warnw("rollup: failed to admit synthesized header into index", "error", err)
	}
	if err := m.putToProvidersLocked(ctx, rolledHeader, rolledBody); err != nil {
		m.log.Warnw("rollup: failed to admit synthesized body into providers", "error", err)
	}

	return getOutcome{body: rolledBody, found: true}, nil
}

// coordsFromHeader derives the single-valued-column coordinates
// FindRollupCandidates needs from header's own predicate. Multi-valued
// (range) and wildcard columns carry no single coordinate and are
// omitted, matching locate's own treatment of an absent coordinate as
// "unconstrained on that axis".
func coordsFromHeader(h *segment.Header) map[string]segment.Value {
	coords := make(map[string]segment.Value, len(h.ConstrainedColumns))
	for _, col := range h.ConstrainedColumns {
		if col.IsWildcard() {
			continue
		}
		if values := col.Values(); len(values) == 1 {
			coords[col.Expr()] = values[0]
		}
	}
	return coords
}

// fetchFromProvidersLocked scans the configured providers in order,
// returning the first hit. A provider error (timeout or failure) is
// surfaced to the caller immediately rather than masked as a miss (spec
// §7: timeouts and provider failures are recoverable but reported, never
// silently swallowed on the command path).
func (m *Manager) fetchFromProvidersLocked(ctx context.Context, header *segment.Header) (*segment.Body, bool, error) {
	for _, p := range m.providers {
		res, err := p.Get(ctx, header).Await(ctx, m.readTimeout, p.Name(), cerr.TimeoutKindRead)
		if err != nil {
			if m.metrics != nil && cerr.IsTimeoutError(err) {
				m.metrics.ProviderTimeouts.WithLabelValues(p.Name(), string(cerr.TimeoutKindRead)).Inc()
			}
			m.log.Warnw("provider get failed", "provider", p.Name(), "header", header.UniqueIDHex(), "error", err)
			return nil, false, err
		}
		if m.metrics != nil {
			m.metrics.ProviderCalls.WithLabelValues(p.Name(), "get").Inc()
		}
		if res.Found {
			return res.Body, true, nil
		}
	}
	return nil, false, nil
}

// putToProvidersLocked fans the write out to every provider concurrently
// and joins before returning, per SPEC_FULL.md §4.5's errgroup wiring.
func (m *Manager) putToProvidersLocked(ctx context.Context, header *segment.Header, body *segment.Body) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range m.providers {
		p := p
		g.Go(func() error {
			_, err := p.Put(gctx, header, body).Await(gctx, m.writeTimeout, p.Name(), cerr.TimeoutKindWrite)
			if err != nil {
				return err
			}
			if m.metrics != nil {
				m.metrics.ProviderCalls.WithLabelValues(p.Name(), "put").Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// removeFromProvidersLocked fans header's removal out to every provider
// concurrently and joins before returning.
func (m *Manager) removeFromProvidersLocked(ctx context.Context, header *segment.Header) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range m.providers {
		p := p
		g.Go(func() error {
			_, err := p.Remove(gctx, header).Await(gctx, m.writeTimeout, p.Name(), cerr.TimeoutKindWrite)
			if err != nil {
				return err
			}
			if m.metrics != nil {
				m.metrics.ProviderCalls.WithLabelValues(p.Name(), "remove").Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// AwaitLoad blocks until header's in-flight SQL load completes via
// NotifyLoadSucceeded/NotifyLoadFailed, or ctx is done (spec §4.5's
// "notifies any waiters"). A caller that misses on Get is expected to
// trigger its own load against the out-of-scope SQL subsystem and then
// call AwaitLoad to block for that load's eventual outcome.
func (m *Manager) AwaitLoad(ctx context.Context, header *segment.Header) (*segment.Body, error) {
	id := header.UniqueID()

	val, err := m.dispatch(ctx, 0, cerr.TimeoutKindRead, func(m *Manager) (any, error) {
		return m.registerLoadWaiterLocked(id), nil
	})
	if err != nil {
		return nil, err
	}
	ch := val.(chan LoadOutcome)

	select {
	case outcome := <-ch:
		return outcome.Body, outcome.Err
	case <-ctx.Done():
		m.forgetLoadWaiter(id, ch)
		return nil, ctx.Err()
	}
}

func (m *Manager) registerLoadWaiterLocked(id [32]byte) chan LoadOutcome {
	ch := make(chan LoadOutcome, 1)
	m.loadWaiters[id] = append(m.loadWaiters[id], ch)
	return ch
}

// forgetLoadWaiter removes ch from id's waiter list. It is fire-and-forget
// (like OnSegmentCacheEvent) rather than routed through dispatch, since
// by the time it's called the caller's own ctx is already done and a
// dispatch keyed to that ctx would fail before reaching the run loop.
func (m *Manager) forgetLoadWaiter(id [32]byte, ch chan LoadOutcome) {
	select {
	case m.msgCh <- msg{kind: msgForgetWaiter, forget: &forgetWaiter{id: id, ch: ch}}:
	case <-m.stopCh:
	}
}

func (m *Manager) forgetLoadWaiterLocked(id [32]byte, ch chan LoadOutcome) {
	waiters := m.loadWaiters[id]
	for i, w := range waiters {
		if w == ch {
			m.loadWaiters[id] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(m.loadWaiters[id]) == 0 {
		delete(m.loadWaiters, id)
	}
}

// handleLoadEvent applies a SQL loader's completion notification (spec
// §4.5's LoadSucceeded/LoadFailed): on success the segment is admitted
// into the index and fanned out to every provider; either way, every
// caller parked in AwaitLoad for this header is woken.
func (m *Manager) handleLoadEvent(evt *loadEvent) {
	id := evt.header.UniqueID()
	waiters := m.loadWaiters[id]
	delete(m.loadWaiters, id)

	var outcome LoadOutcome
	var kind string

	switch evt.kind {
	case loadSucceeded:
		kind = "load_succeeded"
		outcome = LoadOutcome{Body: evt.body}

		if _, err := m.index.Add(m.token, evt.header); err != nil {
			m.log.Errorw("load: failed to admit segment into index", "error", err)
		}
		if m.metrics != nil {
			m.metrics.IndexHeaders.Set(float64(m.index.Len()))
		}
		if err := m.putToProvidersLocked(context.Background(), evt.header, evt.body); err != nil {
			m.log.Warnw("load: failed to write segment to providers", "error", err)
		}
	case loadFailed:
		kind = "load_failed"
		outcome = LoadOutcome{Err: evt.cause}
	}

	if m.metrics != nil {
		m.metrics.EventsTotal.WithLabelValues(kind).Inc()
	}

	for _, w := range waiters {
		select {
		case w <- outcome:
		default:
		}
	}
}

// handleEvent applies a provider-originated push notification (spec
// §4.5's ExternalSegmentCreated/ExternalSegmentDeleted) to the index. It
// runs on the manager's own goroutine and never returns an error to a
// caller: failures are logged and the loop continues (spec §7, "errors
// from events are logged and swallowed").
func (m *Manager) handleEvent(evt provider.Event) {
	var err error
	var kind string

	switch evt.Kind {
	case provider.EntryCreated:
		kind = "entry_created"
		_, err = m.index.Add(m.token, evt.Header)
	case provider.EntryDeleted:
		kind = "entry_deleted"
		_, err = m.index.Remove(m.token, evt.Header)
	}

	if m.metrics != nil {
		m.metrics.EventsTotal.WithLabelValues(kind).Inc()
		m.metrics.IndexHeaders.Set(float64(m.index.Len()))
	}
	if err != nil {
		m.log.Errorw("failed to apply provider event", "kind", kind, "error", err)
	}
}
