package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cubedata/segcache/internal/cacheindex"
	"github.com/cubedata/segcache/internal/metrics"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/rollup"
	"github.com/cubedata/segcache/internal/segment"
)

// Config configures a Manager.
type Config struct {
	Providers []provider.CacheProvider

	// DefaultAggregator combines values during a rollup fallback when no
	// per-measure override applies. Defaults to SumAggregator.
	DefaultAggregator    rollup.Aggregator
	AggregatorsByMeasure map[string]rollup.Aggregator

	RollupDensityThreshold float64
	MaxIndexHeaders        int

	ReadTimeout   time.Duration
	LookupTimeout time.Duration
	WriteTimeout  time.Duration
	ScanTimeout   time.Duration

	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
}

// msgKind discriminates the variants the manager's run loop consumes
// from its single inbound channel (spec §9's "Event as tagged variant").
type msgKind int

const (
	msgCommand msgKind = iota
	msgEvent
	msgLoadEvent
	msgForgetWaiter
)

type msg struct {
	kind   msgKind
	cmd    *commandEnvelope
	evt    provider.Event
	load   *loadEvent
	forget *forgetWaiter
}

// loadEventKind discriminates spec §4.5's two SQL-loader-originated
// events, LoadSucceeded and LoadFailed. These are distinct from
// provider.Event: they arrive from an out-of-scope SQL loader, not from
// a CacheProvider, and carry no remote-node origin to echo-guard against.
type loadEventKind int

const (
	loadSucceeded loadEventKind = iota
	loadFailed
)

type loadEvent struct {
	kind   loadEventKind
	header *segment.Header
	body   *segment.Body
	cause  error
}

// LoadOutcome is delivered to a caller blocked in AwaitLoad behind an
// in-flight SQL load for the same header.
type LoadOutcome struct {
	Body *segment.Body
	Err  error
}

// forgetWaiter removes an abandoned (context-cancelled) load waiter so
// it doesn't accumulate in Manager.loadWaiters forever.
type forgetWaiter struct {
	id [32]byte
	ch chan LoadOutcome
}

// commandEnvelope is one unit of work the run loop executes under the
// manager's thread-ownership token. run's return value is delivered back
// to the waiting caller via the weak-pointer response stash.
type commandEnvelope struct {
	id  string
	run func(m *Manager) (any, error)
}

type response struct {
	value any
	err   error
}

// Manager is the CacheManager actor (spec §4.5): a single designated
// goroutine owns the cacheindex.Index and drives every configured
// CacheProvider, reached exclusively through a bounded command channel.
type Manager struct {
	token string

	providers            []provider.CacheProvider
	index                *cacheindex.Index
	builder              *rollup.Builder
	defaultAggregator    rollup.Aggregator
	aggregatorsByMeasure map[string]rollup.Aggregator

	readTimeout   time.Duration
	lookupTimeout time.Duration
	writeTimeout  time.Duration
	scanTimeout   time.Duration

	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	msgCh     chan msg
	stopCh    chan struct{}
	stoppedCh chan struct{}
	closing   atomic.Bool

	sf singleflight.Group

	pendingMu sync.Mutex
	pending   map[string]weak.Pointer[chan *response]

	// loadWaiters holds, per header UniqueID, the callers parked in
	// AwaitLoad for that header's SQL load to complete. Only ever
	// touched on the manager's own goroutine, so no separate lock is
	// needed (spec §4.5's "notifies any waiters").
	loadWaiters map[[32]byte][]chan LoadOutcome
}

var _ provider.EventListener = (*Manager)(nil)

// aggregatorFor resolves the Aggregator to apply for measure, falling
// back to the manager's DefaultAggregator.
func (m *Manager) aggregatorFor(measure string) rollup.Aggregator {
	if agg, ok := m.aggregatorsByMeasure[measure]; ok {
		return agg
	}
	return m.defaultAggregator
}

// ctxForDispatch is separated out so tests can pass context.Background()
// without pulling in a real caller context.
func ctxForDispatch(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
