// Package lruprovider implements a purely in-memory CacheProvider backed
// by hashicorp/golang-lru/v2, demonstrating that a CacheProvider need not
// touch a disk at all: entries are held in a bounded-size LRU and evicted
// automatically once the configured capacity is exceeded, with no
// persistence across process restarts.
package lruprovider

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cubedata/segcache/internal/future"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

// entry pairs a header with its body so GetSegmentHeaders can recover
// headers without a second index.
type entry struct {
	header *segment.Header
	body   *segment.Body
}

// Provider is an in-memory, fixed-capacity CacheProvider. All of its
// CacheProvider methods complete synchronously; the returned Futures are
// always already resolved.
type Provider struct {
	name string

	mu        sync.RWMutex
	cache     *lru.Cache[[32]byte, entry]
	listeners []provider.EventListener
}

// Config configures an in-memory Provider.
type Config struct {
	// Name identifies this provider instance; defaults to "lru".
	Name string
	// Capacity bounds the number of entries held at once. Once exceeded,
	// the least-recently-used entry is evicted.
	Capacity int
}

// New builds a Provider with the given capacity.
func New(cfg *Config) (*Provider, error) {
	capacity := 0
	name := "lru"
	if cfg != nil {
		capacity = cfg.Capacity
		if cfg.Name != "" {
			name = cfg.Name
		}
	}
	if capacity <= 0 {
		capacity = 1024
	}

	cache, err := lru.New[[32]byte, entry](capacity)
	if err != nil {
		return nil, cerr.NewProviderError(err, cerr.ErrorCodeInternal, name, "new", "failed to construct LRU cache")
	}

	return &Provider{name: name, cache: cache}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Contains(ctx context.Context, header *segment.Header) *future.Future[bool] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return future.Completed(p.cache.Contains(header.UniqueID()))
}

func (p *Provider) Get(ctx context.Context, header *segment.Header) *future.Future[provider.GetResult] {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.cache.Get(header.UniqueID())
	if !ok {
		return future.Completed(provider.GetResult{Found: false})
	}
	return future.Completed(provider.GetResult{Body: e.body, Found: true})
}

func (p *Provider) Put(ctx context.Context, header *segment.Header, body *segment.Body) *future.Future[bool] {
	p.mu.Lock()
	id := header.UniqueID()
	_, existed := p.cache.Peek(id)
	p.cache.Add(id, entry{header: header, body: body})
	p.mu.Unlock()

	// No listener dispatch here: this is a single-node, local mutation,
	// and listeners only ever hear about entries originating from other
	// nodes (spec §4.6).
	return future.Completed(!existed)
}

func (p *Provider) Remove(ctx context.Context, header *segment.Header) *future.Future[bool] {
	p.mu.Lock()
	removed := p.cache.Remove(header.UniqueID())
	p.mu.Unlock()

	// No listener dispatch here, for the same reason as Put.
	return future.Completed(removed)
}

func (p *Provider) GetSegmentHeaders(ctx context.Context) *future.Future[[]*segment.Header] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := p.cache.Keys()
	headers := make([]*segment.Header, 0, len(keys))
	for _, k := range keys {
		if e, ok := p.cache.Peek(k); ok {
			headers = append(headers, e.header)
		}
	}
	return future.Completed(headers)
}

// AddListener and RemoveListener satisfy the CacheProvider contract, but
// this provider never calls a listener itself: it has no other-node
// counterpart to observe, so there is nothing for it to push (spec
// §4.6's "never echo the caller's own mutations").
func (p *Provider) AddListener(l provider.EventListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

func (p *Provider) RemoveListener(l provider.EventListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.listeners {
		if existing == l {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

// SupportsRichIndex is true: GetSegmentHeaders always reflects the
// cache's full, current contents.
func (p *Provider) SupportsRichIndex() bool { return true }

func (p *Provider) TearDown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Purge()
	p.listeners = nil
	return nil
}
