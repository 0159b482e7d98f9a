// Package provider defines the pluggable external cache abstraction
// (spec §4.6): a CacheProvider the manager drives with single-threaded
// guarantees, plus the registry that resolves a configured provider name
// to a concrete implementation — this codebase's analogue of how
// database/sql drivers register themselves via package init().
package provider

import (
	"context"

	"github.com/cubedata/segcache/internal/future"
	"github.com/cubedata/segcache/internal/segment"
)

// CacheProvider is the contract every external cache backend implements.
// None of it is assumed thread-safe: the manager guarantees all calls
// happen from its single designated goroutine. Every operation returns a
// Future rather than blocking directly, so the manager can apply its own
// per-call timeout uniformly across backends (spec §4.6).
type CacheProvider interface {
	// Contains reports whether header is present in this provider.
	Contains(ctx context.Context, header *segment.Header) *future.Future[bool]

	// Get returns the body stored for header, or (nil, false) if absent
	// — absence is a normal result, never an error (spec §7).
	Get(ctx context.Context, header *segment.Header) *future.Future[GetResult]

	// Put stores body under header, returning whether it was newly
	// admitted (false if an entry already existed; that entry is
	// replaced by body).
	Put(ctx context.Context, header *segment.Header, body *segment.Body) *future.Future[bool]

	// Remove evicts header's entry, if present.
	Remove(ctx context.Context, header *segment.Header) *future.Future[bool]

	// GetSegmentHeaders lists every header this provider currently
	// holds. Providers that don't support rich indexing return an empty
	// list and false from SupportsRichIndex.
	GetSegmentHeaders(ctx context.Context) *future.Future[[]*segment.Header]

	// AddListener registers l to receive EntryCreated/EntryDeleted
	// events originating from other nodes; the provider never echoes
	// the calling node's own mutations back to its own listeners.
	AddListener(l EventListener)

	// RemoveListener unregisters a previously added listener.
	RemoveListener(l EventListener)

	// SupportsRichIndex reports whether the manager can rely on header
	// contents within this provider, or must treat it as opaque bulk
	// storage.
	SupportsRichIndex() bool

	// TearDown releases all resources held by the provider. Later
	// operations are not rejected: the disk provider keeps serving its
	// entry files and the LRU provider serves an emptied cache.
	TearDown(ctx context.Context) error

	// Name identifies this provider instance for logging, metrics and
	// error reporting.
	Name() string
}

// GetResult is Get's result: Body is nil when Found is false.
type GetResult struct {
	Body  *segment.Body
	Found bool
}

// EventKind discriminates the two remote-origin notifications a
// CacheProvider can push.
type EventKind int

const (
	EntryCreated EventKind = iota
	EntryDeleted
)

// Event is a remote-origin cache mutation notification.
type Event struct {
	Kind   EventKind
	Header *segment.Header
}

// EventListener receives Events pushed by a CacheProvider.
type EventListener interface {
	OnSegmentCacheEvent(evt Event)
}

// EventListenerFunc adapts a plain function to EventListener.
type EventListenerFunc func(evt Event)

func (f EventListenerFunc) OnSegmentCacheEvent(evt Event) { f(evt) }
