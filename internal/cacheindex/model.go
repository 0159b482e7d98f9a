package cacheindex

import (
	"github.com/cubedata/segcache/internal/poset"
	"github.com/cubedata/segcache/internal/segment"
)

// bitkeyGroupKey identifies one (provenance, dimensionality) bucket of the
// bitkey-map (spec §4.3): all headers sharing the same provenance and the
// same set of constrained-column bits. provenance is segment.Provenance's
// Key(), not the struct itself: Provenance embeds SchemaChecksum ([]byte)
// and so is not comparable.
type bitkeyGroupKey struct {
	provenance string // segment.Provenance.Key()
	bitKey     string // bitkey.BitKey.MapKey()
}

// factInfo is the fact-map value (spec §4.3): every header sharing one
// provenance, plus the poset of bitkeys observed for that provenance so
// findRollupCandidates can ascend toward ancestor dimensionalities.
type factInfo struct {
	headers map[[32]byte]*segment.Header
	poset   *poset.Set
}

func newFactInfo() *factInfo {
	return &factInfo{headers: make(map[[32]byte]*segment.Header), poset: poset.New()}
}

// locatedHeader is an entry's own bookkeeping, letting Remove and eviction
// find a header's bucket and fact group in O(1) without re-deriving them
// from the header (which stays correct even if a caller mutates a header's
// fields it wasn't supposed to).
type locatedHeader struct {
	header     *segment.Header
	bitkeyKey  bitkeyGroupKey
	provenance string // segment.Provenance.Key()
}

// Config configures an Index.
type Config struct {
	// OwnerToken is the manager's thread-ownership token (spec §5); every
	// Index method call must present this same token.
	OwnerToken string
	// MaxHeaders bounds the number of headers held at once. 0 means
	// unbounded. Once exceeded, Add evicts one entry chosen uniformly at
	// random from the headers actually present (spec §9 item 2).
	MaxHeaders int
}
