// Package cacheindex implements the SegmentCacheIndex (spec §4.3): an
// in-memory index of every known SegmentHeader, queried three ways —
// locate (exact dimensionality match), intersectRegion (flush targeting)
// and findRollupCandidates (ascend the dimensionality poset looking for
// an ancestor to roll up from). The index is driven exclusively by the
// single-writer CacheManager actor; every method checks the caller's
// thread-ownership token rather than taking a lock itself.
package cacheindex

import (
	"math/rand/v2"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/poset"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

// Index is the SegmentCacheIndex. The zero value is not valid; use New.
type Index struct {
	ownerToken string
	maxHeaders int

	entries map[[32]byte]*locatedHeader
	buckets map[bitkeyGroupKey]map[[32]byte]*segment.Header
	facts   map[string]*factInfo // keyed by segment.Provenance.Key()
}

// New builds an empty Index.
func New(cfg *Config) (*Index, error) {
	if cfg == nil || cfg.OwnerToken == "" {
		return nil, cerr.NewValidationError(nil, cerr.ErrorCodeInvalidInput, "cacheindex: OwnerToken is required").
			WithField("OwnerToken").WithRule("required")
	}
	return &Index{
		ownerToken: cfg.OwnerToken,
		maxHeaders: cfg.MaxHeaders,
		entries:    make(map[[32]byte]*locatedHeader),
		buckets:    make(map[bitkeyGroupKey]map[[32]byte]*segment.Header),
		facts:      make(map[string]*factInfo),
	}, nil
}

func (idx *Index) checkOwner(operation, token string) error {
	if token != idx.ownerToken {
		return cerr.NewThreadOwnershipError(operation, idx.ownerToken, token)
	}
	return nil
}

func bucketKeyFor(h *segment.Header) bitkeyGroupKey {
	return bitkeyGroupKey{provenance: h.Provenance().Key(), bitKey: h.ConstrainedColsBitKey.MapKey()}
}

// Add registers header, evicting one entry at random first if the index
// is already at MaxHeaders capacity. Returns false without error if an
// equal header (by UniqueID) is already present.
func (idx *Index) Add(token string, header *segment.Header) (bool, error) {
	if err := idx.checkOwner("add", token); err != nil {
		return false, err
	}

	id := header.UniqueID()
	if _, exists := idx.entries[id]; exists {
		return false, nil
	}

	if idx.maxHeaders > 0 && len(idx.entries) >= idx.maxHeaders {
		idx.evictRandomLocked()
	}

	bk := bucketKeyFor(header)
	bucket, ok := idx.buckets[bk]
	if !ok {
		bucket = make(map[[32]byte]*segment.Header)
		idx.buckets[bk] = bucket
	}
	bucket[id] = header

	provKey := header.Provenance().Key()
	fi, ok := idx.facts[provKey]
	if !ok {
		fi = newFactInfo()
		idx.facts[provKey] = fi
	}
	fi.headers[id] = header
	fi.poset.Add(header.ConstrainedColsBitKey)

	idx.entries[id] = &locatedHeader{header: header, bitkeyKey: bk, provenance: provKey}
	return true, nil
}

// Remove evicts header, if present. Returns false if it was absent.
func (idx *Index) Remove(token string, header *segment.Header) (bool, error) {
	if err := idx.checkOwner("remove", token); err != nil {
		return false, err
	}
	return idx.removeByID(header.UniqueID()), nil
}

func (idx *Index) removeByID(id [32]byte) bool {
	loc, ok := idx.entries[id]
	if !ok {
		return false
	}
	delete(idx.entries, id)

	if bucket, ok := idx.buckets[loc.bitkeyKey]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(idx.buckets, loc.bitkeyKey)
		}
	}

	if fi, ok := idx.facts[loc.provenance]; ok {
		delete(fi.headers, id)
		if _, stillPresent := idx.buckets[loc.bitkeyKey]; !stillPresent {
			fi.poset.Remove(loc.header.ConstrainedColsBitKey)
		}
		if len(fi.headers) == 0 {
			delete(idx.facts, loc.provenance)
		}
	}

	return true
}

// evictRandomLocked removes one header chosen uniformly at random from the
// headers actually present, the deterministic-over-real-entries policy
// spec §9 item 2 mandates in place of the reference's "pick a random
// integer index" no-op.
func (idx *Index) evictRandomLocked() {
	if len(idx.entries) == 0 {
		return
	}
	victim := rand.IntN(len(idx.entries))
	i := 0
	for id := range idx.entries {
		if i == victim {
			idx.removeByID(id)
			return
		}
		i++
	}
}

// Len returns the number of headers currently indexed.
func (idx *Index) Len() int { return len(idx.entries) }

// Locate implements spec §4.3(a): exact-dimensionality candidates whose
// predicates include coords and whose compound predicates equal the
// requested array element-wise.
func (idx *Index) Locate(
	token string,
	provenance segment.Provenance,
	bitKey bitkey.BitKey,
	coords map[string]segment.Value,
	compoundPredicates []string,
) ([]*segment.Header, error) {
	if err := idx.checkOwner("locate", token); err != nil {
		return nil, err
	}

	bucket := idx.buckets[bitkeyGroupKey{provenance: provenance.Key(), bitKey: bitKey.MapKey()}]
	var out []*segment.Header

	for _, h := range bucket {
		if !equalPredicates(h.CompoundPredicates, compoundPredicates) {
			continue
		}

		matched := true
		for expr, value := range coords {
			ok, err := coordMatches(h, expr, value)
			if err != nil {
				return nil, err
			}
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, h)
		}
	}

	return out, nil
}

// coordMatches implements the per-coordinate filter from spec §4.3(a).
func coordMatches(h *segment.Header, expr string, value segment.Value) (bool, error) {
	if excluded, ok := h.GetExcludedRegion(expr); ok {
		if excluded.IsWildcard() || excluded.Contains(value) {
			return false, nil
		}
	}

	col, ok := h.GetConstrainedColumn(expr)
	if !ok {
		return false, cerr.NewInvariantError("dimensionality mismatch: requested column is not constrained by this header").
			WithOperation("locate").WithDetail("column", expr)
	}
	if col.IsWildcard() {
		return true, nil
	}
	return col.Contains(value), nil
}

func equalPredicates(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IntersectRegion implements spec §4.3(b): every header sharing provenance
// (which includes the measure) whose constrained columns overlap region.
func (idx *Index) IntersectRegion(token string, provenance segment.Provenance, region []segment.Column) ([]*segment.Header, error) {
	if err := idx.checkOwner("intersectRegion", token); err != nil {
		return nil, err
	}

	fi, ok := idx.facts[provenance.Key()]
	if !ok {
		return nil, nil
	}

	var out []*segment.Header
	for _, h := range fi.headers {
		if headerIntersectsRegion(h, region) {
			out = append(out, h)
		}
	}
	return out, nil
}

func headerIntersectsRegion(h *segment.Header, region []segment.Column) bool {
	for _, regionCol := range region {
		hCol, ok := h.GetConstrainedColumn(regionCol.Expr())
		if !ok {
			// Header doesn't constrain this column at all: implicit
			// intersection, allowing global flushes (spec §4.3(b)).
			continue
		}
		if hCol.IsWildcard() || regionCol.IsWildcard() {
			continue
		}
		if !valueSetsOverlap(hCol, regionCol) {
			return false
		}
	}
	return true
}

func valueSetsOverlap(a, b segment.Column) bool {
	small, large := a, b
	if len(small.Values()) > len(large.Values()) {
		small, large = large, small
	}
	for _, v := range small.Values() {
		if large.Contains(v) {
			return true
		}
	}
	return false
}

// FindRollupCandidates implements spec §4.3(c): ascend the per-provenance
// dimensionality poset in order of increasing extra bits, returning every
// ancestor header that alone covers every projected-away axis (a singleton
// candidate group). Combining multiple partial matches to cover a
// projected axis collectively is left unimplemented per spec §9 item 3.
func (idx *Index) FindRollupCandidates(
	token string,
	provenance segment.Provenance,
	bitKey bitkey.BitKey,
	coords map[string]segment.Value,
) ([]*segment.Header, error) {
	if err := idx.checkOwner("findRollupCandidates", token); err != nil {
		return nil, err
	}

	fi, ok := idx.facts[provenance.Key()]
	if !ok {
		return nil, nil
	}

	var out []*segment.Header
	for _, ancestor := range fi.poset.Ancestors(bitKey) {
		bucket := idx.buckets[bitkeyGroupKey{provenance: provenance.Key(), bitKey: ancestor.MapKey()}]
		for _, h := range bucket {
			if singleton, ok := evaluateRollupCandidate(h, coords); ok && singleton {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

// evaluateRollupCandidate reports (true, true) when h alone is sufficient
// to roll up the target cell, (_, false) when h is disqualified by a
// mismatched kept coordinate. A non-singleton partial match is reported as
// (false, true) — a legitimate outcome, just not one this index combines
// with siblings yet (TODO: combine partial matches across an ancestor
// bucket, spec §9 item 3).
func evaluateRollupCandidate(h *segment.Header, coords map[string]segment.Value) (singleton bool, ok bool) {
	nonWildcardProjected := 0

	for _, col := range h.ConstrainedColumns {
		if value, kept := coords[col.Expr()]; kept {
			if !col.IsWildcard() && !col.Contains(value) {
				return false, false
			}
			continue
		}
		if !col.IsWildcard() {
			nonWildcardProjected++
		}
	}

	return nonWildcardProjected == 0, true
}
