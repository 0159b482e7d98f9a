package segment

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/cubedata/segcache/internal/bitkey"
)

// Header is a fully immutable, content-addressed description of one
// segment's provenance, dimensionality and predicates. Two Headers are
// Equal iff their UniqueID matches; UniqueID is computed once and
// memoized on first access.
type Header struct {
	SchemaName             string
	SchemaChecksum         []byte
	CubeName               string
	MeasureName            string
	RolapStarFactTableName string
	ConstrainedColumns     []Column // one per bit set in ConstrainedColsBitKey, in bitkey order
	CompoundPredicates     []string
	ConstrainedColsBitKey  bitkey.BitKey
	ExcludedRegions        []Column

	once     sync.Once
	uniqueID [32]byte
	hashCode uint64
}

// NewHeader constructs a Header. UniqueID and HashCode are computed
// lazily from the fields above; callers must not mutate a Header's slices
// after constructing it.
func NewHeader(
	schemaName string,
	schemaChecksum []byte,
	cubeName, measureName, factTable string,
	constrainedColumns []Column,
	compoundPredicates []string,
	bitKey bitkey.BitKey,
	excludedRegions []Column,
) *Header {
	return &Header{
		SchemaName:             schemaName,
		SchemaChecksum:         schemaChecksum,
		CubeName:               cubeName,
		MeasureName:            measureName,
		RolapStarFactTableName: factTable,
		ConstrainedColumns:     constrainedColumns,
		CompoundPredicates:     compoundPredicates,
		ConstrainedColsBitKey:  bitKey,
		ExcludedRegions:        excludedRegions,
	}
}

// keyMaterial renders the deterministic serialization UniqueID and
// HashCode are both derived from.
func (h *Header) keyMaterial() string {
	var b strings.Builder
	b.WriteString(h.SchemaName)
	b.WriteByte(0)
	b.Write(h.SchemaChecksum)
	b.WriteByte(0)
	b.WriteString(h.CubeName)
	b.WriteByte(0)
	b.WriteString(h.MeasureName)
	b.WriteByte(0)
	b.WriteString(h.RolapStarFactTableName)
	b.WriteByte(0)
	for _, col := range h.ConstrainedColumns {
		b.WriteString(col.Expr())
		b.WriteByte(0)
		if col.IsWildcard() {
			b.WriteString("*")
		} else {
			for _, v := range col.Values() {
				b.WriteString(formatValue(v))
				b.WriteByte(0)
			}
		}
		b.WriteByte(0)
	}
	for _, p := range h.CompoundPredicates {
		b.WriteString(p)
		b.WriteByte(0)
	}
	return b.String()
}

// UniqueID returns the SHA-256 digest over the header's key material,
// computing and memoizing it on first access. This is the header's
// authoritative identity: two headers with the same UniqueID are
// interchangeable across processes.
func (h *Header) UniqueID() [32]byte {
	h.once.Do(h.computeDigests)
	return h.uniqueID
}

// UniqueIDHex returns UniqueID hex-encoded, convenient as a map key and
// for on-disk file naming.
func (h *Header) UniqueIDHex() string {
	id := h.UniqueID()
	return hex.EncodeToString(id[:])
}

// HashCode returns a cheap, non-cryptographic hash over the same key
// material as UniqueID, for use in hash-based indexes where a full
// SHA-256 comparison would be wasteful.
func (h *Header) HashCode() uint64 {
	h.once.Do(h.computeDigests)
	return h.hashCode
}

func (h *Header) computeDigests() {
	material := h.keyMaterial()
	h.uniqueID = sha256.Sum256([]byte(material))
	h.hashCode = xxhashString(material)
}

// Equals reports identity equality by UniqueID.
func (h *Header) Equals(other *Header) bool {
	if h == other {
		return true
	}
	if h == nil || other == nil {
		return false
	}
	return h.UniqueID() == other.UniqueID()
}

// GetConstrainedColumn returns the Column constraining expr, if any. The
// scan is linear: header arity is small in practice (spec assumption).
func (h *Header) GetConstrainedColumn(expr string) (Column, bool) {
	for _, c := range h.ConstrainedColumns {
		if c.Expr() == expr {
			return c, true
		}
	}
	return Column{}, false
}

// GetExcludedRegion returns the excluded-region Column for expr, if any.
func (h *Header) GetExcludedRegion(expr string) (Column, bool) {
	for _, c := range h.ExcludedRegions {
		if c.Expr() == expr {
			return c, true
		}
	}
	return Column{}, false
}

// Clone returns a new Header with overrides replacing or adding
// constrained columns by Expr, preserving every other column and all
// other fields. The bitkey is not changed by Clone; callers that change
// dimensionality must build a new Header directly.
func (h *Header) Clone(overrides []Column) *Header {
	byExpr := make(map[string]Column, len(overrides))
	for _, c := range overrides {
		byExpr[c.Expr()] = c
	}

	merged := make([]Column, 0, len(h.ConstrainedColumns)+len(overrides))
	seen := make(map[string]bool, len(h.ConstrainedColumns))
	for _, c := range h.ConstrainedColumns {
		if replacement, ok := byExpr[c.Expr()]; ok {
			merged = append(merged, replacement)
		} else {
			merged = append(merged, c)
		}
		seen[c.Expr()] = true
	}
	for _, c := range overrides {
		if !seen[c.Expr()] {
			merged = append(merged, c)
		}
	}

	return NewHeader(
		h.SchemaName, h.SchemaChecksum, h.CubeName, h.MeasureName, h.RolapStarFactTableName,
		merged, h.CompoundPredicates, h.ConstrainedColsBitKey, h.ExcludedRegions,
	)
}

// IsSubset reports dimensionality compatibility only: same schema,
// schema checksum, cube, measure, fact table, and bitkey. Callers must
// combine this with their own value-range checks; it deliberately does
// not compare predicates. SchemaChecksum is compared because a schema
// migration can leave two headers with identical names but
// incompatible column definitions.
func (h *Header) IsSubset(other *Header) bool {
	return h.SchemaName == other.SchemaName &&
		bytes.Equal(h.SchemaChecksum, other.SchemaChecksum) &&
		h.CubeName == other.CubeName &&
		h.MeasureName == other.MeasureName &&
		h.RolapStarFactTableName == other.RolapStarFactTableName &&
		h.ConstrainedColsBitKey.Equals(other.ConstrainedColsBitKey)
}

// Provenance identifies the (schema, schemaChecksum, cube, measure, fact
// table) group a header belongs to, independent of dimensionality — the
// fact-map key the index groups headers by (spec §4.3). SchemaChecksum
// is included so that two headers for the same cube/measure but from
// different schema generations (e.g. after a migration) are never
// merged into the same fact group.
type Provenance struct {
	SchemaName             string
	SchemaChecksum         []byte
	CubeName               string
	MeasureName            string
	RolapStarFactTableName string
}

// Key returns a deterministic, comparable encoding of the provenance
// tuple. Provenance itself embeds a byte slice and so cannot be used
// directly as a map key; callers needing one (the cache index's
// bitkey-map and fact-map) key by Key() instead.
func (p Provenance) Key() string {
	var b strings.Builder
	b.WriteString(p.SchemaName)
	b.WriteByte(0)
	b.WriteString(hex.EncodeToString(p.SchemaChecksum))
	b.WriteByte(0)
	b.WriteString(p.CubeName)
	b.WriteByte(0)
	b.WriteString(p.MeasureName)
	b.WriteByte(0)
	b.WriteString(p.RolapStarFactTableName)
	return b.String()
}

// Provenance extracts h's provenance tuple.
func (h *Header) Provenance() Provenance {
	return Provenance{
		SchemaName:             h.SchemaName,
		SchemaChecksum:         h.SchemaChecksum,
		CubeName:               h.CubeName,
		MeasureName:            h.MeasureName,
		RolapStarFactTableName: h.RolapStarFactTableName,
	}
}
