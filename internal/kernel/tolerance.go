package kernel

import (
	"encoding/binary"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
)

// DefaultEpsilon is the resolution of tolerance equality
const DefaultEpsilon = 1e-9

// int64 bounds as float64; the upper bound itself is not representable.
const (
	minBucket = -9.223372036854775808e18
	maxBucket = 9.223372036854775808e18
)

// ToleranceKey is the ε-bucket of a value: value / ε truncated toward zero.
// Quotients that do not fit in an int64 are keyed by the exact bit pattern
// of the value, since doubles that large are already more than ε apart.
type ToleranceKey struct {
	Bucket int64
	Exact  bool
}

// NewToleranceKey returns the bucket of v. NaN and infinities have no
// bucket and never compare equal to anything.
func NewToleranceKey(v, eps float64) (ToleranceKey, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ToleranceKey{}, false
	}

	q := math.Trunc(v / eps)
	if q >= minBucket && q < maxBucket {
		return ToleranceKey{Bucket: int64(q)}, true
	}
	return ToleranceKey{Bucket: int64(math.Float64bits(v)), Exact: true}, true //nolint:gosec // bit pattern, not a quantity
}

// Hash returns the xxhash of the key, used to pick the index shard
func (k ToleranceKey) Hash() uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(k.Bucket)) //nolint:gosec // reinterpretation
	if k.Exact {
		buf[8] = 1
	}
	return xxhash.Sum64(buf[:])
}

// neighbors returns the key and its adjacent buckets
func (k ToleranceKey) neighbors() []ToleranceKey {
	if k.Exact {
		return []ToleranceKey{k}
	}

	out := make([]ToleranceKey, 0, 3)
	if k.Bucket > math.MinInt64 {
		out = append(out, ToleranceKey{Bucket: k.Bucket - 1})
	}
	out = append(out, k)
	if k.Bucket < math.MaxInt64 {
		out = append(out, ToleranceKey{Bucket: k.Bucket + 1})
	}
	return out
}

// ToleranceEqual reports |a-b| < eps
func ToleranceEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
