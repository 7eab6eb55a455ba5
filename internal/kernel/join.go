package kernel

import (
	"slices"

	"github.com/paveg/colkern/internal/parallel"
)

// IndexPair is one match of MergeIndices
type IndexPair struct {
	Left  int
	Right int
}

// Pairs is the result of MergeIndices
type Pairs []IndexPair

// Flatten returns the pairs as alternating left, right indices
func (p Pairs) Flatten() []int {
	out := make([]int, 0, 2*len(p))
	for _, pair := range p {
		out = append(out, pair.Left, pair.Right)
	}
	return out
}

// Swap returns the pairs with left and right exchanged
func (p Pairs) Swap() Pairs {
	out := make(Pairs, len(p))
	for i, pair := range p {
		out[i] = IndexPair{Left: pair.Right, Right: pair.Left}
	}
	return out
}

// toleranceIndex maps ε-buckets of the right column to its indices. It is
// split into shards by key hash so that shards can be built concurrently.
type toleranceIndex struct {
	shards []map[ToleranceKey][]int
}

func (idx *toleranceIndex) lookup(k ToleranceKey) []int {
	shard := k.Hash() % uint64(len(idx.shards))
	return idx.shards[shard][k]
}

func (e *Engine) buildIndex(right []float64) *toleranceIndex {
	n := len(right)
	keys := make([]ToleranceKey, n)
	hashes := make([]uint64, n)
	valid := make([]bool, n)

	e.exec.For(n, func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			k, ok := NewToleranceKey(right[i], e.epsilon)
			if !ok {
				continue
			}
			keys[i] = k
			hashes[i] = k.Hash()
			valid[i] = true
		}
	})

	shardCount := max(len(e.exec.Partitions(n)), 1)
	buildShard := func(shard int) map[ToleranceKey][]int {
		m := make(map[ToleranceKey][]int)
		for i := 0; i < n; i++ {
			if valid[i] && hashes[i]%uint64(shardCount) == uint64(shard) {
				m[keys[i]] = append(m[keys[i]], i)
			}
		}
		return m
	}

	idx := &toleranceIndex{}
	if shardCount == 1 {
		idx.shards = []map[ToleranceKey][]int{buildShard(0)}
		return idx
	}

	shardIDs := make([]int, shardCount)
	for i := range shardIDs {
		shardIDs[i] = i
	}
	idx.shards = parallel.ProcessIndexed(e.exec.Pool(), shardIDs, func(_ int, shard int) map[ToleranceKey][]int {
		return buildShard(shard)
	})
	return idx
}

// MergeIndices is an inner join of left and right under tolerance equality
// |a-b| < ε. Right is indexed by ε-bucket and probed with every left value;
// a pair is emitted when the buckets match and the values are within ε, and
// duplicates on either side yield every combination.
//
// Two values within ε that fall on opposite sides of a bucket boundary are
// not joined unless neighbor probing is enabled. The join never produces a
// pair whose values are ε or more apart. NaN and infinities never match.
//
// In ordered mode pairs are sorted by left index, then right index.
// Otherwise only the set of pairs is deterministic.
func (e *Engine) MergeIndices(left, right []float64) Pairs {
	idx := e.buildIndex(right)

	pairs := parallel.Gather(e.exec, len(left), func(r parallel.Range) []IndexPair {
		var out []IndexPair
		for i := r.Lo; i < r.Hi; i++ {
			k, ok := NewToleranceKey(left[i], e.epsilon)
			if !ok {
				continue
			}

			if !e.probeNeighbors {
				for _, j := range idx.lookup(k) {
					if ToleranceEqual(left[i], right[j], e.epsilon) {
						out = append(out, IndexPair{Left: i, Right: j})
					}
				}
				continue
			}

			start := len(out)
			for _, nk := range k.neighbors() {
				for _, j := range idx.lookup(nk) {
					if ToleranceEqual(left[i], right[j], e.epsilon) {
						out = append(out, IndexPair{Left: i, Right: j})
					}
				}
			}
			slices.SortFunc(out[start:], func(a, b IndexPair) int {
				return a.Right - b.Right
			})
		}
		return out
	})

	return Pairs(pairs)
}
