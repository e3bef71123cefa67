// Package seqdiff computes similarity ratios and alignment opcodes between
// two ordered sequences of comparable tokens.
//
// The algorithm recursively locates the single longest contiguous run of
// equal tokens common to the unmatched portions of both sequences, then
// recurses independently on the material to the left and right of that run.
// The total matched length M across all recursion levels yields the
// similarity ratio 2*M / (len(a)+len(b)). The same block decomposition drives
// [Opcodes], which classifies the gaps between matching blocks as replace,
// delete, or insert spans.
//
// Ties in "longest common run" are broken by the earliest starting position
// in a, then the earliest in b, so both [Ratio] and [Opcodes] are fully
// deterministic. All functions are pure and safe for concurrent use.
//
// The token type is generic: word-level alignment uses []string, character
// level similarity uses []rune.
package seqdiff

import "sort"

// OpTag classifies the relationship an [Opcode] describes between a span of
// sequence a and a span of sequence b.
type OpTag string

const (
	// OpEqual means a[I1:I2] equals b[J1:J2].
	OpEqual OpTag = "equal"

	// OpReplace means a[I1:I2] should be replaced by b[J1:J2].
	OpReplace OpTag = "replace"

	// OpDelete means a[I1:I2] has no counterpart in b (J1 == J2).
	OpDelete OpTag = "delete"

	// OpInsert means b[J1:J2] has no counterpart in a (I1 == I2).
	OpInsert OpTag = "insert"
)

// Opcode describes a contiguous relationship between the half-open ranges
// [I1,I2) of sequence a and [J1,J2) of sequence b.
//
// The opcode list produced by [Opcodes] is ordered by strictly increasing
// I1/J1 and its union covers both sequences exactly, with no gaps or
// overlaps.
type Opcode struct {
	Tag            OpTag
	I1, I2, J1, J2 int
}

// Match is a maximal run of equal tokens: a[A:A+Size] == b[B:B+Size].
type Match struct {
	A, B, Size int
}

// Ratio returns the similarity of a and b in [0,1]: twice the total length
// of all matching blocks divided by the combined sequence length.
//
// Two empty sequences are defined to be identical (ratio 1.0); when exactly
// one sequence is empty the ratio is 0.0.
func Ratio[T comparable](a, b []T) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, m := range MatchingBlocks(a, b) {
		matched += m.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// Opcodes returns the ordered list of [Opcode] values describing how to turn
// a into b. Matching blocks become equal opcodes; the gaps between them
// become replace (both sides non-empty), delete (only the a side non-empty),
// or insert (only the b side non-empty) opcodes.
func Opcodes[T comparable](a, b []T) []Opcode {
	var ops []Opcode
	i, j := 0, 0
	for _, m := range MatchingBlocks(a, b) {
		tag := OpTag("")
		switch {
		case i < m.A && j < m.B:
			tag = OpReplace
		case i < m.A:
			tag = OpDelete
		case j < m.B:
			tag = OpInsert
		}
		if tag != "" {
			ops = append(ops, Opcode{Tag: tag, I1: i, I2: m.A, J1: j, J2: m.B})
		}
		i, j = m.A+m.Size, m.B+m.Size
		if m.Size > 0 {
			ops = append(ops, Opcode{Tag: OpEqual, I1: m.A, I2: i, J1: m.B, J2: j})
		}
	}
	return ops
}

// MatchingBlocks returns the maximal matching runs of a and b in increasing
// positional order, terminated by a zero-length sentinel
// Match{len(a), len(b), 0}. Adjacent blocks are coalesced.
func MatchingBlocks[T comparable](a, b []T) []Match {
	// Index of each token value to its positions in b, consulted by
	// longestMatch to walk candidate diagonals.
	b2j := make(map[T][]int, len(b))
	for j, tok := range b {
		b2j[tok] = append(b2j[tok], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}

	var blocks []Match
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.Size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.A && s.blo < m.B {
			queue = append(queue, span{s.alo, m.A, s.blo, m.B})
		}
		if m.A+m.Size < s.ahi && m.B+m.Size < s.bhi {
			queue = append(queue, span{m.A + m.Size, s.ahi, m.B + m.Size, s.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].A != blocks[j].A {
			return blocks[i].A < blocks[j].A
		}
		return blocks[i].B < blocks[j].B
	})

	// Coalesce adjacent blocks into maximal runs.
	merged := make([]Match, 0, len(blocks)+1)
	for _, m := range blocks {
		if n := len(merged); n > 0 && merged[n-1].A+merged[n-1].Size == m.A && merged[n-1].B+merged[n-1].Size == m.B {
			merged[n-1].Size += m.Size
			continue
		}
		merged = append(merged, m)
	}
	return append(merged, Match{A: len(a), B: len(b)})
}

// longestMatch finds the longest run of equal tokens within
// a[alo:ahi] and b[blo:bhi]. Ties are resolved toward the earliest start in
// a, then the earliest start in b: a candidate only displaces the current
// best when it is strictly longer.
func longestMatch[T comparable](a []T, b2j map[T][]int, alo, ahi, blo, bhi int) Match {
	best := Match{A: alo, B: blo}
	// runLen[j] is the length of the matching run ending at a[i-1], b[j].
	runLen := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = Match{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		runLen = next
	}
	return best
}
