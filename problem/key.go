package problem

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the key encoding.
const (
	keyClassesField protowire.Number = 1
	keyActionsField protowire.Number = 2
	keyBoundsField  protowire.Number = 3
)

// AppendKey appends a binary encoding of the problem to dst.
//
// The encoding is a protobuf message with the dimensions as varints followed
// by a packed fixed64 field holding the bit patterns of all bounds. Two
// problems have the same key if and only if they are Equal.
func (p *Problem) AppendKey(dst []byte) []byte {
	n := p.numClasses * (p.numActions + 1) * 2
	dst = protowire.AppendTag(dst, keyClassesField, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(p.numClasses))
	dst = protowire.AppendTag(dst, keyActionsField, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(p.numActions))
	dst = protowire.AppendTag(dst, keyBoundsField, protowire.BytesType)
	dst = protowire.AppendVarint(dst, uint64(n*8))
	for _, iv := range p.ChallengerVector() {
		dst = protowire.AppendFixed64(dst, bits(iv.Lower))
		dst = protowire.AppendFixed64(dst, bits(iv.Upper))
	}
	for _, iv := range p.defender[:p.numClasses*p.numActions] {
		dst = protowire.AppendFixed64(dst, bits(iv.Lower))
		dst = protowire.AppendFixed64(dst, bits(iv.Upper))
	}
	return dst
}

// Key returns the binary encoding of the problem. See AppendKey.
func (p *Problem) Key() []byte {
	return p.AppendKey(make([]byte, 0, p.keySize()))
}

func (p *Problem) keySize() int {
	n := p.numClasses * (p.numActions + 1) * 2
	return 3 + protowire.SizeVarint(uint64(p.numClasses)) +
		protowire.SizeVarint(uint64(p.numActions)) +
		protowire.SizeVarint(uint64(n*8)) + n*8
}

// Hash is consistent with Equals.
func (p *Problem) Hash() uint64 {
	return xxhash.Sum64(p.Key())
}

// -0 and +0 are equal bounds and must encode the same way.
func bits(f float64) uint64 {
	if f == 0 {
		f = 0
	}
	return math.Float64bits(f)
}
