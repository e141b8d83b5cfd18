// Package imdp is an in-memory interval Markov decision process.
//
// States and distributions share one node space. The successors of a state
// are its distributions (its nondeterministic choices) and the successors of a
// distribution are states, weighted by probability intervals.
package imdp

import (
	"errors"
	"fmt"

	"imdpsim/interval"
)

var ErrInvalidModel = errors.New("imdp: invalid model")

type edge struct {
	to     int
	weight interval.Interval
}

type node struct {
	distribution bool
	edges        []edge
}

// Model is an immutable IMDP. It is safe for concurrent use.
type Model struct {
	nodes     []node
	numStates int
}

func (m *Model) NumNodes() int {
	return len(m.nodes)
}

func (m *Model) NumStates() int {
	return m.numStates
}

// IsState returns true if node is a state, false if it is a distribution.
func (m *Model) IsState(n int) bool {
	return !m.nodes[n].distribution
}

func (m *Model) NumSuccessors(n int) int {
	return len(m.nodes[n].edges)
}

func (m *Model) Successor(n, i int) int {
	return m.nodes[n].edges[i].to
}

// Weight of the i'th outgoing edge of n. Edges from a state to its
// distributions have weight [1, 1].
func (m *Model) Weight(n, i int) interval.Interval {
	return m.nodes[n].edges[i].weight
}

// Builder constructs a Model.
type Builder struct {
	nodes     []node
	numStates int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddState adds a state and returns its node.
func (b *Builder) AddState() int {
	b.nodes = append(b.nodes, node{})
	b.numStates++
	return len(b.nodes) - 1
}

// AddDistribution adds a new nondeterministic choice to state and returns its
// node. Panics if state is not a state.
func (b *Builder) AddDistribution(state int) int {
	b.checkNode(state, false)
	b.nodes = append(b.nodes, node{distribution: true})
	d := len(b.nodes) - 1
	b.nodes[state].edges = append(b.nodes[state].edges, edge{to: d, weight: interval.Point(1)})
	return d
}

// AddTransition adds an edge from the distribution to the state. Panics if
// the nodes have the wrong kind or if the weight is not a valid interval.
func (b *Builder) AddTransition(distribution, state int, weight interval.Interval) {
	b.checkNode(distribution, true)
	b.checkNode(state, false)
	if !weight.Valid() {
		panic(fmt.Sprintf("imdp: invalid weight %v", weight))
	}
	b.nodes[distribution].edges = append(b.nodes[distribution].edges, edge{to: state, weight: weight})
}

func (b *Builder) checkNode(n int, distribution bool) {
	if n < 0 || n >= len(b.nodes) {
		panic(fmt.Sprintf("imdp: unknown node %v", n))
	}
	if b.nodes[n].distribution != distribution {
		panic(fmt.Sprintf("imdp: node %v has the wrong kind", n))
	}
}

// Build validates the model. Every distribution must have a successor, its
// weights must lie within [0, 1] and some distribution must be within them,
// i.e. the lower bounds sum to at most 1 and the upper bounds to at least 1.
// The sums are compared with 1 up to interval.Rounding, so decimal weights
// such as 0.3 and 0.7 are accepted.
//
// The builder must not be used afterwards.
func (b *Builder) Build() (*Model, error) {
	for n, nd := range b.nodes {
		if !nd.distribution {
			continue
		}
		if len(nd.edges) == 0 {
			return nil, fmt.Errorf("%w: distribution %v has no successors", ErrInvalidModel, n)
		}
		weights := make([]interval.Interval, len(nd.edges))
		for i, e := range nd.edges {
			if e.weight.Lower < 0 || e.weight.Upper > 1 {
				return nil, fmt.Errorf("%w: distribution %v has weight %v outside [0, 1]", ErrInvalidModel, n, e.weight)
			}
			weights[i] = e.weight
		}
		if sum := interval.Sum(weights); !sum.ContainsRounded(1) {
			return nil, fmt.Errorf("%w: weights of distribution %v sum to %v", ErrInvalidModel, n, sum)
		}
	}
	m := &Model{nodes: b.nodes, numStates: b.numStates}
	b.nodes = nil
	return m, nil
}

// Partition assigns states to blocks.
type Partition struct {
	blocks map[int]int
}

// NewPartition creates a partition from the block of each state.
func NewPartition(blocks map[int]int) *Partition {
	p := &Partition{blocks: make(map[int]int, len(blocks))}
	for s, b := range blocks {
		p.blocks[s] = b
	}
	return p
}

// BlockOf returns the block of state. States without a block are each in a
// block of their own.
func (p *Partition) BlockOf(state int) int {
	if b, ok := p.blocks[state]; ok {
		return b
	}
	return -1 - state
}

// Trivial puts every state of m in the same block.
func Trivial(m *Model) *Partition {
	blocks := make(map[int]int, m.NumStates())
	for n := 0; n < m.NumNodes(); n++ {
		if m.IsState(n) {
			blocks[n] = 0
		}
	}
	return &Partition{blocks: blocks}
}
