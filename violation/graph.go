// Package violation decides whether states of an interval Markov decision
// process violate a simulation relation given by a partition of the states.
package violation

import (
	"errors"

	"imdpsim/interval"
)

var (
	ErrNoSuchState = errors.New("violation: no such state")
	ErrPanic       = errors.New("violation: panic while deciding a pair")
)

// Graph is the transition structure of the model.
//
// The successors of a state are its distributions, the successors of a
// distribution are states weighted by probability intervals. Nodes are
// numbered from 0 to NumNodes()-1.
type Graph interface {
	NumNodes() int
	NumSuccessors(node int) int
	Successor(node, i int) int
	// Weight of the i'th outgoing edge of node.
	Weight(node, i int) interval.Interval
}

// Partition assigns states to blocks. Two states are in the same class of a
// comparison problem if they are in the same block.
//
// The partition must not change while a Driver uses it.
type Partition interface {
	BlockOf(state int) int
}
