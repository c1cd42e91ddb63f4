// Package graph implements the directed multigraph described in
// spec.md §4.4: a dense slot arena with intrusive adjacency lists and a
// sign-indexed free list. Grounded on
// original_source/crates/graph/src/{graph,graph_node,graph_edge,
// graph_index}.rs.
package graph

import (
	"errors"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/storage"
)

// ElementID is a signed 64-bit id: positive names a node, negative an
// edge, zero is invalid. It is the canonical handle spec.md §3 exposes
// to every layer above the graph.
type ElementID int64

// IsNode reports whether id refers to a node slot.
func (id ElementID) IsNode() bool { return id > 0 }

// IsEdge reports whether id refers to an edge slot.
func (id ElementID) IsEdge() bool { return id < 0 }

// IsValid reports whether id is anything other than the zero sentinel.
func (id ElementID) IsValid() bool { return id != 0 }

// ErrInvalidID is returned when an operation names a node or edge id
// that does not exist.
var ErrInvalidID = errors.New("graph: invalid index")

// nodeSlot is {firstOut, firstIn}: the heads of a node's outgoing and
// incoming adjacency lists, each an edge ElementID or 0.
type nodeSlot struct {
	firstOut int64
	firstIn  int64
}

// edgeSlot is {from, to, nextOut, nextIn}: an edge's endpoints plus the
// "next" pointers threading it into its source's outgoing list and its
// target's incoming list.
type edgeSlot struct {
	from    int64
	to      int64
	nextOut int64
	nextIn  int64
}

const slotSize = 32 // 4 x int64, shared layout for node and edge slots

// freedNodeSlot marks a removed node's slot. A live node with no edges
// is all zero, so a freed node slot carries a 1 in its otherwise unused
// third field to tell the two apart when Open rebuilds the free list.
var freedNodeSlot = [4]int64{0, 0, 1, 0}

var slotCodec = collection.FixedCodec[[4]int64]{
	Size: slotSize,
	Encode: func(v [4]int64) []byte {
		buf := make([]byte, slotSize)
		for i, x := range v {
			putI64(buf[i*8:], x)
		}
		return buf
	},
	Decode: func(b []byte) [4]int64 {
		var v [4]int64
		for i := range v {
			v[i] = getI64(b[i*8:])
		}
		return v
	},
}

func putI64(b []byte, v int64) {
	for i := range 8 {
		b[i] = byte(v >> (8 * i))
	}
}

func getI64(b []byte) int64 {
	var v uint64
	for i := range 8 {
		v |= uint64(b[i]) << (8 * i)
	}
	return int64(v)
}

// Graph is a directed multigraph: nodes and edges share one dense slot
// arena (positive index -> node, negative index -> edge, 0 unused), each
// sign with its own free list recycling removed slots.
type Graph struct {
	nodes *collection.Vector[[4]int64]
	edges *collection.Vector[[4]int64]

	freeNodes []int64 // 1-based node indexes available for reuse
	freeEdges []int64 // 1-based edge magnitudes available for reuse
}

// New creates an empty graph backed by two fresh storage records (one
// for node slots, one for edge slots).
func New(s *storage.Storage) (*Graph, error) {
	nodes, err := collection.NewVector[[4]int64](s, slotCodec)
	if err != nil {
		return nil, err
	}
	edges, err := collection.NewVector[[4]int64](s, slotCodec)
	if err != nil {
		return nil, err
	}
	return &Graph{nodes: nodes, edges: edges}, nil
}

// Open attaches to a graph previously created at the given node/edge
// vector indexes, reconstructing each free list by scanning for freed
// slots: a freed node slot holds freedNodeSlot (written by RemoveNode),
// and a freed edge slot is all zero (written by removeEdgeSlot; a live
// edge always has a nonzero source).
func Open(s *storage.Storage, nodeIndex, edgeIndex storage.Index) (*Graph, error) {
	nodes, err := collection.OpenVector[[4]int64](s, nodeIndex, slotCodec)
	if err != nil {
		return nil, err
	}
	edges, err := collection.OpenVector[[4]int64](s, edgeIndex, slotCodec)
	if err != nil {
		return nil, err
	}
	g := &Graph{nodes: nodes, edges: edges}
	if err := g.rebuildFreeLists(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) rebuildFreeLists() error {
	for i := uint64(0); i < g.nodes.Len(); i++ {
		slot, err := g.nodes.At(i)
		if err != nil {
			return err
		}
		if slot == freedNodeSlot {
			g.freeNodes = append(g.freeNodes, int64(i)+1)
		}
	}
	for i := uint64(0); i < g.edges.Len(); i++ {
		slot, err := g.edges.At(i)
		if err != nil {
			return err
		}
		if slot == ([4]int64{}) {
			g.freeEdges = append(g.freeEdges, int64(i)+1)
		}
	}
	return nil
}

// NodeIndex and EdgeIndex expose the backing vectors' storage indexes so
// the owning DB facade can persist them in its root record.
func (g *Graph) NodeIndex() storage.Index { return g.nodes.Index() }
func (g *Graph) EdgeIndex() storage.Index { return g.edges.Index() }

func (g *Graph) readNode(magnitude int64) (nodeSlot, error) {
	v, err := g.nodes.At(uint64(magnitude - 1))
	if err != nil {
		return nodeSlot{}, err
	}
	return nodeSlot{firstOut: v[0], firstIn: v[1]}, nil
}

func (g *Graph) writeNode(magnitude int64, n nodeSlot) error {
	return g.nodes.Set(uint64(magnitude-1), [4]int64{n.firstOut, n.firstIn, 0, 0})
}

func (g *Graph) readEdge(magnitude int64) (edgeSlot, error) {
	v, err := g.edges.At(uint64(magnitude - 1))
	if err != nil {
		return edgeSlot{}, err
	}
	return edgeSlot{from: v[0], to: v[1], nextOut: v[2], nextIn: v[3]}, nil
}

func (g *Graph) writeEdge(magnitude int64, e edgeSlot) error {
	return g.edges.Set(uint64(magnitude-1), [4]int64{e.from, e.to, e.nextOut, e.nextIn})
}

// NodeExists reports whether id names a live node.
func (g *Graph) NodeExists(id ElementID) bool {
	if !id.IsNode() {
		return false
	}
	magnitude := int64(id)
	if uint64(magnitude) > g.nodes.Len() {
		return false
	}
	n, err := g.readNode(magnitude)
	if err != nil {
		return false
	}
	return !g.isFreeNode(magnitude, n)
}

// EdgeExists reports whether id names a live edge.
func (g *Graph) EdgeExists(id ElementID) bool {
	if !id.IsEdge() {
		return false
	}
	magnitude := -int64(id)
	if uint64(magnitude) > g.edges.Len() {
		return false
	}
	e, err := g.readEdge(magnitude)
	if err != nil {
		return false
	}
	return !g.isFreeEdge(magnitude, e)
}

func (g *Graph) isFreeNode(magnitude int64, n nodeSlot) bool {
	for _, f := range g.freeNodes {
		if f == magnitude {
			return true
		}
	}
	return false
}

func (g *Graph) isFreeEdge(magnitude int64, e edgeSlot) bool {
	for _, f := range g.freeEdges {
		if f == magnitude {
			return true
		}
	}
	return false
}

// InsertNode allocates a node slot, reusing the lowest freed magnitude
// before growing the arena, and returns its positive ElementID.
func (g *Graph) InsertNode() (ElementID, error) {
	magnitude, err := g.allocNode()
	if err != nil {
		return 0, err
	}
	return ElementID(magnitude), nil
}

func (g *Graph) allocNode() (int64, error) {
	if n := len(g.freeNodes); n > 0 {
		lowest := 0
		for i, f := range g.freeNodes {
			if f < g.freeNodes[lowest] {
				lowest = i
			}
		}
		magnitude := g.freeNodes[lowest]
		g.freeNodes = append(g.freeNodes[:lowest], g.freeNodes[lowest+1:]...)
		if err := g.writeNode(magnitude, nodeSlot{}); err != nil {
			return 0, err
		}
		return magnitude, nil
	}
	if err := g.nodes.Push([4]int64{}); err != nil {
		return 0, err
	}
	return int64(g.nodes.Len()), nil
}

// InsertEdge validates that from and to both exist, then allocates an
// edge slot linked at the head of from's outgoing list and to's
// incoming list, returning its negative ElementID.
func (g *Graph) InsertEdge(from, to ElementID) (ElementID, error) {
	if !g.NodeExists(from) || !g.NodeExists(to) {
		return 0, ErrInvalidID
	}
	magnitude, err := g.allocEdge()
	if err != nil {
		return 0, err
	}

	fromNode, err := g.readNode(int64(from))
	if err != nil {
		return 0, err
	}
	toNode, err := g.readNode(int64(to))
	if err != nil {
		return 0, err
	}

	edge := edgeSlot{from: int64(from), to: int64(to), nextOut: fromNode.firstOut, nextIn: toNode.firstIn}
	if err := g.writeEdge(magnitude, edge); err != nil {
		return 0, err
	}

	fromNode.firstOut = -magnitude
	if err := g.writeNode(int64(from), fromNode); err != nil {
		return 0, err
	}
	if from == to {
		toNode = fromNode
	}
	toNode.firstIn = -magnitude
	return ElementID(-magnitude), g.writeNode(int64(to), toNode)
}

func (g *Graph) allocEdge() (int64, error) {
	if n := len(g.freeEdges); n > 0 {
		magnitude := g.freeEdges[n-1]
		g.freeEdges = g.freeEdges[:n-1]
		return magnitude, nil
	}
	if err := g.edges.Push([4]int64{}); err != nil {
		return 0, err
	}
	return int64(g.edges.Len()), nil
}

// RemoveEdge unlinks id from both adjacency lists and frees its slot.
func (g *Graph) RemoveEdge(id ElementID) error {
	if !g.EdgeExists(id) {
		return nil
	}
	return g.removeEdgeSlot(-int64(id))
}

func (g *Graph) removeEdgeSlot(magnitude int64) error {
	e, err := g.readEdge(magnitude)
	if err != nil {
		return err
	}
	if err := g.unlinkOut(e.from, magnitude); err != nil {
		return err
	}
	if err := g.unlinkIn(e.to, magnitude); err != nil {
		return err
	}
	if err := g.writeEdge(magnitude, edgeSlot{}); err != nil {
		return err
	}
	g.freeEdges = append(g.freeEdges, magnitude)
	return nil
}

// unlinkOut removes edge `target` from node `fromMagnitude`'s outgoing
// list.
func (g *Graph) unlinkOut(fromMagnitude, target int64) error {
	n, err := g.readNode(fromMagnitude)
	if err != nil {
		return err
	}
	if -n.firstOut == target {
		e, err := g.readEdge(target)
		if err != nil {
			return err
		}
		n.firstOut = e.nextOut
		return g.writeNode(fromMagnitude, n)
	}
	cur := -n.firstOut
	for cur != 0 {
		e, err := g.readEdge(cur)
		if err != nil {
			return err
		}
		if -e.nextOut == target {
			next, err := g.readEdge(target)
			if err != nil {
				return err
			}
			e.nextOut = next.nextOut
			return g.writeEdge(cur, e)
		}
		cur = -e.nextOut
	}
	return nil
}

// unlinkIn removes edge `target` from node `toMagnitude`'s incoming list.
func (g *Graph) unlinkIn(toMagnitude, target int64) error {
	n, err := g.readNode(toMagnitude)
	if err != nil {
		return err
	}
	if -n.firstIn == target {
		e, err := g.readEdge(target)
		if err != nil {
			return err
		}
		n.firstIn = e.nextIn
		return g.writeNode(toMagnitude, n)
	}
	cur := -n.firstIn
	for cur != 0 {
		e, err := g.readEdge(cur)
		if err != nil {
			return err
		}
		if -e.nextIn == target {
			next, err := g.readEdge(target)
			if err != nil {
				return err
			}
			e.nextIn = next.nextIn
			return g.writeEdge(cur, e)
		}
		cur = -e.nextIn
	}
	return nil
}

// RemoveNode removes every edge incident to id (both directions, self
// loops handled once since each is unlinked the moment it is visited),
// then frees the node's slot. Returns the ids of every edge removed, so
// the owning DB facade can cascade property/index cleanup.
func (g *Graph) RemoveNode(id ElementID) ([]ElementID, error) {
	if !g.NodeExists(id) {
		return nil, nil
	}
	magnitude := int64(id)

	var removed []ElementID
	for {
		n, err := g.readNode(magnitude)
		if err != nil {
			return nil, err
		}
		if n.firstOut == 0 && n.firstIn == 0 {
			break
		}
		var edgeID int64
		if n.firstOut != 0 {
			edgeID = -n.firstOut
		} else {
			edgeID = -n.firstIn
		}
		removed = append(removed, ElementID(-edgeID))
		if err := g.removeEdgeSlot(edgeID); err != nil {
			return nil, err
		}
	}

	if err := g.nodes.Set(uint64(magnitude-1), freedNodeSlot); err != nil {
		return nil, err
	}
	g.freeNodes = append(g.freeNodes, magnitude)
	return removed, nil
}

// EdgeFrom returns the source node of edge id.
func (g *Graph) EdgeFrom(id ElementID) (ElementID, error) {
	e, err := g.readEdge(-int64(id))
	if err != nil {
		return 0, err
	}
	return ElementID(e.from), nil
}

// EdgeTo returns the target node of edge id.
func (g *Graph) EdgeTo(id ElementID) (ElementID, error) {
	e, err := g.readEdge(-int64(id))
	if err != nil {
		return 0, err
	}
	return ElementID(e.to), nil
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() uint64 {
	return g.nodes.Len() - uint64(len(g.freeNodes))
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() uint64 {
	return g.edges.Len() - uint64(len(g.freeEdges))
}
