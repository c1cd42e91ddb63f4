package graph

// EdgesFrom returns every edge in node id's outgoing adjacency list, in
// head-insertion order: the most recently inserted edge first, per
// spec.md §4.5's ordering guarantee ("reverse of the order in which
// their edges were inserted").
func (g *Graph) EdgesFrom(id ElementID) ([]ElementID, error) {
	n, err := g.readNode(int64(id))
	if err != nil {
		return nil, err
	}
	var out []ElementID
	cur := -n.firstOut
	for cur != 0 {
		out = append(out, ElementID(-cur))
		e, err := g.readEdge(cur)
		if err != nil {
			return nil, err
		}
		cur = -e.nextOut
	}
	return out, nil
}

// EdgesTo returns every edge in node id's incoming adjacency list, in
// head-insertion order.
func (g *Graph) EdgesTo(id ElementID) ([]ElementID, error) {
	n, err := g.readNode(int64(id))
	if err != nil {
		return nil, err
	}
	var out []ElementID
	cur := -n.firstIn
	for cur != 0 {
		out = append(out, ElementID(-cur))
		e, err := g.readEdge(cur)
		if err != nil {
			return nil, err
		}
		cur = -e.nextIn
	}
	return out, nil
}

// NodeIDs returns every live node id, in ascending (dense slot) order,
// skipping freed slots.
func (g *Graph) NodeIDs() []ElementID {
	var out []ElementID
	for i := uint64(1); i <= g.nodes.Len(); i++ {
		id := ElementID(i)
		if g.NodeExists(id) {
			out = append(out, id)
		}
	}
	return out
}

// EdgeIDs returns every live edge id, in ascending magnitude order.
func (g *Graph) EdgeIDs() []ElementID {
	var out []ElementID
	for i := uint64(1); i <= g.edges.Len(); i++ {
		id := ElementID(-int64(i))
		if g.EdgeExists(id) {
			out = append(out, id)
		}
	}
	return out
}
