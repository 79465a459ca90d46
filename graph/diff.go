package graph

// Diff is the change that turns an existing fragment into a proposed one.
type Diff struct {
	Added   *Graph
	Removed *Graph
}

// Compare returns added = proposed − existing and removed = existing − proposed.
// Either argument may be nil, meaning empty.
func Compare(existing, proposed *Graph) *Diff {
	return &Diff{
		Added:   proposed.Minus(existing),
		Removed: existing.Minus(proposed),
	}
}

// IsEmpty reports whether the diff changes nothing.
func (d *Diff) IsEmpty() bool {
	return d == nil || (d.Added.IsEmpty() && d.Removed.IsEmpty())
}

// Apply returns (g − Removed) ∪ Added without modifying g.
func (d *Diff) Apply(g *Graph) *Graph {
	out := g.Minus(d.Removed)
	out.Merge(d.Added)
	return out
}

// ApplyInPlace mutates g by removing then adding.
func (d *Diff) ApplyInPlace(g *Graph) {
	if d.Removed != nil {
		for t := range d.Removed.triples {
			delete(g.triples, t)
		}
	}
	g.Merge(d.Added)
}
