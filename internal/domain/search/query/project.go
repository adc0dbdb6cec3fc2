package query

// Projection is a query restricted to the fields one level can resolve.
type Projection struct {
	// Root is the simplified tree, nil when the level cannot
	// contribute (Never) or has nothing to check (Always).
	Root Node
	// Always means the level matches unconditionally (e.g. the whole
	// query collapsed to NOT of an unresolvable clause).
	Always bool
	// Never means no document on this level can satisfy the query.
	Never bool
}

// Project restricts the query to clauses resolvable on the given level.
// A clause on a field foreign to the level is unresolvable: inside AND it
// makes the branch unmatchable on this level, inside OR it drops out, and
// under NOT it inverts. This yields the per-level queries of the two-pass
// plan: the child level resolves everything (parent fields are
// denormalized), the parent level resolves only parent-visible fields.
func (q *Query) Project(level Level) Projection {
	if q.IsEmpty() {
		return Projection{Always: true}
	}
	return project(q.Root, level)
}

func project(n Node, level Level) Projection {
	switch v := n.(type) {
	case *Term, *Range:
		nl := levelOf(n)
		if nl == LevelBoth || nl == level {
			return Projection{Root: n}
		}
		return Projection{Never: true}

	case *Not:
		inner := project(v.Child, level)
		switch {
		case inner.Never:
			return Projection{Always: true}
		case inner.Always:
			return Projection{Never: true}
		default:
			return Projection{Root: &Not{Child: inner.Root}}
		}

	case *Bool:
		var kept []Node
		for _, c := range v.Children {
			p := project(c, level)
			switch {
			case p.Never:
				if v.Op == OpAnd {
					return Projection{Never: true}
				}
			case p.Always:
				if v.Op == OpOr {
					return Projection{Always: true}
				}
			default:
				kept = append(kept, p.Root)
			}
		}
		if len(kept) == 0 {
			// all children dropped: AND of Always, or OR of Never
			if v.Op == OpAnd {
				return Projection{Always: true}
			}
			return Projection{Never: true}
		}
		if len(kept) == 1 {
			return Projection{Root: kept[0]}
		}
		return Projection{Root: &Bool{Op: v.Op, Children: kept}}
	}
	return Projection{Never: true}
}
