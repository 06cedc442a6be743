package catalog

// PathResolver computes full root-to-leaf category paths with memoization.
// The resolver owns its memo table; category values are never mutated.
//
// Parent links are expected to be acyclic, but the walk must terminate on bad
// data: a category whose parent is itself, missing, or part of a cycle is
// treated as a root from the point the walk breaks down.
type PathResolver struct {
	byID  map[int64]Category
	names map[int64][]string
}

// NewPathResolver builds a resolver over the full source category list. The
// input may be in any order; children appearing before their parents is fine.
func NewPathResolver(categories []Category) *PathResolver {
	byID := make(map[int64]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return &PathResolver{
		byID:  byID,
		names: make(map[int64][]string, len(categories)),
	}
}

// Names returns the trimmed root-to-leaf name chain of a category, or nil if
// the category is unknown.
func (r *PathResolver) Names(id int64) []string {
	if chain, ok := r.names[id]; ok {
		return chain
	}
	c, ok := r.byID[id]
	if !ok {
		return nil
	}
	chain := r.walk(c, map[int64]bool{c.ID: true})
	r.names[id] = chain
	return chain
}

// walk ascends from c to the root, reusing memoized ancestor chains. seen
// guards against cycles.
func (r *PathResolver) walk(c Category, seen map[int64]bool) []string {
	if c.IsRoot() || c.ParentID == c.ID {
		return []string{c.Name}
	}
	parent, ok := r.byID[c.ParentID]
	if !ok || seen[parent.ID] {
		// Unresolvable or cyclic parent: treat this node as a root.
		return []string{c.Name}
	}
	if chain, ok := r.names[parent.ID]; ok {
		return append(append([]string(nil), chain...), c.Name)
	}
	seen[parent.ID] = true
	chain := append(r.walk(parent, seen), c.Name)
	r.names[parent.ID] = chain[:len(chain)-1]
	return chain
}

// Path returns the display path of a category (trimmed names, slash-joined).
func (r *PathResolver) Path(id int64) string {
	return JoinPath(r.Names(id))
}

// Key returns the equivalence key of a category's full path.
func (r *PathResolver) Key(id int64) string {
	return PathKey(r.Names(id))
}

// SortParentsFirst orders categories so every parent precedes all of its
// children, preserving the relative source order of siblings. Categories
// whose parent cannot be resolved are treated as roots.
func SortParentsFirst(categories []Category) []Category {
	byID := make(map[int64]bool, len(categories))
	for _, c := range categories {
		byID[c.ID] = true
	}

	placed := make(map[int64]bool, len(categories))
	out := make([]Category, 0, len(categories))

	remaining := append([]Category(nil), categories...)
	for len(remaining) > 0 {
		next := remaining[:0]
		progress := false
		for _, c := range remaining {
			resolvable := c.IsRoot() || c.ParentID == c.ID || !byID[c.ParentID]
			if resolvable || placed[c.ParentID] {
				out = append(out, c)
				placed[c.ID] = true
				progress = true
				continue
			}
			next = append(next, c)
		}
		remaining = next
		if !progress {
			// Cycle among the remaining nodes; emit them in source order so
			// the walk terminates. Their paths degrade to roots in the
			// resolver anyway.
			out = append(out, remaining...)
			break
		}
	}
	return out
}
