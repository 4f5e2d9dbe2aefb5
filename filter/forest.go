package filter

import "sort"

// Forest is an immutable snapshot of filter groups.
//
// Groups are stored in an arena in insertion order and linked only through
// ParentID, so traversal is always by id lookup. A group whose ParentID is
// empty or names a missing group is a root. Cycles are not rejected; groups on
// a cycle are never reachable from a root.
type Forest struct {
	groups   []Group
	index    map[string]int
	children map[string][]int
}

// NewForest builds a forest from groups.
// A later group with an already seen ID replaces the earlier one in place.
func NewForest(groups []Group) *Forest {
	f := &Forest{
		groups:   make([]Group, 0, len(groups)),
		index:    make(map[string]int, len(groups)),
		children: make(map[string][]int),
	}
	for _, g := range groups {
		if i, ok := f.index[g.ID]; ok {
			f.groups[i] = g
			continue
		}
		f.index[g.ID] = len(f.groups)
		f.groups = append(f.groups, g)
	}
	for i, g := range f.groups {
		if g.ParentID != "" {
			f.children[g.ParentID] = append(f.children[g.ParentID], i)
		}
	}
	return f
}

// Len returns the number of groups.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.groups)
}

// Groups returns all groups in insertion order.
func (f *Forest) Groups() []Group {
	if f == nil {
		return nil
	}
	out := make([]Group, len(f.groups))
	copy(out, f.groups)
	return out
}

// Group returns the group with the given id.
func (f *Forest) Group(id string) (Group, bool) {
	if f == nil {
		return Group{}, false
	}
	i, ok := f.index[id]
	if !ok {
		return Group{}, false
	}
	return f.groups[i], true
}

// Has reports whether a group with the given id exists.
func (f *Forest) Has(id string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[id]
	return ok
}

// IsRoot reports whether g has no parent in this forest.
func (f *Forest) IsRoot(g Group) bool {
	return g.ParentID == "" || !f.Has(g.ParentID)
}

// Roots returns the root groups applying to layerID, in insertion order.
func (f *Forest) Roots(layerID string) []Group {
	if f == nil {
		return nil
	}
	var out []Group
	for _, g := range f.groups {
		if f.IsRoot(g) && g.HasLayer(layerID) {
			out = append(out, g)
		}
	}
	return out
}

// Children returns the direct children of the group with the given id.
func (f *Forest) Children(id string) []Group {
	if f == nil {
		return nil
	}
	idx := f.children[id]
	out := make([]Group, 0, len(idx))
	for _, i := range idx {
		out = append(out, f.groups[i])
	}
	return out
}

// LayerIDs returns every layer id referenced by a group, sorted.
func (f *Forest) LayerIDs() []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, g := range f.groups {
		for _, id := range g.LayerIDs {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// With returns a new forest where the group with g.ID is replaced by g, or g
// is appended when no such group exists. The receiver is not modified.
func (f *Forest) With(g Group) *Forest {
	groups := f.Groups()
	return NewForest(append(groups, g))
}

// Without returns a new forest without the group with the given id.
// Children of the removed group become roots.
func (f *Forest) Without(id string) *Forest {
	groups := f.Groups()
	out := groups[:0]
	for _, g := range groups {
		if g.ID != id {
			out = append(out, g)
		}
	}
	return NewForest(out)
}
