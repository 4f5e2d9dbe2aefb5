package filter

import (
	"slices"
	"testing"
)

func groupIDs(groups []Group) []string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestForestRoots(t *testing.T) {
	forest := NewForest([]Group{
		{ID: "a", LayerIDs: []string{"parcels"}},
		{ID: "b", LayerIDs: []string{"parcels"}, ParentID: "a"},
		{ID: "c", LayerIDs: []string{"parcels", "roads"}, ParentID: "missing"},
		{ID: "d", LayerIDs: []string{"roads"}},
		{ID: "e", LayerIDs: []string{"parcels"}, ParentID: "e"},
	})

	tests := []struct {
		layer string
		want  []string
	}{
		{"parcels", []string{"a", "c"}},
		{"roads", []string{"c", "d"}},
		{"rivers", nil},
	}

	for _, tt := range tests {
		t.Run(tt.layer, func(t *testing.T) {
			got := groupIDs(forest.Roots(tt.layer))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected roots %v, got %v", tt.want, got)
			}
		})
	}
}

func TestForestChildrenKeepOrder(t *testing.T) {
	forest := NewForest([]Group{
		{ID: "root"},
		{ID: "c2", ParentID: "root"},
		{ID: "c1", ParentID: "root"},
		{ID: "gc", ParentID: "c1"},
	})

	if got := groupIDs(forest.Children("root")); !slices.Equal(got, []string{"c2", "c1"}) {
		t.Errorf("expected [c2 c1], got %v", got)
	}
	if got := forest.Children("gc"); len(got) != 0 {
		t.Errorf("expected no children, got %v", groupIDs(got))
	}
}

func TestForestDuplicateIDReplacesInPlace(t *testing.T) {
	forest := NewForest([]Group{
		{ID: "a", Source: "first"},
		{ID: "b"},
		{ID: "a", Source: "second"},
	})

	if forest.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", forest.Len())
	}
	g, ok := forest.Group("a")
	if !ok || g.Source != "second" {
		t.Errorf("expected group a from second entry, got %+v", g)
	}
	if got := groupIDs(forest.Groups()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected order [a b], got %v", got)
	}
}

func TestForestWithAndWithout(t *testing.T) {
	base := NewForest([]Group{
		{ID: "a", LayerIDs: []string{"parcels"}},
		{ID: "b", LayerIDs: []string{"parcels"}, ParentID: "a"},
	})

	replaced := base.With(Group{ID: "a", LayerIDs: []string{"parcels"}, Disabled: true})
	if g, _ := replaced.Group("a"); !g.Disabled {
		t.Errorf("expected replaced group to be disabled")
	}
	if g, _ := base.Group("a"); g.Disabled {
		t.Errorf("expected original forest to be unchanged")
	}

	removed := base.Without("a")
	if removed.Has("a") {
		t.Errorf("expected group a to be removed")
	}
	if got := groupIDs(removed.Roots("parcels")); !slices.Equal(got, []string{"b"}) {
		t.Errorf("expected orphan b to become a root, got %v", got)
	}
}

func TestForestLayerIDs(t *testing.T) {
	forest := NewForest([]Group{
		{ID: "a", LayerIDs: []string{"roads", "parcels"}},
		{ID: "b", LayerIDs: []string{"parcels"}},
	})
	if got := forest.LayerIDs(); !slices.Equal(got, []string{"parcels", "roads"}) {
		t.Errorf("expected [parcels roads], got %v", got)
	}
}

func TestNilForest(t *testing.T) {
	var forest *Forest
	if forest.Len() != 0 || forest.Has("a") || len(forest.Roots("x")) != 0 {
		t.Errorf("expected nil forest to behave as empty")
	}
	if f := forest.With(Group{ID: "a"}); !f.Has("a") {
		t.Errorf("expected With on nil forest to add the group")
	}
}

func TestGroupCloneIsDeep(t *testing.T) {
	buffer := 5.0
	g := Group{
		ID:       "g",
		LayerIDs: []string{"parcels"},
		Filters: []Filter{
			&AttributeFilter{BaseFilter: BaseFilter{ID: "f1"}, Attribute: "name", Value: []string{"x"}},
			&SpatialFilter{
				BaseFilter:      BaseFilter{ID: "f2"},
				GeometryColumns: []GeometryColumns{{LayerID: "parcels", Columns: []string{"geom"}}},
				Geometries:      []Geometry{{ID: "g1", Text: "POINT(1 2)"}},
				Buffer:          &buffer,
			},
		},
	}

	c := g.Clone()
	c.LayerIDs[0] = "roads"
	c.Filters[0].(*AttributeFilter).Value[0] = "y"
	sf := c.Filters[1].(*SpatialFilter)
	sf.Geometries[0].Text = "POINT(3 4)"
	sf.GeometryColumns[0].Columns[0] = "other"
	*sf.Buffer = 10

	if g.LayerIDs[0] != "parcels" {
		t.Errorf("layer ids shared with clone")
	}
	if g.Filters[0].(*AttributeFilter).Value[0] != "x" {
		t.Errorf("attribute values shared with clone")
	}
	orig := g.Filters[1].(*SpatialFilter)
	if orig.Geometries[0].Text != "POINT(1 2)" || orig.GeometryColumns[0].Columns[0] != "geom" || *orig.Buffer != 5 {
		t.Errorf("spatial filter data shared with clone")
	}
}

func TestSpatialFilterColumnsForLayer(t *testing.T) {
	sf := &SpatialFilter{GeometryColumns: []GeometryColumns{
		{LayerID: "parcels", Columns: []string{"geom"}},
		{LayerID: "roads", Columns: []string{"centerline"}},
		{LayerID: "parcels", Columns: []string{"footprint"}},
	}}
	if got := sf.ColumnsForLayer("parcels"); !slices.Equal(got, []string{"geom", "footprint"}) {
		t.Errorf("expected [geom footprint], got %v", got)
	}
	if got := sf.ColumnsForLayer("rivers"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
