// Package filter provides the filter model of the map viewer: attribute and
// spatial filters arranged in groups, and groups arranged in a forest.
//
// Groups are immutable snapshots. A change is expressed by building a
// replacement group (see Group.Clone) and handing it to the collaborator that
// owns application state.
//
// # Forest
//
// Groups reference their parent by id only:
//
//	forest := filter.NewForest([]filter.Group{
//	    {ID: "g1", LayerIDs: []string{"parcels"}, Operator: filter.OperatorAnd, Filters: ...},
//	    {ID: "g2", LayerIDs: []string{"parcels"}, Operator: filter.OperatorOr, ParentID: "g1"},
//	})
//
// A group whose parent is missing from the forest is treated as a root.
//
// # Snapshots
//
// Collaborators exchange forests as JSON:
//
//	forest, err := filter.ParseForest(data)
//
// Filters are discriminated by their "type" field:
//   - ATTRIBUTE: attribute, attributeType, condition, invertCondition, caseSensitive, value
//   - SPATIAL: geometryColumns, geometries, referenceLayerId, buffer
package filter
