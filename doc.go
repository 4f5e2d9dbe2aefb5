// Package layerfilter compiles map-viewer filter trees to CQL and keeps
// spatial filters fed by reference layers up to date.
//
// The building blocks live in subpackages:
//   - filter: groups, attribute and spatial filters, the group forest and its
//     JSON codec
//   - cql: compiles the forest into one CQL predicate per layer
//   - geometry: classifies, renders and intersects filter shapes
//   - refsync: fetches reference-layer geometries and merges them into
//     spatial filters
//   - store: an in-memory group store usable as a synchronizer sink
//   - feature and flight: feature sources, including an Arrow Flight client
//     and a reference Flight server
//
// # Quick Start
//
// Compile the predicate of a layer:
//
//	forest, err := filter.ParseForest(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	predicate := cql.Compile(forest, "parcels")
//
// Keep reference-layer geometries in sync with the groups in a store:
//
//	groups := store.NewMemory(forest.Groups()...)
//	client, err := flight.NewClient(flight.ClientConfig{Address: "localhost:50051"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	s, err := layerfilter.NewSynchronizer(layerfilter.Config{
//	    Fetcher: client,
//	    Sink:    groups,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go s.Run(ctx, groups.Subscribe(ctx))
//
// # Reference Layers
//
// A spatial filter with a ReferenceLayerID takes its shapes from the
// features of another layer that match that layer's own filters. The
// synchronizer compiles the reference layer predicate, fetches once per
// changed predicate and replaces only the geometries that came from the
// reference layer. User-drawn shapes in the same filter are kept.
//
// # Logging and Metrics
//
// Config.Logger receives structured logs via log/slog. When
// Config.MetricsRegisterer is set, fetch, cache and eviction collectors are
// registered under the layerfilter_refsync prefix.
package layerfilter
