// Package graph defines the data model shared by the layout engine,
// the metric engine, and the optimization pipeline.
//
// A [Graph] is an ordered collection of vertices plus a collection of
// undirected edges between them. Vertex order is significant: the layout
// engine guarantees that input index i corresponds to output index i, so
// callers can rely on positional identity across an optimization run.
//
// Positions are normalized: both coordinates of every vertex are expected
// to lie in the unit square [0,1]×[0,1]. The package also provides the
// canonical JSON serialization used for files, caching, and API payloads.
package graph
