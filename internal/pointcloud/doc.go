// Package pointcloud owns the point-cloud analysis pipeline.
//
// Responsibilities: loading coordinate tuples from a (possibly malformed)
// JSON document, deriving centroid and distance statistics, and partitioning
// points into a core band and a randomly subsampled outer band for display.
// Key types: Point, PointSet, Stats, Classification, View.
//
// Rendering lives in internal/render; this package never draws.
package pointcloud
