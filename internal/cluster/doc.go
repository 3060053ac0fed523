// Package cluster turns a MinHash signature matrix into anomaly clusters.
//
// A run makes two full passes over the document pairs of an immutable
// minhash.Matrix:
//
//  1. TopSimilarities samples, for every document, its highest similarity to
//     any other document.
//  2. The sample's mean and population standard deviation give the cutoff
//     mean + k*stddev, and an Assembler collects every ordered pair at or above
//     the cutoff, grouped by the first document's label.
//
// Both passes are O(N^2) similarity evaluations and are fanned out across
// documents. The cutoff depends on the whole first pass, so the passes are not
// fused. PairwiseAssembler is the only Assembler; a bucketed (LSH) assembler
// would plug in through the same interface.
package cluster
