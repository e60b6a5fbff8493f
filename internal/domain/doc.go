// Package domain defines the core types for the ppiviz protein-protein
// interaction network service.
//
// This package contains the entities and value objects shared by the resolver,
// the interaction fetcher, the graph composer, the analyzer and the layout
// adapter.
//
// # Core Types
//
// Identifier pairs a gene display name with its genomic (GENCODE/Ensembl gene)
// identifier and, when the gene is protein coding, its protein identifier.
//
// InteractionGraph is an undirected graph of proteins whose edges carry the
// experimental confidence score reported by the interaction service. Nodes keep
// their insertion order, which is the iteration order used by every algorithm
// that needs an explicit node ordering (spectral clustering, layouts).
//
// Annotation holds the output of one analysis method: a numeric score or an
// integer community/cluster label per node.
//
// NetworkView is the renderable structure handed to consumers: nodes with
// positions, colours and sizes, edges with endpoint geometry, and deep links.
//
// # Errors
//
// UnknownGeneError, UnsupportedMethodError, UnsupportedLayoutError and
// ConvergenceError are hard failures. A gene without a translated protein and an
// exhausted interaction fetch are soft outcomes reported through ViewStatus.
//
// # Design Principles
//
// - Value types where possible
// - No database or transport dependencies
// - Graph storage delegated to gonum
package domain
