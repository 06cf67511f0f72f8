// Package domain defines the core business entities for ragkit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Model: A registered model bound to a vector index and a completion backend
//   - Chunk: The unit of text embedded and stored in a vector index
//   - Extraction: Normalised text produced from a PDF or web page
//   - QueryResult: A generated answer plus its retrieved context
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
