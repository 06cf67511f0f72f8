// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - PDFExtractor / URLExtractor: Turn a source into normalised text
//   - Chunker: Caps and splits extracted text into chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Per-model vector storage and similarity search
//   - ModelStore: Durable model registry records
//   - CompletionClient / CompletionRouter: Answer generation per backend tag
//   - PromptStore: User-editable prompt templates
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
