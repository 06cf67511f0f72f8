// Package services implements the driving port interfaces.
//
// IngestionService materialises a model from one document, QueryService
// answers questions against it and ModelService lists and deletes models.
// The Registry they share owns model records and API key hashing.
//
// Services depend only on driven ports, never on concrete adapters.
package services
