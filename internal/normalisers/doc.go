// Package normalisers groups the source extractors used during ingestion.
// Each subpackage turns one kind of source into normalised text:
//
//   - pdf: text layer of an uploaded PDF (driven.PDFExtractor)
//   - html: readable text of a fetched web page (driven.URLExtractor)
//   - textnorm: shared whitespace and control-character cleanup
//
// Extractors are wired into the ingestion service by internal/app.
package normalisers
