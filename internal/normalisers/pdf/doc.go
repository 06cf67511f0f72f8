// Package pdf extracts normalised plain text from uploaded PDF files.
//
// Parsing is done in-process with github.com/ledongthuc/pdf, so no external
// tool needs to be installed. Malformed files are reported as
// domain.ErrExtraction, never as a panic.
package pdf
