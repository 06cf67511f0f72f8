// Package html fetches web pages and extracts their readable text.
// Scripts, styles and page chrome are dropped, entities are decoded by the
// parser, and the result goes through the shared text normalisation.
package html
