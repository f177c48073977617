// Package normalisers provides PageExtractor implementations that turn a
// source document into per-page text. Each subpackage handles one file
// format; Registry routes a path to the extractor that supports it.
package normalisers
