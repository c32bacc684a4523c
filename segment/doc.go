// Package segment splits submission text into overlapping word-bounded chunks.
//
// Chunking is the unit of embedding and matching: each chunk becomes one
// vector, and adjacent chunks overlap by a fixed number of words so that
// matches spanning a chunk boundary are still visible to the matcher.
package segment
