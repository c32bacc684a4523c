// Package index provides flat in-memory vector indexes over the source
// corpus, one per source type. Search is an exact scan scored by cosine
// similarity; at corpus sizes in the tens of thousands of chunks this is
// fast enough that an approximate structure would not pay for itself.
// Snapshots persist an index to disk between runs.
package index
