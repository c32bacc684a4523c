// Package ingest builds the reference corpus: documents are segmented,
// embedded, added to the per-type vector indexes, and registered in the
// source repository. Video transcripts keep per-chunk MM:SS offsets so
// reports can point at the matching moment.
package ingest
