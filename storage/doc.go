// Package storage defines the persistence contracts for checks, reports,
// and the source corpus, together with the MUS binary encoding used by the
// Badger-backed implementation in storage/badger.
//
// The repository interfaces keep lifecycle rules in one place: UpdateCheck
// rejects illegal status transitions, ClaimNextPending hands each pending
// check to exactly one claimant, and terminal checks are immutable.
package storage
