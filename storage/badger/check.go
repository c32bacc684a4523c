package badger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
)

const claimRetryLimit = 8

// CheckRepository implements storage.CheckRepository for BadgerDB.
type CheckRepository struct {
	backend *Backend
}

var _ storage.CheckRepository = (*CheckRepository)(nil)

// NewCheckRepository creates a new CheckRepository.
func NewCheckRepository(backend *Backend) (*CheckRepository, error) {
	return &CheckRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *CheckRepository) Close() error {
	return nil
}

// CreateCheck persists a new pending check and enqueues it.
func (r *CheckRepository) CreateCheck(ctx context.Context, check *core.Check) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckKey(check.Id)
		existing, err := r.readCheck(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if err := tx.Set(key, storage.MarshalCheck(check)); err != nil {
			return err
		}
		if check.Status == core.StatusPending {
			queueKey := makeCheckQueueKey(check.CreatedAt, check.Id)
			if err := tx.Set(queueKey, check.Id[:]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCheck retrieves a check by ID.
func (r *CheckRepository) GetCheck(ctx context.Context, id core.CheckID) (*core.Check, error) {
	var result *core.Check
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readCheck(tx, makeCheckKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateCheck persists the given check state, enforcing legal status
// transitions and keeping the pending queue in sync.
func (r *CheckRepository) UpdateCheck(ctx context.Context, check *core.Check) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckKey(check.Id)
		old, err := r.readCheck(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if old.Status != check.Status && !old.Status.CanTransition(check.Status) {
			return core.ErrInvalidTransition
		}

		if err := tx.Set(key, storage.MarshalCheck(check)); err != nil {
			return err
		}

		// Queue entries track pending status only. The queue key is derived
		// from CreatedAt, so a re-enqueued check keeps its original position.
		queueKey := makeCheckQueueKey(check.CreatedAt, check.Id)
		if old.Status == core.StatusPending && check.Status != core.StatusPending {
			if err := tx.Delete(queueKey); err != nil {
				return err
			}
		}
		if old.Status != core.StatusPending && check.Status == core.StatusPending {
			if err := tx.Set(queueKey, check.Id[:]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ClaimNextPending atomically claims the oldest pending check. Concurrent
// claimants conflict at commit; the loser retries and gets the next check
// in the queue.
func (r *CheckRepository) ClaimNextPending(ctx context.Context, now time.Time) (*core.Check, error) {
	for attempt := 0; attempt < claimRetryLimit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		claimed, err := r.tryClaim(now)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if claimed == nil {
			return nil, storage.ErrNotFound
		}
		return claimed, nil
	}
	return nil, storage.ErrTransactionFailed
}

// tryClaim runs a single claim transaction. A nil check with nil error means
// the queue is empty.
func (r *CheckRepository) tryClaim(now time.Time) (*core.Check, error) {
	var claimed *core.Check
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		scan, err := r.scanQueue(tx, now)
		if err != nil {
			return err
		}

		// Drop stale entries and mark expired checks found along the way.
		for _, key := range scan.staleKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, expired := range scan.expired {
			expired.Status = core.StatusExpired
			if err := tx.Set(makeCheckKey(expired.Id), storage.MarshalCheck(expired)); err != nil {
				return err
			}
		}

		if scan.next != nil {
			scan.next.Status = core.StatusProcessing
			scan.next.StartedAt = now
			scan.next.Attempts++
			if err := tx.Set(makeCheckKey(scan.next.Id), storage.MarshalCheck(scan.next)); err != nil {
				return err
			}
			if err := tx.Delete(scan.nextQueueKey); err != nil {
				return err
			}
			claimed = scan.next
		}
		return tx.Commit()
	}, true)
	return claimed, err
}

type queueScan struct {
	next         *core.Check
	nextQueueKey []byte
	staleKeys    [][]byte
	expired      []*core.Check
}

// scanQueue walks the pending queue in creation order and classifies entries.
// It stops at the first claimable check. Mutations are left to the caller so
// the iterator sees a stable view.
func (r *CheckRepository) scanQueue(tx *badger.Txn, now time.Time) (*queueScan, error) {
	scan := &queueScan{}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(checkQueuePrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().KeyCopy(nil)
		id, ok := queueKeyCheckID(key)
		if !ok {
			scan.staleKeys = append(scan.staleKeys, key)
			continue
		}

		check, err := r.readCheck(tx, makeCheckKey(id))
		if err != nil {
			return nil, err
		}
		if check == nil || check.Status != core.StatusPending {
			scan.staleKeys = append(scan.staleKeys, key)
			continue
		}
		if !check.ExpiresAt.IsZero() && !check.ExpiresAt.After(now) {
			scan.staleKeys = append(scan.staleKeys, key)
			scan.expired = append(scan.expired, check)
			continue
		}

		scan.next = check
		scan.nextQueueKey = key
		break
	}
	return scan, nil
}

// CancelCheck requests cancellation of a check.
func (r *CheckRepository) CancelCheck(ctx context.Context, id core.CheckID, now time.Time) (*core.Check, error) {
	var result *core.Check
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckKey(id)
		check, err := r.readCheck(tx, key)
		if err != nil {
			return err
		}
		if check == nil {
			return storage.ErrNotFound
		}

		switch {
		case check.Status == core.StatusPending:
			check.Status = core.StatusCancelled
			check.CancelRequested = true
			check.CompletedAt = now
			if err := tx.Delete(makeCheckQueueKey(check.CreatedAt, check.Id)); err != nil {
				return err
			}
		case check.Status == core.StatusProcessing:
			check.CancelRequested = true
		default:
			// Terminal checks are left untouched.
			result = check
			return nil
		}

		if err := tx.Set(key, storage.MarshalCheck(check)); err != nil {
			return err
		}
		result = check
		return tx.Commit()
	}, true)
	return result, err
}

// SaveReport persists the report for a completed check.
func (r *CheckRepository) SaveReport(ctx context.Context, report *core.Report) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeReportKey(report.CheckId)
		if err := tx.Set(key, storage.MarshalReport(report)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetReport retrieves the report for a check.
func (r *CheckRepository) GetReport(ctx context.Context, id core.CheckID) (*core.Report, error) {
	var result *core.Report
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeReportKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalReport(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListChecksByStatus returns up to limit checks in the given status, oldest
// first.
func (r *CheckRepository) ListChecksByStatus(ctx context.Context, status core.CheckStatus, limit int) ([]*core.Check, error) {
	var results []*core.Check
	err := r.forEachCheck(func(check *core.Check) {
		if check.Status == status {
			results = append(results, check)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SweepExpired transitions every non-terminal check past its retention
// deadline to expired. Candidates are re-read in the write transaction so a
// check that reached a terminal state after the scan is left untouched.
func (r *CheckRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	var candidates []core.CheckID
	err := r.forEachCheck(func(check *core.Check) {
		if check.Status.Terminal() {
			return
		}
		if !check.ExpiresAt.IsZero() && !check.ExpiresAt.After(now) {
			candidates = append(candidates, check.Id)
		}
	})
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	swept := 0
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range candidates {
			check, err := r.readCheck(tx, makeCheckKey(id))
			if err != nil {
				return err
			}
			if check == nil || !check.Status.CanTransition(core.StatusExpired) {
				continue
			}

			wasPending := check.Status == core.StatusPending
			check.Status = core.StatusExpired
			if err := tx.Set(makeCheckKey(check.Id), storage.MarshalCheck(check)); err != nil {
				return err
			}
			if wasPending {
				if err := tx.Delete(makeCheckQueueKey(check.CreatedAt, check.Id)); err != nil {
					return err
				}
			}
			swept++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return swept, nil
}

// ReclaimStuck returns processing checks whose claim predates cutoff to the
// queue, or fails them once their attempts are spent. Each candidate is
// re-read in the write transaction; one that completed, failed, or was
// cancelled after the scan is left alone.
func (r *CheckRepository) ReclaimStuck(ctx context.Context, cutoff time.Time, maxAttempts int) (int, error) {
	var stuck []core.CheckID
	err := r.forEachCheck(func(check *core.Check) {
		if check.Status == core.StatusProcessing && check.StartedAt.Before(cutoff) {
			stuck = append(stuck, check.Id)
		}
	})
	if err != nil {
		return 0, err
	}
	if len(stuck) == 0 {
		return 0, nil
	}

	reclaimed := 0
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range stuck {
			check, err := r.readCheck(tx, makeCheckKey(id))
			if err != nil {
				return err
			}
			if check == nil || check.Status != core.StatusProcessing || !check.StartedAt.Before(cutoff) {
				continue
			}

			if check.Attempts >= maxAttempts {
				check.Status = core.StatusFailed
				check.ErrorMessage = "worker did not report back before the claim deadline"
				check.CompletedAt = cutoff
			} else {
				check.Status = core.StatusPending
				check.StartedAt = time.Time{}
				queueKey := makeCheckQueueKey(check.CreatedAt, check.Id)
				if err := tx.Set(queueKey, check.Id[:]); err != nil {
					return err
				}
			}
			if err := tx.Set(makeCheckKey(check.Id), storage.MarshalCheck(check)); err != nil {
				return err
			}
			reclaimed++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return reclaimed, nil
}

// Helper methods

// forEachCheck invokes fn for every stored check record in a read snapshot.
func (r *CheckRepository) forEachCheck(fn func(check *core.Check)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var check *core.Check
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				check, unmarshalErr = storage.UnmarshalCheck(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if check != nil {
				fn(check)
			}
		}
		return nil
	}, false)
}

// readCheck reads a check record from the transaction.
func (r *CheckRepository) readCheck(tx *badger.Txn, key []byte) (*core.Check, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var check *core.Check
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		check, unmarshalErr = storage.UnmarshalCheck(val)
		return unmarshalErr
	})
	return check, err
}
