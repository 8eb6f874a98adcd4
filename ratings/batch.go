// Copyright 2025 The cipherrate Authors
// This file is part of the cipherrate library.
//
// The cipherrate library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cipherrate library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cipherrate library. If not, see <http://www.gnu.org/licenses/>.

package ratings

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cipherrate/cipherrate/fhe"
)

// openBatch creates batch id with zero-initialized encrypted aggregates
// and marks it current. Callers hold the lock; only the constructor and
// OpenNewBatch reach this.
func (v *Vault) openBatch(id uint64) {
	v.batches[id] = &batch{
		open:  true,
		sum:   v.scheme.EncZero(),
		count: v.scheme.EncZero(),
	}
	v.currentBatch = id
	v.emit(Event{Kind: EventBatchOpened, BatchID: id})
	log.Info("Batch opened", "batch", id)
}

// closeBatch marks batch id closed. Closing an already-closed (or never
// opened) batch is a silent no-op; the event fires only on an actual
// transition. Callers hold the lock.
func (v *Vault) closeBatch(id uint64) {
	b, ok := v.batches[id]
	if !ok || !b.open {
		return
	}
	b.open = false
	v.emit(Event{Kind: EventBatchClosed, BatchID: id})
	log.Info("Batch closed", "batch", id)
}

// OpenNewBatch atomically closes the current batch and opens the next
// one. Owner-only, rejected while paused.
func (v *Vault) OpenNewBatch(caller common.Address) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return 0, err
	}
	if err := v.requireNotPaused(); err != nil {
		return 0, err
	}
	v.closeBatch(v.currentBatch)
	v.openBatch(v.currentBatch + 1)
	return v.currentBatch, nil
}

// SubmitReview folds an encrypted rating into batch batchID. The value
// stays ciphertext end to end: the sum grows homomorphically and the
// count gains an encrypted one. Provider-only, rejected while paused or
// within the caller's submission cooldown. A closed batch and a batch
// that never existed fail identically with ErrBatchClosed: open is the
// only tracked state.
func (v *Vault) SubmitReview(caller common.Address, batchID uint64, value fhe.Ciphertext) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireNotPaused(); err != nil {
		return err
	}
	if !v.providers.Contains(caller) {
		return ErrNotProvider
	}
	if err := v.checkCooldown(v.lastSubmission, caller); err != nil {
		return err
	}
	b, ok := v.batches[batchID]
	if !ok || !b.open {
		return ErrBatchClosed
	}

	b.sum = v.scheme.Add(b.sum, value)
	b.count = v.scheme.Add(b.count, v.scheme.EncOne())
	v.lastSubmission[caller] = v.now()
	v.emit(Event{Kind: EventReviewSubmitted, Account: caller, BatchID: batchID, Value: value})
	log.Debug("Review submitted", "provider", caller, "batch", batchID)
	return nil
}

// CurrentBatchID returns the id of the current batch.
func (v *Vault) CurrentBatchID() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.currentBatch
}

// BatchOpen reports whether batch id exists and is open.
func (v *Vault) BatchOpen(id uint64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	b, ok := v.batches[id]
	return ok && b.open
}

// BatchAggregates returns the encrypted sum and count handles of batch
// id. The handles are still ciphertext; observers cannot learn anything
// from them without the oracle.
func (v *Vault) BatchAggregates(id uint64) (sum, count fhe.Ciphertext, err error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	b, ok := v.batches[id]
	if !ok {
		return fhe.Ciphertext{}, fhe.Ciphertext{}, ErrUnknownBatch
	}
	return b.sum, b.count, nil
}
