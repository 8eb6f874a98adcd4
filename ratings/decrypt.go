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
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/cipherrate/cipherrate/fhe"
)

// commitmentPreimage is the canonical byte layout hashed into a
// decryption commitment. The commitment binds the raw sum/count pair,
// not the derived average: distinct aggregate states can collapse to the
// same average, and such drift must still be detected. The vault
// identity acts as a domain separator: a commitment minted by one vault
// never validates in another.
type commitmentPreimage struct {
	Sum      []byte
	Count    []byte
	Identity common.Address
}

// aggregateCommitment hashes a batch's current encrypted sum and count
// together with the vault identity. The same derivation runs at request
// time and again at callback time, so any drift of either aggregate
// changes the commitment. Callers hold the lock.
func (v *Vault) aggregateCommitment(b *batch) (common.Hash, error) {
	if !v.scheme.IsInitialized(b.sum) || !v.scheme.IsInitialized(b.count) {
		return common.Hash{}, ErrResultNotInitialized
	}
	enc, err := rlp.EncodeToBytes(&commitmentPreimage{
		Sum:      v.scheme.Serialize(b.sum),
		Count:    v.scheme.Serialize(b.count),
		Identity: v.identity,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// RequestAverageDecryption asks the oracle to reveal the average of the
// current batch. Any caller may request, subject to the pause flag and
// the caller's decryption cooldown; only the current batch id is
// accepted, already-finalized batches are permanently sealed. The batch
// aggregates are committed to, the encrypted average is derived from
// them under encryption and handed to the oracle; the pending request is
// stored under the oracle-assigned id until the callback settles it.
func (v *Vault) RequestAverageDecryption(caller common.Address, batchID uint64) (fhe.RequestID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireNotPaused(); err != nil {
		return "", err
	}
	if err := v.checkCooldown(v.lastDecryptReq, caller); err != nil {
		return "", err
	}
	if batchID != v.currentBatch {
		return "", ErrInvalidBatchID
	}
	b := v.batches[batchID]

	commitment, err := v.aggregateCommitment(b)
	if err != nil {
		return "", err
	}
	avg := v.scheme.Mul(b.sum, v.scheme.Inverse(b.count))
	id, err := v.oracle.RequestDecryption([][]byte{v.scheme.Serialize(avg)})
	if err != nil {
		return "", err
	}

	v.requests[id] = &decryptionRequest{batchID: batchID, commitment: commitment}
	v.lastDecryptReq[caller] = v.now()
	v.emit(Event{Kind: EventDecryptionRequested, Account: caller, BatchID: batchID, RequestID: id, Commitment: commitment})
	log.Info("Decryption requested", "batch", batchID, "request", id, "commitment", commitment)
	return id, nil
}

// OnDecryptionCallback settles a pending decryption with the oracle's
// cleartext and proof. The caller's identity is irrelevant: safety comes
// from the checks below, in order.
//
//  1. The request must exist and must not have been consumed: a request
//     id settles exactly once, a second attempt is a replay.
//  2. The commitment is re-derived from the batch's CURRENT sum and
//     count, independently of anything the oracle claims. If either
//     aggregate moved between request and callback (a new submission
//     landed, the batch id was reused) the commitments differ and the
//     result is refused rather than published against the wrong data —
//     even when the drifted state happens to average to the same value.
//     Closing the batch alone does not change the aggregates and does
//     not trip this.
//  3. The oracle proof must verify over (id, cleartext).
//
// Only then is the cleartext decoded, the request consumed, and the
// plaintext average published on the event log.
func (v *Vault) OnDecryptionCallback(id fhe.RequestID, cleartext, proof []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	req, ok := v.requests[id]
	if !ok {
		return ErrUnknownRequest
	}
	if req.consumed {
		return ErrReplayDetected
	}

	b, ok := v.batches[req.batchID]
	if !ok {
		// Batches are never deleted; a stored request always references
		// an existing batch.
		return ErrUnknownBatch
	}
	commitment, err := v.aggregateCommitment(b)
	if err != nil {
		return err
	}
	if commitment != req.commitment {
		log.Warn("Decryption state mismatch", "request", id, "batch", req.batchID,
			"stored", req.commitment, "recomputed", commitment)
		return ErrStateMismatch
	}

	if err := v.oracle.VerifyProof(id, cleartext, proof); err != nil {
		return err
	}
	if len(cleartext) != 8 {
		return ErrBadCleartext
	}
	average := binary.BigEndian.Uint64(cleartext)

	req.consumed = true
	v.emit(Event{Kind: EventDecryptionCompleted, BatchID: req.batchID, RequestID: id, Average: average})
	log.Info("Decryption completed", "batch", req.batchID, "request", id, "average", average)
	return nil
}

// Request returns the stored view of a decryption request.
func (v *Vault) Request(id fhe.RequestID) (RequestInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	req, ok := v.requests[id]
	if !ok {
		return RequestInfo{}, ErrUnknownRequest
	}
	return RequestInfo{BatchID: req.batchID, Commitment: req.commitment, Consumed: req.consumed}, nil
}
