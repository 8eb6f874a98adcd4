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
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cipherrate/cipherrate/fhe"
)

// batch is one time-boxed bucket of encrypted submissions. Batches are
// append-only history: once created they are never deleted, and a closed
// batch never reopens.
type batch struct {
	open  bool
	sum   fhe.Ciphertext // encrypted running sum of submitted ratings
	count fhe.Ciphertext // encrypted number of accepted submissions
}

// decryptionRequest is the pending-request record keyed by the
// oracle-assigned id. consumed is monotonic: it flips false->true on the
// first valid callback and the record is kept forever afterwards.
type decryptionRequest struct {
	batchID    uint64
	commitment common.Hash
	consumed   bool
}

// RequestInfo is the read-accessor view of a decryption request.
type RequestInfo struct {
	BatchID    uint64
	Commitment common.Hash
	Consumed   bool
}

// VaultConfig holds the tunable parameters of a Vault.
type VaultConfig struct {
	CooldownSeconds uint64        // minimum spacing between actions per address
	TimeSource      func() uint64 // unix-seconds clock, injectable for tests
}

// DefaultVaultConfig returns the default vault configuration with a
// wall-clock time source.
func DefaultVaultConfig() *VaultConfig {
	return &VaultConfig{
		CooldownSeconds: 60,
		TimeSource:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}
