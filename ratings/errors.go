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

import "errors"

// Authorization errors
var (
	ErrNotOwner    = errors.New("caller is not the owner")
	ErrNotProvider = errors.New("caller is not a registered provider")
	ErrZeroOwner   = errors.New("owner must not be the zero address")
)

// Lifecycle errors
var (
	ErrPaused         = errors.New("contract is paused")
	ErrAlreadyPaused  = errors.New("contract is already paused")
	ErrBatchClosed    = errors.New("batch is closed or was never opened")
	ErrInvalidBatchID = errors.New("batch id is not the current batch")
	ErrUnknownBatch   = errors.New("batch id was never opened")
)

// Throttle errors
var (
	ErrCooldownActive = errors.New("cooldown has not elapsed")
)

// Consistency errors: the protocol's core safety faults. Neither may
// ever be swallowed by a caller.
var (
	ErrReplayDetected = errors.New("decryption request already settled")
	ErrStateMismatch  = errors.New("batch aggregates changed since the decryption request")
	ErrUnknownRequest = errors.New("unknown decryption request id")
)

// Precondition errors: invariant violations, not normal user errors.
var (
	ErrResultNotInitialized = errors.New("encrypted aggregate is not initialized")
	ErrBadCleartext         = errors.New("oracle cleartext has unexpected encoding")
)
