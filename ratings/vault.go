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

// Package ratings implements an encrypted rating vault: registered
// providers submit homomorphically-encrypted ratings into time-boxed
// batches, the vault accumulates them without ever decrypting an
// individual submission, and the batch average is revealed exactly once
// through an asynchronous decryption oracle. The request/callback split
// is protected by a commitment over the encrypted aggregates: a callback
// whose batch state drifted since the request is rejected instead of
// publishing a stale answer.
package ratings

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cipherrate/cipherrate/fhe"
)

// Vault is the single global contract state. All mutating operations
// validate fully before touching state, so every returned error implies
// zero side effects; a single mutex gives each operation the all-or-
// nothing execution the protocol assumes.
type Vault struct {
	mu sync.RWMutex

	scheme   fhe.Scheme
	oracle   fhe.Oracle
	identity common.Address // domain separator bound into commitments
	now      func() uint64

	owner     common.Address
	providers mapset.Set[common.Address]
	paused    bool
	cooldown  uint64

	lastSubmission map[common.Address]uint64
	lastDecryptReq map[common.Address]uint64

	currentBatch uint64
	batches      map[uint64]*batch

	requests map[fhe.RequestID]*decryptionRequest

	events []Event
	feed   event.FeedOf[Event]
}

// NewVault constructs a vault owned by owner, bound to identity as its
// commitment domain separator, and opens batch 1 with zero-initialized
// encrypted aggregates. A nil cfg selects DefaultVaultConfig.
func NewVault(owner, identity common.Address, scheme fhe.Scheme, oracle fhe.Oracle, cfg *VaultConfig) (*Vault, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroOwner
	}
	if cfg == nil {
		cfg = DefaultVaultConfig()
	}
	if cfg.TimeSource == nil {
		cfg.TimeSource = DefaultVaultConfig().TimeSource
	}
	v := &Vault{
		scheme:         scheme,
		oracle:         oracle,
		identity:       identity,
		now:            cfg.TimeSource,
		owner:          owner,
		providers:      mapset.NewSet[common.Address](),
		cooldown:       cfg.CooldownSeconds,
		lastSubmission: make(map[common.Address]uint64),
		lastDecryptReq: make(map[common.Address]uint64),
		batches:        make(map[uint64]*batch),
		requests:       make(map[fhe.RequestID]*decryptionRequest),
	}
	v.openBatch(1)
	log.Info("Rating vault created", "owner", owner, "identity", identity, "cooldown", v.cooldown)
	return v, nil
}

// TransferOwnership hands the vault to newOwner. The owner can never
// become the zero address.
func (v *Vault) TransferOwnership(caller, newOwner common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroOwner
	}
	prev := v.owner
	v.owner = newOwner
	v.emit(Event{Kind: EventOwnershipTransferred, Account: caller, PrevOwner: prev, NewOwner: newOwner})
	log.Info("Vault ownership transferred", "previous", prev, "new", newOwner)
	return nil
}

// AddProvider registers addr on the provider allow-list. Re-adding an
// existing provider is a harmless no-op that still emits.
func (v *Vault) AddProvider(caller, addr common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	v.providers.Add(addr)
	v.emit(Event{Kind: EventProviderAdded, Account: addr})
	log.Debug("Provider added", "provider", addr)
	return nil
}

// RemoveProvider clears addr from the provider allow-list. Idempotent.
func (v *Vault) RemoveProvider(caller, addr common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	v.providers.Remove(addr)
	v.emit(Event{Kind: EventProviderRemoved, Account: addr})
	log.Debug("Provider removed", "provider", addr)
	return nil
}

// Pause stops all submissions, batch rotation and decryption requests.
// Fails if already paused.
func (v *Vault) Pause(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	if v.paused {
		return ErrAlreadyPaused
	}
	v.paused = true
	v.emit(Event{Kind: EventPaused, Account: caller})
	log.Info("Vault paused", "by", caller)
	return nil
}

// Unpause resumes operation. Unpausing a running vault succeeds
// silently and emits nothing: the event log only records transitions
// that happened.
func (v *Vault) Unpause(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	if !v.paused {
		return nil
	}
	v.paused = false
	v.emit(Event{Kind: EventUnpaused, Account: caller})
	log.Info("Vault unpaused", "by", caller)
	return nil
}

// SetCooldown updates the per-address action cooldown.
func (v *Vault) SetCooldown(caller common.Address, seconds uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	prev := v.cooldown
	v.cooldown = seconds
	v.emit(Event{Kind: EventCooldownUpdated, Account: caller, PrevCooldown: prev, NewCooldown: seconds})
	log.Info("Cooldown updated", "previous", prev, "new", seconds)
	return nil
}

// requireOwner gates owner-only operations. Callers hold the lock.
func (v *Vault) requireOwner(caller common.Address) error {
	if caller != v.owner {
		return ErrNotOwner
	}
	return nil
}

// requireNotPaused gates operations disabled while paused. Callers hold
// the lock.
func (v *Vault) requireNotPaused() error {
	if v.paused {
		return ErrPaused
	}
	return nil
}

// checkCooldown verifies that addr's last action in stamps is at least
// the cooldown ago. Callers hold the lock; the stamp is only written
// after the whole operation has validated.
func (v *Vault) checkCooldown(stamps map[common.Address]uint64, addr common.Address) error {
	if last, ok := stamps[addr]; ok && v.now() < last+v.cooldown {
		return ErrCooldownActive
	}
	return nil
}

// Owner returns the current owner address.
func (v *Vault) Owner() common.Address {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.owner
}

// IsProvider reports whether addr is on the provider allow-list.
func (v *Vault) IsProvider(addr common.Address) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.providers.Contains(addr)
}

// IsPaused reports whether the vault is paused.
func (v *Vault) IsPaused() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.paused
}

// Cooldown returns the per-address action cooldown in seconds.
func (v *Vault) Cooldown() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cooldown
}
