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
	"github.com/ethereum/go-ethereum/event"

	"github.com/cipherrate/cipherrate/fhe"
)

// EventKind identifies the state transition an Event records.
type EventKind uint8

const (
	EventOwnershipTransferred EventKind = 0x01
	EventProviderAdded        EventKind = 0x02
	EventProviderRemoved      EventKind = 0x03
	EventPaused               EventKind = 0x04
	EventUnpaused             EventKind = 0x05
	EventCooldownUpdated      EventKind = 0x06
	EventBatchOpened          EventKind = 0x07
	EventBatchClosed          EventKind = 0x08
	EventReviewSubmitted      EventKind = 0x09
	EventDecryptionRequested  EventKind = 0x0a
	EventDecryptionCompleted  EventKind = 0x0b
)

// String returns the event kind name as used in logs.
func (k EventKind) String() string {
	switch k {
	case EventOwnershipTransferred:
		return "OwnershipTransferred"
	case EventProviderAdded:
		return "ProviderAdded"
	case EventProviderRemoved:
		return "ProviderRemoved"
	case EventPaused:
		return "Paused"
	case EventUnpaused:
		return "Unpaused"
	case EventCooldownUpdated:
		return "CooldownUpdated"
	case EventBatchOpened:
		return "BatchOpened"
	case EventBatchClosed:
		return "BatchClosed"
	case EventReviewSubmitted:
		return "ReviewSubmitted"
	case EventDecryptionRequested:
		return "DecryptionRequested"
	case EventDecryptionCompleted:
		return "DecryptionCompleted"
	default:
		return "Unknown"
	}
}

// Event is one entry of the append-only notification log. Every
// successful state mutation appends exactly one event; failed operations
// append nothing. Only the fields meaningful for the Kind are set.
type Event struct {
	Kind EventKind
	Time uint64 // unix seconds at emission

	Account common.Address // acting or subject address

	PrevOwner common.Address // EventOwnershipTransferred
	NewOwner  common.Address // EventOwnershipTransferred

	PrevCooldown uint64 // EventCooldownUpdated
	NewCooldown  uint64 // EventCooldownUpdated

	BatchID uint64 // batch, submission and decryption events

	Value fhe.Ciphertext // EventReviewSubmitted: the still-encrypted rating

	RequestID  fhe.RequestID // decryption events
	Commitment common.Hash   // EventDecryptionRequested
	Average    uint64        // EventDecryptionCompleted: the published cleartext
}

// emit appends an event to the log and forwards it to subscribers.
// Callers hold the vault lock; the feed delivery itself is non-blocking
// only for subscribers that keep their channels drained, matching the
// go-ethereum event.Feed contract.
func (v *Vault) emit(ev Event) {
	ev.Time = v.now()
	v.events = append(v.events, ev)
	v.feed.Send(ev)
}

// Events returns a copy of the full append-only event log.
func (v *Vault) Events() []Event {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Event, len(v.events))
	copy(out, v.events)
	return out
}

// SubscribeEvents subscribes ch to all future events. The subscription
// must be unsubscribed when done, as with any go-ethereum event feed.
func (v *Vault) SubscribeEvents(ch chan<- Event) event.Subscription {
	return v.feed.Subscribe(ch)
}
