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

import "testing"

func TestEventSubscription(t *testing.T) {
	v, scheme, _, _ := newTestVault(t)

	ch := make(chan Event, 16)
	sub := v.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	if err := v.SubmitReview(testProvider, 1, scheme.Encrypt(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := v.OpenNewBatch(testOwner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Submission, close, open: delivered in emission order.
	want := []EventKind{EventReviewSubmitted, EventBatchClosed, EventBatchOpened}
	for i, kind := range want {
		ev := <-ch
		if ev.Kind != kind {
			t.Errorf("event %d is %v, want %v", i, ev.Kind, kind)
		}
	}
}

func TestEventLogIsAppendOnly(t *testing.T) {
	v, scheme, _, _ := newTestVault(t)

	before := len(v.Events())
	if err := v.SubmitReview(testProvider, 1, scheme.Encrypt(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := v.Events()
	if len(events) != before+1 {
		t.Fatalf("log grew by %d, want 1", len(events)-before)
	}

	// Mutating the returned slice must not touch the log.
	events[0].Kind = 0xff
	if v.Events()[0].Kind == 0xff {
		t.Error("Events must return a copy")
	}

	ev := events[len(events)-1]
	if ev.Kind != EventReviewSubmitted || ev.Account != testProvider || ev.BatchID != 1 {
		t.Errorf("submission event %+v malformed", ev)
	}
	if !scheme.IsInitialized(ev.Value) {
		t.Error("submission event should carry the encrypted value")
	}
	if scheme.Decrypt(ev.Value) != 4 {
		t.Error("submission event should carry the submitted ciphertext unchanged")
	}
}

func TestFailedOperationsEmitNothing(t *testing.T) {
	v, scheme, _, _ := newTestVault(t)

	before := len(v.Events())
	_ = v.SubmitReview(testOutsider, 1, scheme.Encrypt(4))
	_, _ = v.OpenNewBatch(testOutsider)
	_ = v.Pause(testOutsider)
	if len(v.Events()) != before {
		t.Error("rejected operations must not append events")
	}
}
