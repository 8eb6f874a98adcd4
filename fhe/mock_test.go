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

package fhe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockSchemeArithmetic(t *testing.T) {
	s := NewMockScheme()

	require.Equal(t, uint64(7), s.Decrypt(s.Encrypt(7)))
	require.Equal(t, uint64(0), s.Decrypt(s.EncZero()))
	require.Equal(t, uint64(1), s.Decrypt(s.EncOne()))

	sum := s.Add(s.Encrypt(4), s.Encrypt(2))
	require.Equal(t, uint64(6), s.Decrypt(sum))

	prod := s.Mul(s.Encrypt(4), s.Encrypt(2))
	require.Equal(t, uint64(8), s.Decrypt(prod))
}

func TestMockSchemeAverageViaInverse(t *testing.T) {
	s := NewMockScheme()

	// 6 * inverse(2) = 3 exactly.
	avg := s.Mul(s.Encrypt(6), s.Inverse(s.Encrypt(2)))
	require.Equal(t, uint64(3), s.Decrypt(avg))

	// 7 * inverse(2) = 3.5: truncating fixed-point division floors it.
	avg = s.Mul(s.Encrypt(7), s.Inverse(s.Encrypt(2)))
	require.Equal(t, uint64(3), s.Decrypt(avg))

	// 10 * inverse(3) floors to 3 as well.
	avg = s.Mul(s.Encrypt(10), s.Inverse(s.Encrypt(3)))
	require.Equal(t, uint64(3), s.Decrypt(avg))
}

func TestMockSchemeInitialization(t *testing.T) {
	s := NewMockScheme()

	require.False(t, s.IsInitialized(Ciphertext{}), "zero value must be uninitialized")
	require.True(t, s.IsInitialized(s.EncZero()), "an encrypted zero is initialized")
	require.True(t, s.IsInitialized(s.Encrypt(5)))
}

func TestMockSchemeSerializeDeterministic(t *testing.T) {
	s := NewMockScheme()

	a := s.Serialize(s.Encrypt(42))
	b := s.Serialize(s.Encrypt(42))
	require.True(t, bytes.Equal(a, b), "equal values must serialize identically")
	require.Len(t, a, 32)

	c := s.Serialize(s.Encrypt(43))
	require.False(t, bytes.Equal(a, c), "distinct values must serialize distinctly")

	// Round-trip through the raw handle bytes.
	require.Equal(t, uint64(42), s.Decrypt(NewCiphertext(a)))
}

func TestMockOracleResolveAndVerify(t *testing.T) {
	s := NewMockScheme()
	o, err := NewMockOracle(s)
	require.NoError(t, err)

	id, err := o.RequestDecryption([][]byte{s.Serialize(s.Encrypt(9))})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cleartext, proof, err := o.Resolve(id)
	require.NoError(t, err)
	require.Equal(t, uint64(9), binary.BigEndian.Uint64(cleartext))
	require.NoError(t, o.VerifyProof(id, cleartext, proof))
}

func TestMockOracleRejectsForgery(t *testing.T) {
	s := NewMockScheme()
	o, err := NewMockOracle(s)
	require.NoError(t, err)
	other, err := NewMockOracle(s)
	require.NoError(t, err)

	payload := s.Serialize(s.Encrypt(9))
	id, err := o.RequestDecryption([][]byte{payload})
	require.NoError(t, err)
	cleartext, proof, err := o.Resolve(id)
	require.NoError(t, err)

	// Same payload resolved by a different oracle: its signature must
	// not verify against the first oracle.
	otherID, err := other.RequestDecryption([][]byte{payload})
	require.NoError(t, err)
	otherClear, otherProof, err := other.Resolve(otherID)
	require.NoError(t, err)
	require.ErrorIs(t, o.VerifyProof(id, otherClear, otherProof), ErrInvalidProof)

	// Tampered cleartext and malformed proofs are rejected too.
	tampered := append([]byte(nil), cleartext...)
	tampered[0] ^= 0x01
	require.ErrorIs(t, o.VerifyProof(id, tampered, proof), ErrInvalidProof)
	require.ErrorIs(t, o.VerifyProof(id, cleartext, proof[:10]), ErrInvalidProof)
}

func TestMockOracleUnknownRequest(t *testing.T) {
	s := NewMockScheme()
	o, err := NewMockOracle(s)
	require.NoError(t, err)

	_, _, err = o.Resolve("missing")
	require.ErrorIs(t, err, ErrUnknownRequestID)
}
