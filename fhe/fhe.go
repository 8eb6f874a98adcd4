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

// Package fhe defines the encrypted-integer capability the rating contract
// is built against. The contract only ever manipulates opaque ciphertext
// handles through the Scheme interface and defers all decryption to an
// asynchronous Oracle; the actual cryptographic primitive lives outside
// this module. A deterministic mock of both interfaces is provided for
// tests and the demo binary.
package fhe

// Ciphertext is an opaque handle to an encrypted integer. The zero value
// is the uninitialized state; every other state is produced by a Scheme.
type Ciphertext struct {
	data []byte
}

// NewCiphertext wraps raw handle bytes produced by a scheme. Schemes own
// the encoding of the bytes; callers must treat them as opaque.
func NewCiphertext(data []byte) Ciphertext {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Ciphertext{data: buf}
}

// Bytes returns a copy of the raw handle bytes, or nil for the zero value.
func (c Ciphertext) Bytes() []byte {
	if len(c.data) == 0 {
		return nil
	}
	buf := make([]byte, len(c.data))
	copy(buf, c.data)
	return buf
}

// Scheme is the homomorphic arithmetic capability over Ciphertext values.
// All operations are total over initialized inputs; behaviour on
// uninitialized inputs is undefined and callers must gate on
// IsInitialized first. Precision of Inverse (and therefore of any
// average derived through it) is a property of the concrete scheme.
type Scheme interface {
	// EncZero returns an encryption of the constant 0.
	EncZero() Ciphertext

	// EncOne returns an encryption of the constant 1.
	EncOne() Ciphertext

	// Add returns an encryption of a + b.
	Add(a, b Ciphertext) Ciphertext

	// Mul returns an encryption of a * b.
	Mul(a, b Ciphertext) Ciphertext

	// Inverse returns an encryption of the multiplicative inverse of a.
	Inverse(a Ciphertext) Ciphertext

	// IsInitialized reports whether c holds an encrypted value.
	IsInitialized(c Ciphertext) bool

	// Serialize returns a canonical byte encoding of the handle. Equal
	// ciphertexts serialize to equal bytes; the contract hashes these
	// bytes into decryption commitments.
	Serialize(c Ciphertext) []byte
}

// RequestID identifies a pending decryption at the oracle. IDs are
// assigned by the oracle and are only unique within its domain; the
// contract treats them as opaque keys.
type RequestID string

// Oracle is the asynchronous decryption capability. RequestDecryption
// registers serialized ciphertexts for off-path decryption and returns
// the oracle-assigned id; the cleartext arrives later through whatever
// callback transport the embedding system provides, together with a
// proof that VerifyProof must accept before the result is trusted.
type Oracle interface {
	RequestDecryption(payloads [][]byte) (RequestID, error)

	// VerifyProof checks that (cleartext, proof) is a genuine oracle
	// resolution of the given request. It returns an error on forged or
	// malformed proofs; callers never re-implement this check.
	VerifyProof(id RequestID, cleartext, proof []byte) error
}
