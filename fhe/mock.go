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
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Mock oracle errors.
var (
	ErrUnknownRequestID = errors.New("fhe: unknown oracle request id")
	ErrInvalidProof     = errors.New("fhe: invalid decryption proof")
)

// mockScale is the fixed-point scale of the mock ciphertext encoding. A
// plaintext v is carried as v*mockScale, which gives Inverse nine decimal
// digits of precision. All divisions truncate toward zero, so averages
// decoded from mock ciphertexts floor fractional results.
const mockScale = 1_000_000_000

// MockScheme is a deterministic plaintext-tagged stand-in for the real
// encryption primitive. A ciphertext is the 32-byte big-endian encoding
// of the scaled plaintext, so equal values always serialize identically.
// It provides no confidentiality and exists to exercise the contract
// protocol in tests and demos.
type MockScheme struct{}

// NewMockScheme returns a mock scheme.
func NewMockScheme() *MockScheme {
	return &MockScheme{}
}

// Encrypt produces a mock ciphertext holding v.
func (s *MockScheme) Encrypt(v uint64) Ciphertext {
	x := uint256.NewInt(v)
	x.Mul(x, uint256.NewInt(mockScale))
	return wordToCiphertext(x)
}

// Decrypt recovers the plaintext of a mock ciphertext, flooring any
// fractional part left behind by Mul/Inverse.
func (s *MockScheme) Decrypt(c Ciphertext) uint64 {
	x := ciphertextToWord(c)
	x.Div(x, uint256.NewInt(mockScale))
	return x.Uint64()
}

// EncZero implements Scheme.
func (s *MockScheme) EncZero() Ciphertext {
	return wordToCiphertext(new(uint256.Int))
}

// EncOne implements Scheme.
func (s *MockScheme) EncOne() Ciphertext {
	return s.Encrypt(1)
}

// Add implements Scheme.
func (s *MockScheme) Add(a, b Ciphertext) Ciphertext {
	z := new(uint256.Int).Add(ciphertextToWord(a), ciphertextToWord(b))
	return wordToCiphertext(z)
}

// Mul implements Scheme. Both operands carry the fixed-point scale, so
// the product is rescaled once.
func (s *MockScheme) Mul(a, b Ciphertext) Ciphertext {
	z := new(uint256.Int).Mul(ciphertextToWord(a), ciphertextToWord(b))
	z.Div(z, uint256.NewInt(mockScale))
	return wordToCiphertext(z)
}

// Inverse implements Scheme. Inverse(0) yields 0, matching uint256
// division semantics; the contract never inverts an encrypted zero count
// on any path that reaches the oracle.
func (s *MockScheme) Inverse(a Ciphertext) Ciphertext {
	z := new(uint256.Int).Mul(uint256.NewInt(mockScale), uint256.NewInt(mockScale))
	z.Div(z, ciphertextToWord(a))
	return wordToCiphertext(z)
}

// IsInitialized implements Scheme.
func (s *MockScheme) IsInitialized(c Ciphertext) bool {
	return len(c.data) > 0
}

// Serialize implements Scheme.
func (s *MockScheme) Serialize(c Ciphertext) []byte {
	return c.Bytes()
}

func wordToCiphertext(x *uint256.Int) Ciphertext {
	b := x.Bytes32()
	return Ciphertext{data: b[:]}
}

func ciphertextToWord(c Ciphertext) *uint256.Int {
	return new(uint256.Int).SetBytes(c.data)
}

// MockOracle is an in-process decryption oracle for the mock scheme. It
// assigns UUID request ids, decrypts recorded payloads on demand via
// Resolve, and signs every resolution with a secp256k1 key so that
// VerifyProof can reject results it did not produce. Resolved requests
// are kept so tests can replay a callback against the contract.
type MockOracle struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	signer  common.Address
	scheme  *MockScheme
	pending map[RequestID][][]byte
}

// NewMockOracle creates a mock oracle with a fresh signing key.
func NewMockOracle(scheme *MockScheme) (*MockOracle, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &MockOracle{
		key:     key,
		signer:  crypto.PubkeyToAddress(key.PublicKey),
		scheme:  scheme,
		pending: make(map[RequestID][][]byte),
	}, nil
}

// Signer returns the address the oracle signs resolutions with.
func (o *MockOracle) Signer() common.Address {
	return o.signer
}

// RequestDecryption implements Oracle.
func (o *MockOracle) RequestDecryption(payloads [][]byte) (RequestID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stored := make([][]byte, len(payloads))
	for i, p := range payloads {
		buf := make([]byte, len(p))
		copy(buf, p)
		stored[i] = buf
	}
	id := RequestID(uuid.NewString())
	o.pending[id] = stored
	return id, nil
}

// Resolve decrypts the first payload recorded under id and returns the
// cleartext (8-byte big-endian plaintext) with a proof over it. The
// request stays recorded, so a test may resolve it more than once.
func (o *MockOracle) Resolve(id RequestID) (cleartext, proof []byte, err error) {
	o.mu.Lock()
	payloads, ok := o.pending[id]
	o.mu.Unlock()
	if !ok || len(payloads) == 0 {
		return nil, nil, ErrUnknownRequestID
	}

	value := o.scheme.Decrypt(NewCiphertext(payloads[0]))
	cleartext = make([]byte, 8)
	binary.BigEndian.PutUint64(cleartext, value)

	proof, err = crypto.Sign(resolutionDigest(id, cleartext), o.key)
	if err != nil {
		return nil, nil, err
	}
	return cleartext, proof, nil
}

// VerifyProof implements Oracle. The proof is a recoverable secp256k1
// signature over keccak256(id || cleartext); anything not signed by this
// oracle's key is rejected.
func (o *MockOracle) VerifyProof(id RequestID, cleartext, proof []byte) error {
	pub, err := crypto.SigToPub(resolutionDigest(id, cleartext), proof)
	if err != nil {
		return ErrInvalidProof
	}
	if crypto.PubkeyToAddress(*pub) != o.signer {
		return ErrInvalidProof
	}
	return nil
}

func resolutionDigest(id RequestID, cleartext []byte) []byte {
	return crypto.Keccak256([]byte(id), cleartext)
}
