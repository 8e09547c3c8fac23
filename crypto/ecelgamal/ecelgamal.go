// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ecelgamal implements additively-homomorphic ElGamal encryption
// over a prime-order elliptic curve group. Plaintexts are encoded as
// scalar multiples of the curve's base point, so Decrypt recovers m·P
// rather than m itself; callers that only need to test a ciphertext
// against a known plaintext point (as the DGK comparator does against
// the identity) never need a discrete-log step.
package ecelgamal

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	pt "github.com/sec-compare/dgkcompare/crypto/ecpointgrouplaw"
	"github.com/sec-compare/dgkcompare/crypto/elliptic"
)

var (
	// ErrInvalidCiphertext is returned when a ciphertext does not belong
	// to the expected curve.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	// ErrDifferentCurve is returned when two operands are on different curves.
	ErrDifferentCurve = errors.New("different curve")

	big1 = big.NewInt(1)
)

// PrivateKey is a curve-ElGamal secret scalar.
type PrivateKey struct {
	curve elliptic.Curve
	x     *big.Int
}

// PublicKey is a curve-ElGamal public key, h = x·P.
type PublicKey struct {
	curve elliptic.Curve
	h     *pt.ECPoint
}

// Ciphertext is a curve-ElGamal ciphertext (c1, c2) = (r·P, m·P + r·h).
type Ciphertext struct {
	c1 *pt.ECPoint
	c2 *pt.ECPoint
}

// GenerateKey creates a fresh curve-ElGamal key pair over curve.
func GenerateKey(curve elliptic.Curve) (*PrivateKey, *PublicKey, error) {
	order := curve.Params().N
	x, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, err
	}
	if x.Sign() == 0 {
		x = big1
	}
	h := pt.NewBase(curve).ScalarMult(x)
	return &PrivateKey{curve: curve, x: x}, &PublicKey{curve: curve, h: h}, nil
}

// Curve returns the public key's curve.
func (pub *PublicKey) Curve() elliptic.Curve { return pub.curve }

// EncodePlain encodes an integer value (which may be negative) as
// value·P on the curve, the plaintext encoding curve ElGamal operates
// on. Callers must ensure |value| stays within the curve's scalar
// field; the bit-vector encoder (protocol.Encode) is responsible for
// bounding it via L.
func EncodePlain(curve elliptic.Curve, value *big.Int) *pt.ECPoint {
	base := pt.NewBase(curve)
	if value.Sign() < 0 {
		return base.ScalarMult(new(big.Int).Abs(value)).Neg()
	}
	return base.ScalarMult(value)
}

// Encrypt encrypts the curve point m under pub, drawing fresh randomness
// from rng.
func Encrypt(pub *PublicKey, m *pt.ECPoint, rng io.Reader) (*Ciphertext, error) {
	r, err := rand.Int(rng, pub.curve.Params().N)
	if err != nil {
		return nil, err
	}
	c1 := pt.NewBase(pub.curve).ScalarMult(r)
	rh := pub.h.ScalarMult(r)
	c2, err := m.Add(rh)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{c1: c1, c2: c2}, nil
}

// Decrypt recovers the plaintext point m·P = c2 - x·c1.
func Decrypt(priv *PrivateKey, c *Ciphertext) (*pt.ECPoint, error) {
	if !c.c1.IsSameCurve(pt.NewBase(priv.curve)) {
		return nil, ErrInvalidCiphertext
	}
	xc1 := c.c1.ScalarMult(priv.x)
	return c.c2.Add(xc1.Neg())
}

// Add sums two ciphertexts component-wise; the result encrypts the sum
// of the underlying plaintext points.
func Add(c1, c2 *Ciphertext) (*Ciphertext, error) {
	a, err := c1.c1.Add(c2.c1)
	if err != nil {
		return nil, err
	}
	b, err := c1.c2.Add(c2.c2)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{c1: a, c2: b}, nil
}

// Negate returns a ciphertext encrypting the inverse of c's plaintext.
func Negate(c *Ciphertext) *Ciphertext {
	return &Ciphertext{c1: c.c1.Neg(), c2: c.c2.Neg()}
}

// Rerandomize returns a fresh ciphertext with the same plaintext as c
// but independent randomness, blinding it from linkability with c.
func Rerandomize(pub *PublicKey, c *Ciphertext, rng io.Reader) (*Ciphertext, error) {
	zero := pt.NewIdentity(pub.curve)
	blank, err := Encrypt(pub, zero, rng)
	if err != nil {
		return nil, err
	}
	return Add(c, blank)
}

// ScalarMult multiplies both components of c by r, carrying c's
// plaintext point m·P to (r·m)·P. Unlike Rerandomize, which keeps c's
// plaintext fixed and only refreshes its randomness, this scales the
// plaintext itself: r must be drawn uniformly at random from the
// curve's scalar field and non-zero, or the result collapses to an
// encryption of the identity regardless of m. This is the blinding
// operation the plaintext comparator's shuffle step needs (spec §4.2
// step 3, §6): a non-matching index must become indistinguishable from
// any other scaled point, not merely carry fresh randomness under the
// same value.
func ScalarMult(c *Ciphertext, r *big.Int) *Ciphertext {
	return &Ciphertext{c1: c.c1.ScalarMult(r), c2: c.c2.ScalarMult(r)}
}

// IsIdentity reports whether p is the curve's identity element (the
// encoding of the plaintext zero).
func IsIdentity(p *pt.ECPoint) bool {
	return p.IsIdentity()
}

// Bytes returns the fixed-size wire encoding of the ciphertext: the
// concatenation of c1's and c2's point encodings (crypto/ecpointgrouplaw.Bytes).
func (c *Ciphertext) Bytes() []byte {
	return append(c.c1.Bytes(), c.c2.Bytes()...)
}

// CiphertextFromBytes decodes the encoding produced by Bytes for the given curve.
func CiphertextFromBytes(curve elliptic.Curve, data []byte) (*Ciphertext, error) {
	half := len(data) / 2
	if half*2 != len(data) {
		return nil, ErrInvalidCiphertext
	}
	c1, err := pt.PointFromBytes(curve, data[:half])
	if err != nil {
		return nil, err
	}
	c2, err := pt.PointFromBytes(curve, data[half:])
	if err != nil {
		return nil, err
	}
	return &Ciphertext{c1: c1, c2: c2}, nil
}
