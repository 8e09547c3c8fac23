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

// Package ecpointgrouplaw implements the elliptic-curve point group law
// (addition, scalar multiplication, negation) independently of any
// particular curve, so that higher cryptosystems can be written against
// one point type regardless of which concrete curve backs it.
package ecpointgrouplaw

import (
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

var (
	// ErrInvalidPoint is returned if the point is invalid.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrDifferentCurve is returned if the two points are on different elliptic curves.
	ErrDifferentCurve = errors.New("different elliptic curves")

	big0 = big.NewInt(0)
	big2 = big.NewInt(2)
)

// ECPoint is the struct for an elliptic curve point.
type ECPoint struct {
	curve elliptic.Curve
	x     *big.Int
	y     *big.Int
}

// NewECPoint creates an EC-Point and verifies that it lies on the given
// elliptic curve. When x = nil, y = nil, the identity element is returned.
func NewECPoint(curve elliptic.Curve, x *big.Int, y *big.Int) (*ECPoint, error) {
	if !isOnCurve(curve, x, y) {
		return nil, ErrInvalidPoint
	}
	if isIdentity(x, y) {
		return NewIdentity(curve), nil
	}
	return &ECPoint{
		curve: curve,
		x:     new(big.Int).Set(x),
		y:     new(big.Int).Set(y),
	}, nil
}

// NewIdentity returns the identity element of the given elliptic curve.
func NewIdentity(curve elliptic.Curve) *ECPoint {
	return &ECPoint{curve: curve, x: nil, y: nil}
}

// NewBase returns the base point of the given elliptic curve.
func NewBase(curve elliptic.Curve) *ECPoint {
	p := curve.Params()
	return &ECPoint{curve: curve, x: p.Gx, y: p.Gy}
}

// IsIdentity checks if the point is the identity element.
func (p *ECPoint) IsIdentity() bool {
	return isIdentity(p.x, p.y)
}

// String returns the string format of the point.
func (p *ECPoint) String() string {
	if p.IsIdentity() {
		return "(identity)"
	}
	return fmt.Sprintf("(x, y) = (%s, %s)", p.x, p.y)
}

// Add sums up two arbitrary points located on the same elliptic curve.
func (p *ECPoint) Add(p1 *ECPoint) (*ECPoint, error) {
	if !isSameCurve(p.curve, p1.curve) {
		return nil, ErrDifferentCurve
	}
	if !isOnCurve(p.curve, p.x, p.y) {
		return nil, ErrInvalidPoint
	}
	if !isOnCurve(p1.curve, p1.x, p1.y) {
		return nil, ErrInvalidPoint
	}
	if p.IsIdentity() {
		return p1.Copy(), nil
	}
	if p1.IsIdentity() {
		return p.Copy(), nil
	}

	// The case aG + (-a)G: assume aG = (x,y); then (-a)G = (x,-y), so the sum is the identity.
	if p1.x.Cmp(p.x) == 0 {
		tempNegative := new(big.Int).Neg(p1.y)
		tempNegative.Mod(tempNegative, p.curve.Params().P)
		if tempNegative.Cmp(p.y) == 0 {
			return NewIdentity(p.curve), nil
		}
	}
	// The case aG + aG = 2aG.
	if p1.x.Cmp(p.x) == 0 && p1.y.Cmp(p.y) == 0 {
		return p1.ScalarMult(big2), nil
	}
	x, y := p.curve.Add(p.x, p.y, p1.x, p1.y)
	return NewECPoint(p.curve, x, y)
}

// ScalarMult multiplies the point k times. If the point is the identity
// element, it does nothing.
func (p *ECPoint) ScalarMult(k *big.Int) *ECPoint {
	kModN := new(big.Int).Mod(k, p.curve.Params().N)
	if p.IsIdentity() || kModN.Cmp(big0) == 0 {
		return NewIdentity(p.curve)
	}
	newX, newY := p.curve.ScalarMult(p.x, p.y, kModN.Bytes())
	return &ECPoint{curve: p.curve, x: newX, y: newY}
}

// Neg returns the additive inverse of the point.
func (p *ECPoint) Neg() *ECPoint {
	if p.IsIdentity() {
		return NewIdentity(p.curve)
	}
	negativeY := new(big.Int).Neg(p.y)
	negativeY = negativeY.Mod(negativeY, p.curve.Params().P)
	return &ECPoint{curve: p.curve, x: new(big.Int).Set(p.x), y: negativeY}
}

// GetX returns the x coordinate of the point.
func (p *ECPoint) GetX() *big.Int {
	if p.IsIdentity() {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// GetY returns the y coordinate of the point.
func (p *ECPoint) GetY() *big.Int {
	if p.IsIdentity() {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// GetCurve returns the elliptic curve of the point.
func (p *ECPoint) GetCurve() elliptic.Curve {
	return p.curve
}

// IsSameCurve checks if the point is on the same curve as p2.
func (p *ECPoint) IsSameCurve(p2 *ECPoint) bool {
	return isSameCurve(p.curve, p2.curve)
}

// Copy copies the point.
func (p *ECPoint) Copy() *ECPoint {
	if p.IsIdentity() {
		return NewIdentity(p.curve)
	}
	return &ECPoint{curve: p.curve, x: new(big.Int).Set(p.x), y: new(big.Int).Set(p.y)}
}

// Equal checks if the point is the same as p1.
func (p *ECPoint) Equal(p1 *ECPoint) bool {
	return reflect.DeepEqual(p, p1)
}

// Bytes returns the fixed-size big-endian encoding of the point: a
// leading tag byte (0 for the identity, 1 otherwise) followed by the
// curve's byte-length X and Y coordinates. Ciphertexts built from
// ECPoint use this for their wire representation (see protocol/wire.go).
func (p *ECPoint) Bytes() []byte {
	size := (p.curve.Params().BitSize + 7) / 8
	if p.IsIdentity() {
		return make([]byte, 1+2*size)
	}
	out := make([]byte, 1+2*size)
	out[0] = 1
	p.x.FillBytes(out[1 : 1+size])
	p.y.FillBytes(out[1+size : 1+2*size])
	return out
}

// PointFromBytes decodes the encoding produced by Bytes for the given curve.
func PointFromBytes(curve elliptic.Curve, data []byte) (*ECPoint, error) {
	size := (curve.Params().BitSize + 7) / 8
	if len(data) != 1+2*size {
		return nil, ErrInvalidPoint
	}
	if data[0] == 0 {
		return NewIdentity(curve), nil
	}
	x := new(big.Int).SetBytes(data[1 : 1+size])
	y := new(big.Int).SetBytes(data[1+size : 1+2*size])
	return NewECPoint(curve, x, y)
}

func isIdentity(x *big.Int, y *big.Int) bool {
	return x == nil && y == nil
}

func isSameCurve(curve1, curve2 elliptic.Curve) bool {
	return reflect.DeepEqual(curve1, curve2)
}

func isOnCurve(curve elliptic.Curve, x, y *big.Int) bool {
	// The identity element belongs to the elliptic curve group.
	if x == nil && y == nil {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	return curve.IsOnCurve(x, y)
}
