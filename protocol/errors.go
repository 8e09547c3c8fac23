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

package protocol

import (
	"errors"
	"fmt"
)

var (
	errNegativePlain            = errors.New("plaintext must be non-negative")
	errPlainTooWide             = errors.New("plaintext does not fit in L bits")
	errTruncatedFrame           = errors.New("truncated frame")
	errVectorLengthMismatch     = errors.New("ciphertext vector length mismatch")
	errInvalidBoolFrame         = errors.New("invalid boolean frame")
	errDecryptedValueOutOfRange = errors.New("decrypted value outside expected range")
	errSmallModulus             = errors.New("paillier modulus too small for L and kappa")
)

// Kind classifies a ProtocolError per spec §7's taxonomy.
type Kind int

const (
	// KindTransport covers a closed channel, a truncated frame, or a
	// deserialisation mismatch. Fatal to the session.
	KindTransport Kind = iota
	// KindInvariant covers a decrypted value outside its expected range,
	// a vector length mismatch, or L incompatible with a modulus. Fatal;
	// indicates either a bug or a dishonest peer.
	KindInvariant
	// KindInput covers a plaintext >= 2^L, or a ciphertext under the
	// wrong key. Rejected at entry, before any message is sent.
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindInvariant:
		return "invariant"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// ProtocolError wraps a session-ending failure with its taxonomy kind,
// so a caller can classify the failure without string-matching. It
// never exposes more about the failure than its kind and a terminal
// message: decryption failures and invariant violations deliberately
// produce the same shape of error, so a log line or traced error alone
// cannot be used to distinguish the two (spec §7, side-channel policy).
type ProtocolError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("dgkcompare: %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *ProtocolError {
	return &ProtocolError{Kind: kind, Op: op, Err: err}
}

func transportErr(op string, err error) error { return newErr(KindTransport, op, err) }
func invariantErr(op string, err error) error { return newErr(KindInvariant, op, err) }
func inputErr(op string, err error) error     { return newErr(KindInput, op, err) }
