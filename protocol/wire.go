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
	"context"
	"encoding/binary"

	"github.com/sec-compare/dgkcompare/crypto/ecelgamal"
	"github.com/sec-compare/dgkcompare/crypto/elliptic"
	"github.com/sec-compare/dgkcompare/crypto/paillier"
	"github.com/sec-compare/dgkcompare/transport"
)

// The wire format is position-based (spec §6): both sides know from
// local protocol state what the next frame must be, so no type tag is
// carried on the wire — only the encoding of a curve ElGamal ciphertext
// vector, a Paillier ciphertext, a pair of Paillier ciphertexts, or a
// single boolean byte. Vector and pair frames carry uint32 big-endian
// count and length prefixes ahead of each element's raw encoding.

func sendCiphertextVector(ctx context.Context, ch transport.Channel, vec []*ecelgamal.Ciphertext) error {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(vec)))
	for _, c := range vec {
		part := c.Bytes()
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(part)))
		buf = append(buf, part...)
	}
	if err := ch.Send(ctx, buf); err != nil {
		return transportErr("send ciphertext vector", err)
	}
	return nil
}

func recvCiphertextVector(ctx context.Context, ch transport.Channel, curve elliptic.Curve, wantLen int) ([]*ecelgamal.Ciphertext, error) {
	frame, err := ch.Recv(ctx)
	if err != nil {
		return nil, transportErr("recv ciphertext vector", err)
	}
	if len(frame) < 4 {
		return nil, transportErr("recv ciphertext vector", errTruncatedFrame)
	}
	n := binary.BigEndian.Uint32(frame[:4])
	frame = frame[4:]
	if wantLen >= 0 && int(n) != wantLen {
		return nil, invariantErr("recv ciphertext vector", errVectorLengthMismatch)
	}
	out := make([]*ecelgamal.Ciphertext, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(frame) < 4 {
			return nil, transportErr("recv ciphertext vector", errTruncatedFrame)
		}
		size := binary.BigEndian.Uint32(frame[:4])
		frame = frame[4:]
		if uint32(len(frame)) < size {
			return nil, transportErr("recv ciphertext vector", errTruncatedFrame)
		}
		ct, err := ecelgamal.CiphertextFromBytes(curve, frame[:size])
		if err != nil {
			return nil, invariantErr("recv ciphertext vector", err)
		}
		out = append(out, ct)
		frame = frame[size:]
	}
	return out, nil
}

func sendBool(ctx context.Context, ch transport.Channel, b bool) error {
	var v byte
	if b {
		v = 1
	}
	if err := ch.Send(ctx, []byte{v}); err != nil {
		return transportErr("send bool", err)
	}
	return nil
}

func recvBool(ctx context.Context, ch transport.Channel) (bool, error) {
	frame, err := ch.Recv(ctx)
	if err != nil {
		return false, transportErr("recv bool", err)
	}
	if len(frame) != 1 || frame[0] > 1 {
		return false, invariantErr("recv bool", errInvalidBoolFrame)
	}
	return frame[0] == 1, nil
}

func sendPaillierCiphertext(ctx context.Context, ch transport.Channel, pub *paillier.PublicKey, c *paillier.Ciphertext) error {
	if err := ch.Send(ctx, c.Bytes(pub)); err != nil {
		return transportErr("send paillier ciphertext", err)
	}
	return nil
}

func recvPaillierCiphertext(ctx context.Context, ch transport.Channel) (*paillier.Ciphertext, error) {
	frame, err := ch.Recv(ctx)
	if err != nil {
		return nil, transportErr("recv paillier ciphertext", err)
	}
	if len(frame) == 0 {
		return nil, transportErr("recv paillier ciphertext", errTruncatedFrame)
	}
	return paillier.CiphertextFromBytes(frame), nil
}

// sendPaillierCiphertextPair packs two Paillier ciphertexts into a
// single length-delimited frame. The encrypted comparator uses this to
// carry Enc(d div 2^L) and Enc(d mod 2^L) as one wire message (spec §5's
// fixed total message count folds what would otherwise be two sends
// into one).
func sendPaillierCiphertextPair(ctx context.Context, ch transport.Channel, pub *paillier.PublicKey, a, b *paillier.Ciphertext) error {
	aBytes := a.Bytes(pub)
	bBytes := b.Bytes(pub)
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(aBytes)))
	buf = append(buf, aBytes...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(bBytes)))
	buf = append(buf, bBytes...)
	if err := ch.Send(ctx, buf); err != nil {
		return transportErr("send paillier ciphertext pair", err)
	}
	return nil
}

func recvPaillierCiphertextPair(ctx context.Context, ch transport.Channel) (*paillier.Ciphertext, *paillier.Ciphertext, error) {
	frame, err := ch.Recv(ctx)
	if err != nil {
		return nil, nil, transportErr("recv paillier ciphertext pair", err)
	}
	if len(frame) < 4 {
		return nil, nil, transportErr("recv paillier ciphertext pair", errTruncatedFrame)
	}
	aSize := binary.BigEndian.Uint32(frame[:4])
	frame = frame[4:]
	if uint32(len(frame)) < aSize {
		return nil, nil, transportErr("recv paillier ciphertext pair", errTruncatedFrame)
	}
	a := paillier.CiphertextFromBytes(frame[:aSize])
	frame = frame[aSize:]

	if len(frame) < 4 {
		return nil, nil, transportErr("recv paillier ciphertext pair", errTruncatedFrame)
	}
	bSize := binary.BigEndian.Uint32(frame[:4])
	frame = frame[4:]
	if uint32(len(frame)) < bSize {
		return nil, nil, transportErr("recv paillier ciphertext pair", errTruncatedFrame)
	}
	b := paillier.CiphertextFromBytes(frame[:bSize])

	return a, b, nil
}
