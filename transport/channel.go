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

// Package transport provides the minimal bidirectional, length-delimited
// byte channel the comparison protocol runs over (spec §4.4/§6): an
// in-process pair of pipes, one per direction, with no reordering, no
// duplication, and closure of one end surfacing as an error on the
// other's next Recv.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by Recv once the peer has closed its end.
var ErrClosed = errors.New("transport: channel closed")

// maxFrameSize bounds a single frame to guard against a corrupt or
// malicious length prefix forcing an unbounded allocation.
const maxFrameSize = 16 << 20

// Channel is a bidirectional, frame-preserving byte channel. Each Send
// delivers exactly one frame to the peer's next Recv, in order.
type Channel interface {
	Send(ctx context.Context, frame []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// pipeChannel implements Channel over a pair of io.Pipe halves: txW
// frames writes visible to the peer's rxR, rxR is this side's inbound read end.
type pipeChannel struct {
	txW io.WriteCloser
	rxR io.ReadCloser

	mu     sync.Mutex
	closed bool
}

// Pipe returns two connected Channels: messages sent on one are received
// on the other, in each direction independently.
func Pipe() (Channel, Channel) {
	arW, aw := io.Pipe() // Alice write -> Bob read
	brW, bw := io.Pipe() // Bob write -> Alice read

	alice := &pipeChannel{txW: aw, rxR: brW}
	bob := &pipeChannel{txW: bw, rxR: arW}
	return alice, bob
}

// Send writes one length-delimited frame. Frame boundaries are preserved
// regardless of how the peer reads: the length prefix lets Recv always
// read exactly one logical message.
func (c *pipeChannel) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(frame)))

	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		if _, err := c.txW.Write(header); err != nil {
			done <- result{err}
			return
		}
		_, err := c.txW.Write(frame)
		done <- result{err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		return wrapIOErr(r.err)
	}
}

// Recv blocks until one full frame has arrived, the peer closes its end,
// or ctx is done.
func (c *pipeChannel) Recv(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		frame []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		header := make([]byte, 4)
		if _, err := io.ReadFull(c.rxR, header); err != nil {
			done <- result{nil, wrapIOErr(err)}
			return
		}
		n := binary.BigEndian.Uint32(header)
		if n > maxFrameSize {
			done <- result{nil, ErrClosed}
			return
		}
		frame := make([]byte, n)
		if _, err := io.ReadFull(c.rxR, frame); err != nil {
			done <- result{nil, wrapIOErr(err)}
			return
		}
		done <- result{frame, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.frame, r.err
	}
}

// Close closes this side's outbound pipe half, surfacing ErrClosed to
// the peer's next Recv.
func (c *pipeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.txW.Close()
}

func wrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return ErrClosed
	}
	return err
}
