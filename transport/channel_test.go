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

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipeRoundTrip(t *testing.T) {
	alice, bob := Pipe()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- alice.Send(ctx, []byte("hello"))
	}()

	got, err := bob.Recv(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, []byte("hello"), got)
}

func TestPipePreservesOrder(t *testing.T) {
	alice, bob := Pipe()
	ctx := context.Background()
	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

	go func() {
		for _, m := range msgs {
			require.NoError(t, alice.Send(ctx, m))
		}
	}()

	for _, want := range msgs {
		got, err := bob.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPipeCloseSurfacesToPeer(t *testing.T) {
	alice, bob := Pipe()
	require.NoError(t, alice.Close())

	_, err := bob.Recv(context.Background())
	require.True(t, errors.Is(err, ErrClosed))
}

func TestPipeRespectsContextCancellation(t *testing.T) {
	_, bob := Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bob.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPipeEmptyFrame(t *testing.T) {
	alice, bob := Pipe()
	ctx := context.Background()

	go func() { require.NoError(t, alice.Send(ctx, []byte{})) }()
	got, err := bob.Recv(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
