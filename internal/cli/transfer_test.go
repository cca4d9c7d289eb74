//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package cli

import (
	"math/rand"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestTransferAreaAlternation(t *testing.T) {
	const count = 2000
	area := NewTransferArea()
	var sent atomic.Int64

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			if rand.Intn(4) == 0 {
				runtime.Gosched()
			}
			assert.NoError(t, area.Put(NewReaderResponse([]byte{byte(i), byte(i >> 8)})))
			sent.Inc()
		}
	}()

	for i := 0; i < count; i++ {
		if rand.Intn(4) == 0 {
			runtime.Gosched()
		}
		item, err := area.Get()
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i), byte(i >> 8)}, item.GetFrame())
		// item i+2 cannot be put before item i+1 is taken
		assert.LessOrEqual(t, sent.Load(), int64(i+2))
	}
	wg.Wait()
	assert.Equal(t, int64(count), sent.Load())
}

func TestTransferAreaPutBlocksWhileFull(t *testing.T) {
	area := NewTransferArea()
	require.NoError(t, area.Put(NewNextChunkResponse()))

	putDone := make(chan error, 1)
	go func() {
		putDone <- area.Put(NewReaderResponse([]byte("second")))
	}()

	select {
	case <-putDone:
		t.Fatal("second put completed before get")
	case <-time.After(50 * time.Millisecond):
	}

	item, err := area.Get()
	require.NoError(t, err)
	assert.True(t, item.IsNextChunk())

	select {
	case err := <-putDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second put still blocked after get")
	}
	item, err = area.Get()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), item.GetFrame())
}

func TestTransferAreaCloseReleasesGet(t *testing.T) {
	area := NewTransferArea()
	got := make(chan error, 1)
	go func() {
		_, err := area.Get()
		got <- err
	}()
	time.Sleep(20 * time.Millisecond)
	area.Close()
	area.Close()

	select {
	case err := <-got:
		assert.Equal(t, ErrTransferClosed, err)
	case <-time.After(time.Second):
		t.Fatal("get not released by close")
	}
	assert.True(t, area.Closed())
	assert.Equal(t, ErrTransferClosed, area.Put(NewNextChunkResponse()))
}

func TestTransferAreaDrainAfterClose(t *testing.T) {
	area := NewTransferArea()
	require.NoError(t, area.Put(NewReaderResponse([]byte("last"))))

	blocked := make(chan error, 1)
	go func() {
		blocked <- area.Put(NewNextChunkResponse())
	}()
	time.Sleep(20 * time.Millisecond)
	area.Close()

	select {
	case err := <-blocked:
		assert.Equal(t, ErrTransferClosed, err)
	case <-time.After(time.Second):
		t.Fatal("put not released by close")
	}

	item, err := area.Get()
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), item.GetFrame())
	_, err = area.Get()
	assert.Equal(t, ErrTransferClosed, err)
}
