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
	"errors"
	"sync"
)

var ErrTransferClosed = errors.New("transfer area closed")

// TransferArea is a single slot mailbox between the receiver and the session.
// Put blocks while the slot holds an item and Get blocks while it is empty,
// so puts and gets strictly alternate.
type TransferArea struct {
	slot      chan *ReaderResponse
	done      chan struct{}
	closeOnce sync.Once
}

func NewTransferArea() *TransferArea {
	return &TransferArea{
		slot: make(chan *ReaderResponse, 1),
		done: make(chan struct{}),
	}
}

func (t *TransferArea) Put(item *ReaderResponse) error {
	select {
	case <-t.done:
		return ErrTransferClosed
	default:
	}
	select {
	case t.slot <- item:
		return nil
	case <-t.done:
		return ErrTransferClosed
	}
}

// Get returns the next item. After Close it still returns an item left in
// the slot before reporting ErrTransferClosed.
func (t *TransferArea) Get() (*ReaderResponse, error) {
	select {
	case item := <-t.slot:
		return item, nil
	case <-t.done:
		select {
		case item := <-t.slot:
			return item, nil
		default:
			return nil, ErrTransferClosed
		}
	}
}

// Close releases any blocked Put or Get. It may be called more than once.
func (t *TransferArea) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}

func (t *TransferArea) Closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
