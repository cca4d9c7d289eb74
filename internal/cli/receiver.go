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
	"net"
	"time"

	"go.uber.org/atomic"

	"ndvpal/pkg/io/ioutil"
	"ndvpal/pkg/logging/otel"
	"ndvpal/pkg/proto"
	"ndvpal/third_party/forked/golang/glog"
)

// TimeoutHandler decides whether to keep waiting after a read timeout.
type TimeoutHandler interface {
	ContinueOperation() bool
}

type TimeoutHandlerFunc func() bool

func (f TimeoutHandlerFunc) ContinueOperation() bool {
	return f()
}

type ReceiverConfig struct {
	ReadTimeout time.Duration
	// TimeoutHandler is consulted on every read timeout. It may return nil.
	TimeoutHandler func() TimeoutHandler
	// OnError is called once with the error that ends the receiver, before
	// the final item is handed to the transfer area.
	OnError func(err error) error
}

// Receiver reads frames off the connection and hands them to a TransferArea.
type Receiver struct {
	conn    net.Conn
	area    *TransferArea
	cfg     ReceiverConfig
	stopped atomic.Bool
	done    chan struct{}
}

func StartReceiver(conn net.Conn, area *TransferArea, cfg ReceiverConfig) *Receiver {
	r := &Receiver{
		conn: conn,
		area: area,
		cfg:  cfg,
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// Stop marks the receiver as stopping so the error caused by closing the
// connection is not reported as a failure. The caller closes the connection.
func (r *Receiver) Stop() {
	r.stopped.Store(true)
}

// Done is closed when the receiver goroutine has exited.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

func (r *Receiver) run() {
	defer func() {
		close(r.done)
		glog.Verbosef("receiver exits")
	}()

	err := r.readLoop()
	if r.stopped.Load() && !errors.Is(err, ErrTransferClosed) {
		err = &ConnectionError{Err: ErrReceiverClosed}
	}
	if r.stopped.Load() {
		glog.Debugln(err)
	} else {
		ioutil.LogError(err)
	}
	if r.cfg.OnError != nil {
		err = r.cfg.OnError(err)
	}
	r.area.Put(NewErrorReaderResponse(err))
}

func (r *Receiver) readLoop() error {
	var raw [proto.HeaderSize]byte
	for {
		if err := r.readFull(raw[:]); err != nil {
			return err
		}
		if proto.IsNextChunk(raw[:]) {
			if glog.LOG_DEBUG {
				glog.Debugf("NATSPODNEXTCHUNK received")
			}
			if err := r.area.Put(NewNextChunkResponse()); err != nil {
				return err
			}
			continue
		}
		if proto.IsDisconnect(raw[:]) {
			return &ConnectionError{Err: ErrPeerDisconnect}
		}
		var hdr proto.FrameHeader
		if err := hdr.Decode(raw[:]); err != nil {
			glog.Errorf("invalid frame header: %s", err)
			return err
		}
		frame := make([]byte, proto.HeaderSize+hdr.PayloadLength)
		copy(frame, raw[:])
		if err := r.readFull(frame[proto.HeaderSize:]); err != nil {
			return err
		}
		otel.RecordCount(otel.FramesIn, nil)
		if err := r.area.Put(NewReaderResponse(frame)); err != nil {
			return err
		}
	}
}

// readFull fills b, resuming after read timeouts the handler accepts.
func (r *Receiver) readFull(b []byte) error {
	n := 0
	for n < len(b) {
		if r.cfg.ReadTimeout > 0 {
			r.conn.SetReadDeadline(time.Now().Add(r.cfg.ReadTimeout))
		}
		m, err := r.conn.Read(b[n:])
		n += m
		if err == nil {
			continue
		}
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() && !r.stopped.Load() {
			if r.continueAfterTimeout() {
				if glog.LOG_DEBUG {
					glog.Debugf("read timeout after %s, continue waiting (%d/%d bytes)", r.cfg.ReadTimeout, n, len(b))
				}
				continue
			}
			return &TimeoutError{After: r.cfg.ReadTimeout}
		}
		return &ConnectionError{Err: err}
	}
	return nil
}

func (r *Receiver) continueAfterTimeout() bool {
	if r.cfg.TimeoutHandler == nil {
		return false
	}
	h := r.cfg.TimeoutHandler()
	return h != nil && h.ContinueOperation()
}
