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

package proto

import (
	"fmt"
	"io"
)

const (
	offHeaderLength  = 7
	offEntryCount    = 10
	offPayloadLength = 14
	offVersion       = 21
	offFlag          = 24

	szHeaderLength  = 3
	szEntryCount    = 4
	szPayloadLength = 7
	szVersion       = 3
	szFlag          = 2
)

type FrameHeader struct {
	HeaderLength  int
	EntryCount    int
	PayloadLength int
	Version       int
	More          bool
}

// putDecimal writes v zero-padded into b with a trailing NUL; len(b) is the
// field width including the NUL.
func putDecimal(b []byte, v int) error {
	width := len(b) - 1
	if v < 0 {
		return ErrInvalidField
	}
	for i := width - 1; i >= 0; i-- {
		b[i] = byte('0' + v%10)
		v /= 10
	}
	if v != 0 {
		return ErrInvalidField
	}
	b[width] = 0
	return nil
}

// getDecimal parses a fixed width field written by putDecimal.
func getDecimal(b []byte) (v int, err error) {
	width := len(b) - 1
	if width <= 0 || b[width] != 0 {
		err = ErrInvalidField
		return
	}
	for i := 0; i < width; i++ {
		c := b[i]
		if c < '0' || c > '9' {
			err = ErrInvalidField
			return
		}
		v = v*10 + int(c-'0')
	}
	return
}

func (h *FrameHeader) Encode(raw []byte) error {
	if len(raw) < HeaderSize {
		return ErrInvalidHeader
	}
	copy(raw, Signature)
	flag := 0
	if h.More {
		flag = 1
	}
	if err := putDecimal(raw[offHeaderLength:offEntryCount], HeaderSize); err != nil {
		return err
	}
	if err := putDecimal(raw[offEntryCount:offPayloadLength], h.EntryCount); err != nil {
		return err
	}
	if err := putDecimal(raw[offPayloadLength:offVersion], h.PayloadLength); err != nil {
		return err
	}
	if err := putDecimal(raw[offVersion:offFlag], h.Version); err != nil {
		return err
	}
	return putDecimal(raw[offFlag:HeaderSize], flag)
}

func (h *FrameHeader) Decode(raw []byte) (err error) {
	if len(raw) < HeaderSize {
		return ErrInvalidHeader
	}
	if string(raw[:len(Signature)]) != Signature {
		return ErrInvalidSignature
	}
	if h.HeaderLength, err = getDecimal(raw[offHeaderLength:offEntryCount]); err != nil {
		return ErrInvalidHeader
	}
	if h.HeaderLength != HeaderSize {
		return ErrInvalidHeader
	}
	if h.EntryCount, err = getDecimal(raw[offEntryCount:offPayloadLength]); err != nil {
		return ErrInvalidHeader
	}
	if h.PayloadLength, err = getDecimal(raw[offPayloadLength:offVersion]); err != nil {
		return ErrInvalidHeader
	}
	if h.PayloadLength > BufferCapacity-HeaderSize {
		return ErrInvalidPayloadSize
	}
	if h.Version, err = getDecimal(raw[offVersion:offFlag]); err != nil {
		return ErrInvalidHeader
	}
	var flag int
	if flag, err = getDecimal(raw[offFlag:HeaderSize]); err != nil || flag > 1 {
		return ErrInvalidHeader
	}
	h.More = flag == 1
	return nil
}

func (h *FrameHeader) PrettyPrint(w io.Writer) {
	fmt.Fprintln(w, "\nHeader:")
	fmt.Fprintf(w, "  Signature\t:%s\n", Signature)
	fmt.Fprintf(w, "  EntryCount\t:%d\n", h.EntryCount)
	fmt.Fprintf(w, "  PayloadLength\t:%d\n", h.PayloadLength)
	fmt.Fprintf(w, "  Version\t:%d\n", h.Version)
	fmt.Fprintf(w, "  More\t\t:%v\n", h.More)
}
