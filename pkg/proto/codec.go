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
	"bytes"
	"fmt"
	"strconv"
)

// Charset converts text fields between Go strings and the server code page.
type Charset interface {
	Encode(s string) ([]byte, error)
	Decode(b []byte) (string, error)
}

// Encoder appends record fields to a growing buffer.
type Encoder struct {
	buf     []byte
	charset Charset
}

func NewEncoder(cs Charset) *Encoder {
	return &Encoder{charset: cs}
}

func (e *Encoder) PutInt(v int) {
	e.buf = strconv.AppendInt(e.buf, int64(v), 10)
	e.buf = append(e.buf, 0)
}

func (e *Encoder) PutString(s string) (err error) {
	b := []byte(s)
	if e.charset != nil {
		if b, err = e.charset.Encode(s); err != nil {
			return
		}
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return fmt.Errorf("%w: string field contains NUL", ErrInvalidField)
	}
	e.buf = append(e.buf, b...)
	e.buf = append(e.buf, 0)
	return
}

// PutBytes writes a length field followed by b verbatim.
func (e *Encoder) PutBytes(b []byte) {
	e.PutInt(len(b))
	e.buf = append(e.buf, b...)
}

func (e *Encoder) PutRaw(b []byte) {
	e.buf = append(e.buf, b...)
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Decoder consumes record fields from a buffer in the order they were written.
type Decoder struct {
	buf     []byte
	off     int
	charset Charset
}

func NewDecoder(b []byte, cs Charset) *Decoder {
	return &Decoder{buf: b, charset: cs}
}

func (d *Decoder) malformed(format string, a ...interface{}) error {
	return &DecodeError{Offset: d.off, What: fmt.Sprintf(format, a...)}
}

// field returns the bytes up to the next NUL and moves past it.
func (d *Decoder) field() ([]byte, error) {
	if d.off >= len(d.buf) {
		return nil, d.malformed("read past end of record")
	}
	i := bytes.IndexByte(d.buf[d.off:], 0)
	if i < 0 {
		return nil, d.malformed("field not NUL terminated")
	}
	f := d.buf[d.off : d.off+i]
	d.off += i + 1
	return f, nil
}

func (d *Decoder) Int() (int, error) {
	start := d.off
	f, err := d.field()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(f))
	if err != nil {
		d.off = start
		return 0, d.malformed("invalid integer %q", f)
	}
	return v, nil
}

func (d *Decoder) String() (string, error) {
	f, err := d.field()
	if err != nil {
		return "", err
	}
	if d.charset == nil {
		return string(f), nil
	}
	s, err := d.charset.Decode(f)
	if err != nil {
		return "", d.malformed("%s", err.Error())
	}
	return s, nil
}

// Bytes reads a block written by Encoder.PutBytes.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Int()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, d.malformed("negative block length %d", n)
	}
	return d.Raw(n)
}

func (d *Decoder) Raw(n int) ([]byte, error) {
	if n < 0 || d.off+n > len(d.buf) {
		return nil, d.malformed("block of %d bytes exceeds record", n)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Rest consumes and returns all unread bytes.
func (d *Decoder) Rest() []byte {
	b := d.buf[d.off:]
	d.off = len(d.buf)
	return b
}

func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

func (d *Decoder) Offset() int {
	return d.off
}
