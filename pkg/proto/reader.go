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
	"strings"

	"ndvpal/pkg/util"
	"ndvpal/third_party/forked/golang/glog"
)

// Entry is a complete logical record as it appeared on the wire.
type Entry struct {
	Type int
	Data []byte
}

// Frame is the decoded content of one physical frame.
type Frame struct {
	Header     FrameHeader
	Entries    []Entry
	Terminator int
	NoData     bool
}

func (f *Frame) More() bool {
	return f.Terminator == TypeMore
}

// FrameReader decodes frames and joins BROKEN fragments that span frames.
type FrameReader struct {
	partial     []byte
	partialType int
	inRecord    bool
}

func NewFrameReader() *FrameReader {
	return &FrameReader{}
}

func (r *FrameReader) Reset() {
	r.partial = nil
	r.partialType = 0
	r.inRecord = false
}

// Pending reports whether a BROKEN record awaits its remaining fragments.
func (r *FrameReader) Pending() bool {
	return r.inRecord
}

func readField(p []byte, pos int) (int, error) {
	if pos+FieldSize > len(p) {
		return 0, ErrMissingTerminator
	}
	return getDecimal(p[pos : pos+FieldSize])
}

func (r *FrameReader) Decode(raw []byte) (f *Frame, err error) {
	f = &Frame{}
	if err = f.Header.Decode(raw); err != nil {
		if glog.LOG_VERBOSE {
			glog.Verbosef("frame in:\n%s", util.HexDumpString(raw))
		}
		return nil, err
	}
	if glog.LOG_VERBOSE {
		glog.Verbosef("frame in:%s", dumpFrame(&f.Header, raw))
	}
	if len(raw) != HeaderSize+f.Header.PayloadLength {
		return nil, ErrInvalidPayloadSize
	}
	p := raw[HeaderSize:]
	pos := 0
	count := 0
	for f.Terminator == 0 {
		var typ int
		if typ, err = readField(p, pos); err != nil {
			return nil, err
		}
		pos += FieldSize
		switch typ {
		case TypeEnd, TypeMore:
			if pos != len(p) {
				return nil, ErrInvalidPayloadSize
			}
			if typ == TypeEnd && r.inRecord {
				r.Reset()
				return nil, ErrIncompleteRecord
			}
			f.Terminator = typ
		case TypeNone:
			f.NoData = true
		case TypeBroken, TypeEndRec:
			return nil, ErrInvalidField
		default:
			var n, marker int
			if n, err = readField(p, pos); err != nil {
				return nil, err
			}
			pos += FieldSize
			if pos+n > len(p) {
				return nil, ErrInvalidPayloadSize
			}
			data := p[pos : pos+n]
			pos += n
			if marker, err = readField(p, pos); err != nil {
				return nil, err
			}
			pos += FieldSize
			count++
			if r.inRecord {
				if typ != r.partialType {
					r.Reset()
					return nil, ErrFragmentMismatch
				}
				r.partial = append(r.partial, data...)
			} else {
				r.partial = append([]byte(nil), data...)
				r.partialType = typ
				r.inRecord = true
			}
			switch marker {
			case TypeEndRec:
				f.Entries = append(f.Entries, Entry{Type: typ, Data: r.partial})
				r.partial = nil
				r.inRecord = false
			case TypeBroken:
			default:
				return nil, ErrInvalidField
			}
		}
	}
	if count != f.Header.EntryCount {
		return nil, ErrEntryCountMismatch
	}
	if f.Header.More != f.More() {
		return nil, ErrInvalidHeader
	}
	return f, nil
}

func dumpFrame(h *FrameHeader, raw []byte) string {
	var sb strings.Builder
	h.PrettyPrint(&sb)
	sb.WriteString(util.HexDumpString(raw))
	return sb.String()
}
