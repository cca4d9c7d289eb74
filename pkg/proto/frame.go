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
	"ndvpal/third_party/forked/golang/glog"
)

// FlushFunc transmits a completed frame. more is true when the frame ends
// with MORE and further frames of the transaction follow. The frame slice is
// reused after the call returns.
type FlushFunc func(frame []byte, more bool) error

// FrameWriter packs records into frames of at most BufferCapacity bytes,
// splitting a record across frames with BROKEN when it does not fit.
type FrameWriter struct {
	buf     []byte
	off     int
	entries int
	version int
	dirty   bool
	frames  int
	flush   FlushFunc
}

func NewFrameWriter(version int, flush FlushFunc) *FrameWriter {
	return &FrameWriter{
		buf:     make([]byte, BufferCapacity),
		off:     HeaderSize,
		version: version,
		flush:   flush,
	}
}

// SetVersion sets the PAL version carried in the headers of later frames.
func (w *FrameWriter) SetVersion(v int) {
	w.version = v
}

// Pending reports whether records were written since the last Finish.
func (w *FrameWriter) Pending() bool {
	return w.dirty
}

// FramesSent returns the number of frames flushed since the last Reset.
func (w *FrameWriter) FramesSent() int {
	return w.frames
}

func (w *FrameWriter) Reset() {
	w.off = HeaderSize
	w.entries = 0
	w.dirty = false
	w.frames = 0
}

func (w *FrameWriter) putField(v int) {
	putDecimal(w.buf[w.off:w.off+FieldSize], v)
	w.off += FieldSize
}

func (w *FrameWriter) WriteRecord(typ int, data []byte) error {
	if !ValidRecordType(typ) {
		return ErrReservedType
	}
	w.dirty = true
	for {
		avail := BufferCapacity - w.off - NextRecordReserve
		if avail < 0 || (avail == 0 && len(data) != 0) {
			if err := w.closeFrame(TypeMore); err != nil {
				return err
			}
			continue
		}
		n := len(data)
		if n > avail {
			n = avail
		}
		w.putField(typ)
		w.putField(n)
		w.off += copy(w.buf[w.off:], data[:n])
		w.entries++
		data = data[n:]
		if len(data) == 0 {
			w.putField(TypeEndRec)
			return nil
		}
		w.putField(TypeBroken)
		if err := w.closeFrame(TypeMore); err != nil {
			return err
		}
	}
}

// Write serializes rec and writes it.
func (w *FrameWriter) Write(rec Record, cs Charset) error {
	data, err := SerializeRecord(rec, cs)
	if err != nil {
		return err
	}
	return w.WriteRecord(rec.Type(), data)
}

// Finish closes the transaction with END. It does nothing when no record was
// written since the last Finish.
func (w *FrameWriter) Finish() error {
	if !w.dirty {
		return nil
	}
	err := w.closeFrame(TypeEnd)
	w.dirty = false
	return err
}

// FinishEmpty closes the transaction, reporting NONE if it carried no record.
func (w *FrameWriter) FinishEmpty() error {
	if w.dirty {
		return w.Finish()
	}
	w.putField(TypeNone)
	return w.closeFrame(TypeEnd)
}

func (w *FrameWriter) closeFrame(terminator int) (err error) {
	w.putField(terminator)
	hdr := FrameHeader{
		HeaderLength:  HeaderSize,
		EntryCount:    w.entries,
		PayloadLength: w.off - HeaderSize,
		Version:       w.version,
		More:          terminator == TypeMore,
	}
	if err = hdr.Encode(w.buf); err != nil {
		return
	}
	frame := w.buf[:w.off]
	if glog.LOG_VERBOSE {
		glog.Verbosef("frame out (%s):%s", MarkerName(terminator), dumpFrame(&hdr, frame))
	}
	w.off = HeaderSize
	w.entries = 0
	w.frames++
	if w.flush != nil {
		err = w.flush(frame, hdr.More)
	}
	return
}
