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
	"strings"

	"ndvpal/third_party/forked/golang/glog"
)

// Record is a typed payload that knows its own field layout.
type Record interface {
	Type() int
	Serialize(enc *Encoder) error
	Restore(dec *Decoder) error
}

type Factory func(typ int) Record

// Registry maps record type codes to constructors. Types without a factory
// restore into *RawRecord.
type Registry struct {
	factories map[int]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[int]Factory)}
}

func ValidRecordType(typ int) bool {
	return typ >= 0 && typ <= MaxRecordType
}

func (r *Registry) Register(typ int, f Factory) error {
	if !ValidRecordType(typ) {
		return ErrReservedType
	}
	if _, found := r.factories[typ]; found {
		return fmt.Errorf("record type %d already registered", typ)
	}
	r.factories[typ] = f
	return nil
}

func (r *Registry) New(typ int) Record {
	if r != nil {
		if f, found := r.factories[typ]; found {
			if rec := f(typ); rec != nil {
				return rec
			}
		}
	}
	return &RawRecord{Code: typ}
}

// Restore builds a record for typ and restores it from data.
func (r *Registry) Restore(typ int, data []byte, cs Charset) (Record, error) {
	rec := r.New(typ)
	if err := RestoreRecord(rec, data, cs); err != nil {
		return nil, err
	}
	return rec, nil
}

func SerializeRecord(rec Record, cs Charset) ([]byte, error) {
	if !ValidRecordType(rec.Type()) {
		return nil, ErrReservedType
	}
	enc := NewEncoder(cs)
	if err := rec.Serialize(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

func RestoreRecord(rec Record, data []byte, cs Charset) error {
	dec := NewDecoder(data, cs)
	if err := rec.Restore(dec); err != nil {
		return err
	}
	if n := dec.Remaining(); n != 0 {
		if glog.LOG_DEBUG {
			glog.Debugf("record type %d: %d trailing bytes ignored", rec.Type(), n)
		}
	}
	return nil
}

// RawRecord carries a payload the library does not interpret.
type RawRecord struct {
	Code int
	Data []byte
}

func (r *RawRecord) Type() int {
	return r.Code
}

func (r *RawRecord) Serialize(enc *Encoder) error {
	enc.PutRaw(r.Data)
	return nil
}

func (r *RawRecord) Restore(dec *Decoder) error {
	r.Data = append([]byte(nil), dec.Rest()...)
	return nil
}

// FieldRecord is a record made of an ordered list of text fields, written as
// a field count followed by the fields.
type FieldRecord struct {
	Code   int
	Fields []string
}

func NewFieldRecord(code int, fields ...string) *FieldRecord {
	return &FieldRecord{Code: code, Fields: fields}
}

func (r *FieldRecord) Type() int {
	return r.Code
}

func (r *FieldRecord) Serialize(enc *Encoder) error {
	enc.PutInt(len(r.Fields))
	for _, f := range r.Fields {
		if err := enc.PutString(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *FieldRecord) Restore(dec *Decoder) error {
	n, err := dec.Int()
	if err != nil {
		return err
	}
	if n < 0 || n > dec.Remaining() {
		return &DecodeError{Offset: dec.Offset(), What: fmt.Sprintf("invalid field count %d", n)}
	}
	r.Fields = make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := dec.String()
		if err != nil {
			return err
		}
		r.Fields = append(r.Fields, s)
	}
	return nil
}

func (r *FieldRecord) String() string {
	return fmt.Sprintf("type=%d fields=[%s]", r.Code, strings.Join(r.Fields, ","))
}
