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
)

const (
	Signature      = "NATSPOD"
	HeaderSize     = 26
	BufferCapacity = 4000

	// NextRecordReserve is the room needed around any further record: type,
	// length, record marker and frame terminator.
	NextRecordReserve = 4 * FieldSize

	// FieldSize is the width of a payload integer field, 5 digits + NUL.
	FieldSize = 6
)

const (
	TypeMore   = 32001
	TypeBroken = 32002
	TypeEndRec = 32003
	TypeEnd    = 32004
	TypeNone   = 32005

	// MaxRecordType is the highest type code a record may carry.
	MaxRecordType = TypeMore - 1
)

const (
	VersionDisconnect = 14
	VersionNextChunk  = 17
	CurrentVersion    = 18
)

var (
	NextChunkNotice  = []byte("NATSPODNEXTCHUNK          ")
	DisconnectNotice = []byte("NATSPODDISCONNECT         ")
)

type ProtocolError struct {
	what string
}

var (
	ErrInvalidHeader       = &ProtocolError{"invalid header"}
	ErrInvalidSignature    = &ProtocolError{"invalid header signature"}
	ErrInvalidPayloadSize  = &ProtocolError{"invalid payload size"}
	ErrInvalidField        = &ProtocolError{"invalid field"}
	ErrMissingTerminator   = &ProtocolError{"frame without terminator"}
	ErrFragmentMismatch    = &ProtocolError{"fragment type mismatch"}
	ErrIncompleteRecord    = &ProtocolError{"transaction ended inside a broken record"}
	ErrEntryCountMismatch  = &ProtocolError{"entry count mismatch"}
	ErrReservedType        = &ProtocolError{"record type code reserved for markers"}
	ErrUnexpectedNextChunk = &ProtocolError{"unexpected NATSPODNEXTCHUNK"}
	ErrNextChunkExpected   = &ProtocolError{"NATSPODNEXTCHUNK expected"}

	// ErrMalformedRecord is the cause of every record decode failure.
	ErrMalformedRecord = &ProtocolError{"malformed record"}
)

func (e *ProtocolError) Error() string {
	return "ProtocolError: " + e.what
}

// DecodeError reports where a record payload stopped making sense.
type DecodeError struct {
	Offset int
	What   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ProtocolError: malformed record at offset %d: %s", e.Offset, e.What)
}

func (e *DecodeError) Unwrap() error {
	return ErrMalformedRecord
}

func IsNextChunk(b []byte) bool {
	return bytes.Equal(b, NextChunkNotice)
}

func IsDisconnect(b []byte) bool {
	return bytes.Equal(b, DisconnectNotice)
}

func IsMarker(typ int) bool {
	return typ >= TypeMore && typ <= TypeNone
}

var markerNames = map[int]string{
	TypeMore:   "MORE",
	TypeBroken: "BROKEN",
	TypeEndRec: "ENDREC",
	TypeEnd:    "END",
	TypeNone:   "NONE",
}

func MarkerName(typ int) string {
	if name, ok := markerNames[typ]; ok {
		return name
	}
	return fmt.Sprintf("TYPE(%d)", typ)
}
