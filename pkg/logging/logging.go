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

// Package logging builds key=value log lines for session events.
package logging

import (
	"bytes"
	"strconv"
	"time"

	"ndvpal/pkg/util"
)

type KeyValueBuffer struct {
	bytes.Buffer
	delimiter     byte
	pairDelimiter byte
}

func NewKVBufferForLog() *KeyValueBuffer {
	b := &KeyValueBuffer{
		delimiter:     '=',
		pairDelimiter: ',',
	}
	return b
}

func NewKVBuffer() *KeyValueBuffer {
	b := &KeyValueBuffer{
		pairDelimiter: '&',
		delimiter:     '=',
	}
	return b
}

var (
	logDataKeySession   []byte = []byte("sid")
	logDataKeyUser      []byte = []byte("User")
	logDataKeyStatus    []byte = []byte("st")
	logDataKeyErr       []byte = []byte("err")
	logDataKeyVersion   []byte = []byte("v")
	logDataKeyFramesOut []byte = []byte("fo")
	logDataKeyFramesIn  []byte = []byte("fi")
	logDataKeyRecords   []byte = []byte("nrec")
	logDataKeyElapsed   []byte = []byte("rht")
	logDataKeyType      []byte = []byte("type")
	logDataKeyPeer      []byte = []byte("peer")
	logDataKeyData      []byte = []byte("data")
)

func (b *KeyValueBuffer) AddBytes(key []byte, value []byte) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.Write(value)
	return b
}

func (b *KeyValueBuffer) Add(key []byte, value string) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.WriteString(value)
	return b
}

func (b *KeyValueBuffer) AddInt(key []byte, value int) *KeyValueBuffer {
	return b.Add(key, strconv.Itoa(value))
}

func (b *KeyValueBuffer) AddSessionID(id string) *KeyValueBuffer {
	return b.Add(logDataKeySession, id)
}

// AddUser is a no-op for an empty user id.
func (b *KeyValueBuffer) AddUser(user string) *KeyValueBuffer {
	if user != "" {
		b.Add(logDataKeyUser, user)
	}
	return b
}

func (b *KeyValueBuffer) AddStatus(st string) *KeyValueBuffer {
	return b.Add(logDataKeyStatus, st)
}

func (b *KeyValueBuffer) AddError(err error) *KeyValueBuffer {
	if err != nil {
		b.Add(logDataKeyErr, err.Error())
	}
	return b
}

func (b *KeyValueBuffer) AddVersion(v int) *KeyValueBuffer {
	if v != 0 {
		b.AddInt(logDataKeyVersion, v)
	}
	return b
}

func (b *KeyValueBuffer) AddFrames(out, in int) *KeyValueBuffer {
	return b.AddInt(logDataKeyFramesOut, out).AddInt(logDataKeyFramesIn, in)
}

func (b *KeyValueBuffer) AddNumRecords(n int) *KeyValueBuffer {
	return b.AddInt(logDataKeyRecords, n)
}

func (b *KeyValueBuffer) AddRecordType(typ int) *KeyValueBuffer {
	return b.AddInt(logDataKeyType, typ)
}

func (b *KeyValueBuffer) AddPeer(addr string) *KeyValueBuffer {
	return b.Add(logDataKeyPeer, addr)
}

// AddElapsed logs d in microseconds.
func (b *KeyValueBuffer) AddElapsed(d time.Duration) *KeyValueBuffer {
	return b.AddInt(logDataKeyElapsed, int(d/time.Microsecond))
}

func (b *KeyValueBuffer) AddHexData(data []byte) *KeyValueBuffer {
	return b.Add(logDataKeyData, util.ToHexString(data))
}
