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

// ReaderResponse is one item handed from the receiver to the session: a
// frame, a NATSPODNEXTCHUNK signal, or the error that ended the receiver.
// Exactly one of the three is set.
type ReaderResponse struct {
	frame     []byte
	nextChunk bool
	err       error
}

func NewReaderResponse(frame []byte) *ReaderResponse {
	return &ReaderResponse{frame: frame}
}

func NewNextChunkResponse() *ReaderResponse {
	return &ReaderResponse{nextChunk: true}
}

func NewErrorReaderResponse(err error) *ReaderResponse {
	return &ReaderResponse{err: err}
}

func (r *ReaderResponse) GetFrame() []byte {
	return r.frame
}

func (r *ReaderResponse) IsNextChunk() bool {
	return r.nextChunk
}

func (r *ReaderResponse) GetError() error {
	return r.err
}
