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
	"fmt"
	"time"
)

type Error struct {
	What string
}

func (e *Error) Error() string {
	return "error: " + e.What
}

// ConnectionError reports a lost or unusable connection. The session that
// saw it cannot be used again; a new session may succeed.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "ConnectionError: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that no data arrived within the read timeout and the
// timeout handler declined to keep waiting.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Timeout() bool { return true }

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("TimeoutError: no data within %s", e.After)
}

var (
	ErrPeerDisconnect = errors.New("server sent NATSPODDISCONNECT")
	ErrReceiverClosed = errors.New("receiver closed")
)
