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

package client

import (
	"fmt"

	"github.com/pkg/errors"

	"ndvpal/internal/cli"
	"ndvpal/pkg/proto"
)

var (
	ErrDuplicateType    error = &cli.Error{What: "record type already queued in this transaction"}
	ErrNotConnected     error = &cli.Error{What: "session not connected"}
	ErrAlreadyConnected error = &cli.Error{What: "session already connected"}
	ErrSessionClosed    error = &cli.Error{What: "session closed"}
)

// MisuseError reports a call sequence the protocol does not allow. It does
// not affect the connection.
type MisuseError struct {
	Op   string
	Type int
	Err  error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("misuse: %s type %d: %s", e.Op, e.Type, e.Err.Error())
}

func (e *MisuseError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err leaves the session unusable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch errors.Cause(err).(type) {
	case *MisuseError, *proto.DecodeError:
		return false
	}
	return true
}
