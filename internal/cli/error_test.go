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
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.Equal(t, "error: session closed", (&Error{"session closed"}).Error())

	cerr := &ConnectionError{Err: io.EOF}
	assert.Equal(t, "ConnectionError: EOF", cerr.Error())
	assert.True(t, errors.Is(cerr, io.EOF))

	var err error = &TimeoutError{After: 2 * time.Second}
	assert.Equal(t, "TimeoutError: no data within 2s", err.Error())
	var nerr interface{ Timeout() bool }
	assert.True(t, errors.As(err, &nerr))
	assert.True(t, nerr.Timeout())
}
