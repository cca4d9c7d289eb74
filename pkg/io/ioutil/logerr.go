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

package ioutil

import (
	"errors"
	"io"
	"net"
	"syscall"

	"ndvpal/third_party/forked/golang/glog"
)

// LogError logs a connection error at a level matching how expected it is.
func LogError(err error) {
	if err == nil {
		return
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		glog.WarningDepth(1, err)
		return
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		glog.DebugDepth(1, err)
		return
	}
	glog.WarningDepth(1, err)
}
