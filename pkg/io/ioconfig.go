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

package io

import (
	"time"

	"ndvpal/pkg/util"
)

var (
	DefaultInboundConfig = InboundConfig{
		IdleTimeout:  util.Duration{Duration: 120 * time.Second},
		ReadTimeout:  util.Duration{Duration: 5 * time.Second},
		WriteTimeout: util.Duration{Duration: 5 * time.Second},
	}
)

type (
	// InboundConfig holds the timeouts a server applies to accepted connections.
	InboundConfig struct {
		IdleTimeout  util.Duration
		ReadTimeout  util.Duration
		WriteTimeout util.Duration
	}
)

func (c *InboundConfig) SetDefaultIfNotDefined() {
	if c.IdleTimeout.Duration == 0 {
		c.IdleTimeout = DefaultInboundConfig.IdleTimeout
	}
	if c.ReadTimeout.Duration == 0 {
		c.ReadTimeout = DefaultInboundConfig.ReadTimeout
	}
	if c.WriteTimeout.Duration == 0 {
		c.WriteTimeout = DefaultInboundConfig.WriteTimeout
	}
}
