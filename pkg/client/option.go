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
	"crypto/tls"

	"ndvpal/internal/cli"
	"ndvpal/pkg/proto"
)

type IOption func(data interface{})

type optionData struct {
	registry       *proto.Registry
	charset        proto.Charset
	timeoutHandler cli.TimeoutHandler
	getTLSConfig   func() *tls.Config
}

// WithRegistry selects the constructors used to restore received records.
func WithRegistry(r *proto.Registry) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.registry = r
		}
	}
}

// WithCharset overrides Config.ServerCodePage with a custom conversion.
func WithCharset(cs proto.Charset) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.charset = cs
		}
	}
}

func WithTimeoutHandler(h cli.TimeoutHandler) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.timeoutHandler = h
		}
	}
}

func WithTLSConfig(getTLSConfig func() *tls.Config) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.getTLSConfig = getTLSConfig
		}
	}
}

func newOptionData(opts ...IOption) *optionData {
	data := &optionData{}
	for _, op := range opts {
		op(data)
	}
	return data
}
