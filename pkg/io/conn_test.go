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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFromConnString(t *testing.T) {
	var ep ServiceEndpoint
	require.NoError(t, ep.SetFromConnString("ssl:ndvhost:2700"))
	assert.True(t, ep.SSLEnabled)
	assert.Equal(t, "ndvhost:2700", ep.Addr)
	assert.Equal(t, "ssl:ndvhost:2700", ep.GetConnString())

	ep = ServiceEndpoint{}
	require.NoError(t, ep.SetFromConnString("2700"))
	assert.Equal(t, ":2700", ep.Addr)
	assert.Equal(t, "tcp", ep.GetNetwork())

	assert.Error(t, ep.SetFromConnString(""))
	assert.Error(t, ep.SetFromConnString("host:port"))
	assert.Error(t, ep.SetFromConnString("host:70000"))
}

func TestNewServiceEndpoint(t *testing.T) {
	ep := NewServiceEndpoint("127.0.0.1", 2700)
	assert.Equal(t, "127.0.0.1:2700", ep.Addr)
	assert.NoError(t, ep.Validate())
	assert.Error(t, (&ServiceEndpoint{}).Validate())
}

func TestConnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		if c, err := ln.Accept(); err == nil {
			c.Close()
		}
	}()

	ep := ServiceEndpoint{Addr: ln.Addr().String()}
	conn, err := Connect(&ep, time.Second, nil)
	require.NoError(t, err)
	conn.Close()
}

func TestConnectTLSWithoutConfig(t *testing.T) {
	ep := ServiceEndpoint{Addr: "127.0.0.1:1", SSLEnabled: true}
	_, err := Connect(&ep, time.Second, nil)
	assert.Equal(t, errNoTLSConfig, err)
}

func TestInboundConfigDefaults(t *testing.T) {
	var cfg InboundConfig
	cfg.SetDefaultIfNotDefined()
	assert.Equal(t, DefaultInboundConfig, cfg)
}
