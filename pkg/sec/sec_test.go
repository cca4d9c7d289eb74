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

package sec

import (
	"crypto/tls"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndvpal/test/testutil"
)

func certConfig(t *testing.T) Config {
	certFile, keyFile, err := testutil.WriteSelfSignedCert(t.TempDir())
	require.NoError(t, err)
	return Config{
		CertPemFilePath: certFile,
		KeyPemFilePath:  keyFile,
		CAFilePath:      certFile,
		ServerName:      "localhost",
	}
}

func handshake(t *testing.T, serverCfg, clientCfg *tls.Config) (serverErr, clientErr error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		done <- tls.Server(conn, serverCfg).Handshake()
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	clientErr = tls.Client(conn, clientCfg).Handshake()
	serverErr = <-done
	conn.Close()
	return
}

func TestHandshake(t *testing.T) {
	cfg := certConfig(t)
	serverCfg, err := NewServerTLSConfig(&cfg)
	require.NoError(t, err)
	clientCfg, err := NewClientTLSConfig(&Config{CAFilePath: cfg.CAFilePath, ServerName: "localhost"})
	require.NoError(t, err)

	serr, cerr := handshake(t, serverCfg, clientCfg)
	assert.NoError(t, serr)
	assert.NoError(t, cerr)
}

func TestHandshakeClientAuth(t *testing.T) {
	cfg := certConfig(t)
	cfg.ClientAuth = true
	serverCfg, err := NewServerTLSConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, serverCfg.ClientAuth)

	withCert, err := NewClientTLSConfig(&cfg)
	require.NoError(t, err)
	serr, cerr := handshake(t, serverCfg, withCert)
	assert.NoError(t, serr)
	assert.NoError(t, cerr)

	withoutCert, err := NewClientTLSConfig(&Config{CAFilePath: cfg.CAFilePath, ServerName: "localhost"})
	require.NoError(t, err)
	serr, _ = handshake(t, serverCfg, withoutCert)
	assert.Error(t, serr)
}

func TestUnknownAuthority(t *testing.T) {
	cfg := certConfig(t)
	serverCfg, err := NewServerTLSConfig(&cfg)
	require.NoError(t, err)

	other := certConfig(t)
	clientCfg, err := NewClientTLSConfig(&Config{CAFilePath: other.CAFilePath, ServerName: "localhost"})
	require.NoError(t, err)
	_, cerr := handshake(t, serverCfg, clientCfg)
	assert.Error(t, cerr)
}

func TestConfigValidation(t *testing.T) {
	_, err := NewServerTLSConfig(&Config{})
	assert.Error(t, err)
	_, err = NewServerTLSConfig(&Config{CertPemFilePath: "a", KeyPemFilePath: "b", ClientAuth: true})
	assert.Error(t, err)
	_, err = NewClientTLSConfig(&Config{CertPemFilePath: "a"})
	assert.Error(t, err)

	_, err = NewClientTLSConfig(&Config{CAFilePath: filepath.Join(t.TempDir(), "missing.crt")})
	assert.Error(t, err)

	c, err := NewClientTLSConfig(&Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, c.InsecureSkipVerify)
	assert.Empty(t, c.Certificates)
}
