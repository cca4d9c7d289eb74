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
)

// NewClientTLSConfig returns the configuration used to dial an NDV server.
func NewClientTLSConfig(cfg *Config) (*tls.Config, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	blocks, err := readPemBlocks(cfg)
	if err != nil {
		return nil, err
	}
	rootCAs, err := blocks.certPool()
	if err != nil {
		return nil, err
	}
	certs, err := blocks.keyPair()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		RootCAs:            rootCAs,
		Certificates:       certs,
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ClientSessionCache: tls.NewLRUClientSessionCache(0),
		MinVersion:         tls.VersionTLS12,
	}, nil
}

// NewServerTLSConfig returns the configuration of a listener accepting NDV
// sessions.
func NewServerTLSConfig(cfg *Config) (*tls.Config, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	blocks, err := readPemBlocks(cfg)
	if err != nil {
		return nil, err
	}
	certs, err := blocks.keyPair()
	if err != nil {
		return nil, err
	}
	tlscfg := &tls.Config{
		Certificates: certs,
		ClientAuth:   tls.NoClientCert,
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.ClientAuth {
		if tlscfg.ClientCAs, err = blocks.certPool(); err != nil {
			return nil, err
		}
		tlscfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlscfg, nil
}

// GetTLSConfigFunc adapts a fixed configuration to the dial callback used by
// the client.
func GetTLSConfigFunc(c *tls.Config) func() *tls.Config {
	return func() *tls.Config {
		return c
	}
}
