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

// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type KVMap map[string]string

// TestConfig assembles a TOML file from key/value pairs. Values are written
// verbatim, so strings must carry their own quotes.
type TestConfig struct {
	gconfig  KVMap
	sconfigs map[string]KVMap
}

func NewTestConfig() *TestConfig {
	return &TestConfig{
		gconfig:  make(KVMap),
		sconfigs: make(map[string]KVMap),
	}
}

func writeSorted(w *bufio.Writer, m KVMap) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.WriteString(k)
		w.WriteString("=")
		w.WriteString(m[k])
		w.WriteString("\n")
	}
}

func (tc *TestConfig) CreateTomlFile(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	writeSorted(w, tc.gconfig)

	sections := make([]string, 0, len(tc.sconfigs))
	for s := range tc.sconfigs {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	for _, section := range sections {
		w.WriteString("\n[")
		w.WriteString(section)
		w.WriteString("]\n")
		writeSorted(w, tc.sconfigs[section])
	}
	return w.Flush()
}

func (tc *TestConfig) AddConfig(section string, name string, value string) {
	if section == "" {
		if tc.gconfig == nil {
			tc.gconfig = make(KVMap)
		}
		tc.gconfig[name] = value
		return
	}
	if tc.sconfigs == nil {
		tc.sconfigs = make(map[string]KVMap)
	}
	if tc.sconfigs[section] == nil {
		tc.sconfigs[section] = make(KVMap)
	}
	tc.sconfigs[section][name] = value
}

func (tc *TestConfig) Reset() {
	tc.gconfig = nil
	tc.sconfigs = nil
}

// WriteSelfSignedCert writes a self-signed certificate valid for 127.0.0.1
// and localhost, and its key, into dir. The certificate doubles as its own CA.
func WriteSelfSignedCert(dir string) (certFile string, keyFile string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{Organization: []string{"ndvpal test"}, CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return
	}
	keyDer, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return
	}
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.pem")
	if err = os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600); err != nil {
		return
	}
	err = os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0600)
	return
}
