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
	"crypto/x509"
	"fmt"
	"os"

	"ndvpal/third_party/forked/golang/glog"
)

type pemBlocks struct {
	cert []byte
	key  []byte
	ca   []byte
}

// readPemBlocks reads whichever of the configured files are set.
func readPemBlocks(cfg *Config) (b pemBlocks, err error) {
	if cfg.CertPemFilePath != "" {
		if b.cert, err = os.ReadFile(cfg.CertPemFilePath); err != nil {
			return
		}
	}
	if cfg.KeyPemFilePath != "" {
		if b.key, err = os.ReadFile(cfg.KeyPemFilePath); err != nil {
			return
		}
	}
	if cfg.CAFilePath != "" {
		if b.ca, err = os.ReadFile(cfg.CAFilePath); err != nil {
			glog.Errorln(err)
			return
		}
	}
	return
}

func (b *pemBlocks) certPool() (*x509.CertPool, error) {
	pool, _ := x509.SystemCertPool()
	if pool == nil {
		pool = x509.NewCertPool()
	}
	if len(b.ca) != 0 && !pool.AppendCertsFromPEM(b.ca) {
		return nil, fmt.Errorf("sec: fail to append CA certificate")
	}
	return pool, nil
}

func (b *pemBlocks) keyPair() ([]tls.Certificate, error) {
	if len(b.cert) == 0 {
		return nil, nil
	}
	cert, err := tls.X509KeyPair(b.cert, b.key)
	if err != nil {
		return nil, err
	}
	return []tls.Certificate{cert}, nil
}
