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

// Package sec builds TLS configurations for NDV sessions from PEM files.
package sec

import (
	"fmt"

	"ndvpal/third_party/forked/golang/glog"
)

type Config struct {
	CertPemFilePath string
	KeyPemFilePath  string
	CAFilePath      string
	// ClientAuth makes a server require and verify client certificates.
	ClientAuth bool
	ServerName string
	// InsecureSkipVerify disables peer verification on the client side.
	InsecureSkipVerify bool
}

// ValidateServer checks that a server certificate and key are configured.
func (c *Config) ValidateServer() error {
	if c.CertPemFilePath == "" || c.KeyPemFilePath == "" {
		return fmt.Errorf("sec: CertPemFilePath and KeyPemFilePath are required")
	}
	if c.ClientAuth && c.CAFilePath == "" {
		return fmt.Errorf("sec: CAFilePath is required for ClientAuth")
	}
	return nil
}

// ValidateClient checks the optional client certificate settings.
func (c *Config) ValidateClient() error {
	if (c.CertPemFilePath == "") != (c.KeyPemFilePath == "") {
		return fmt.Errorf("sec: CertPemFilePath and KeyPemFilePath go together")
	}
	if c.CAFilePath == "" && !c.InsecureSkipVerify {
		glog.Infoln("sec: no CAFilePath, using system roots")
	}
	return nil
}

func (c *Config) Dump() {
	glog.Infof("sec: cert=%s key=%s ca=%s clientAuth=%v serverName=%s insecure=%v",
		c.CertPemFilePath, c.KeyPemFilePath, c.CAFilePath, c.ClientAuth, c.ServerName, c.InsecureSkipVerify)
}
