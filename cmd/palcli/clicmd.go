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

package main

import (
	"fmt"
	"time"

	"ndvpal/pkg/client"
	"ndvpal/pkg/cmd"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/sec"
	"ndvpal/third_party/forked/golang/glog"
)

const (
	kDefaultServerAddress = "127.0.0.1:9310"
	kClientAppName        = "palcli"
	kDefaultRecordType    = 100
)

type (
	clientCommandT struct {
		cmd.Command
		client.Config
		optServerAddr string
		optLogLevel   string
		optCfgFile    string
		optAppName    string
		optCodePage   string
		optUserID     string
		optCAFile     string
		optSSL        bool
		optPalVersion int
		optRecType    int
		optReplyType  int
		optTimeout    time.Duration
	}
)

func (c *clientCommandT) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.StringOption(&c.optServerAddr, "s|server", kDefaultServerAddress, "specify server address")
	c.StringOption(&c.optLogLevel, "log-level", "warning", "specify log level")
	c.StringOption(&c.optCfgFile, "c|config", "", "specify toml configuration file name")
	c.StringOption(&c.optAppName, "appname", kClientAppName, "specify application name")
	c.StringOption(&c.optCodePage, "codepage", "", "specify server code page, e.g. IBM-1047 or 819")
	c.StringOption(&c.optUserID, "user", "", "specify user id")
	c.BoolOption(&c.optSSL, "ssl", false, "connect with TLS")
	c.StringOption(&c.optCAFile, "ca", "", "specify the CA certificate used to verify the server")
	c.IntOption(&c.optPalVersion, "pal-version", proto.CurrentVersion, "specify the PAL version to announce")
	c.IntOption(&c.optRecType, "t|type", kDefaultRecordType, "specify the request record type")
	c.IntOption(&c.optReplyType, "r|reply-type", kDefaultRecordType, "specify the reply record type to retrieve")
	c.DurationOption(&c.optTimeout, "timeout", 0, "specify read timeout, 0 keeps the configured value")
}

func (c *clientCommandT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	glog.InitLogging(c.optLogLevel, " [palcli] ")

	if len(c.optCfgFile) != 0 {
		cfg, err := client.LoadConfig(c.optCfgFile)
		if err != nil {
			glog.Exitf("failed to load config file %s. %s", c.optCfgFile, err.Error())
		}
		c.Config = *cfg
	} else {
		c.Config.SetDefault()
	}
	if c.Server.Addr == "" || c.optServerAddr != kDefaultServerAddress {
		c.Server.Addr = c.optServerAddr
	}
	if c.Appname == "" || c.optAppName != kClientAppName {
		c.Appname = c.optAppName
	}
	if c.optCodePage != "" {
		c.ServerCodePage = c.optCodePage
	}
	if c.optUserID != "" {
		c.UserID = c.optUserID
	}
	if c.optSSL {
		c.Server.SSLEnabled = true
	}
	if c.optCAFile != "" {
		c.Sec.CAFilePath = c.optCAFile
	}
	if c.Server.SSLEnabled && c.Sec == (sec.Config{}) {
		c.Sec.InsecureSkipVerify = true
		glog.Warningln("no CA configured, server certificate not verified")
	}
	if c.optPalVersion != proto.CurrentVersion || c.PalVersion == 0 {
		c.PalVersion = c.optPalVersion
	}
	if c.optTimeout > 0 {
		c.ReadTimeout.Duration = c.optTimeout
	}
	if c.Otel.Enabled && c.Otel.Poolname == "" {
		c.Otel.Poolname = kClientAppName
	}
	if !proto.ValidRecordType(c.optRecType) || !proto.ValidRecordType(c.optReplyType) {
		err = fmt.Errorf("record type out of range 0..%d", proto.MaxRecordType)
	}
	return
}

func (c *clientCommandT) registry() *proto.Registry {
	r := proto.NewRegistry()
	r.Register(c.optReplyType, func(typ int) proto.Record { return &proto.FieldRecord{Code: typ} })
	return r
}

// newSession creates and connects a session for one command run.
func (c *clientCommandT) newSession() (*client.Session, error) {
	s, err := client.New(c.Config, client.WithRegistry(c.registry()))
	if err != nil {
		return nil, err
	}
	if err = s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// transact runs one request/reply exchange on s.
func (c *clientCommandT) transact(s *client.Session, fields []string) ([]proto.Record, error) {
	if err := s.Add(proto.NewFieldRecord(c.optRecType, fields...)); err != nil {
		return nil, err
	}
	if err := s.Commit(); err != nil {
		return nil, err
	}
	return s.Retrieve(c.optReplyType)
}
