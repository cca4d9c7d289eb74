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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"

	"ndvpal/pkg/version"
	"ndvpal/test/mockndv"
	"ndvpal/third_party/forked/golang/glog"
)

func main() {
	var (
		port        int
		cfgFile     string
		showVersion bool
	)

	config := mockndv.DefaultConfig
	flag.StringVar(&cfgFile, "c", "", "toml configuration file")
	flag.IntVar(&port, "p", 9310, "port")
	flag.IntVar(&config.MeanDelay, "delay", 0, "mean reply delay in ms")
	flag.IntVar(&config.StdDevDelay, "delay_sd", 0, "standard deviation of the reply delay in ms")
	flag.IntVar(&config.Version, "version", config.Version, "PAL version announced in frame headers")
	flag.StringVar(&config.LogLevel, "log-level", "info", "error, warning, info, debug or verbose")
	flag.BoolVar(&showVersion, "v", false, "display version info")
	flag.BoolVar(&config.Listener.SSLEnabled, "ssl", false, "accept TLS connections")
	flag.StringVar(&config.Sec.CertPemFilePath, "cert", "", "server certificate PEM file")
	flag.StringVar(&config.Sec.KeyPemFilePath, "key", "", "server key PEM file")
	flag.Parse()

	if showVersion {
		version.PrintVersionInfo()
		return
	}
	if cfgFile != "" {
		if _, err := toml.DecodeFile(cfgFile, &config); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %s: %s\n", cfgFile, err)
			os.Exit(1)
		}
	} else {
		config.Listener.Addr = fmt.Sprintf(":%d", uint16(port))
	}

	glog.InitLogging(config.LogLevel, " [mockndv] ")
	glog.Infof("starting mockndv. MeanDelay: %d, sdv: %d, version: %d",
		config.MeanDelay, config.StdDevDelay, config.Version)

	server := mockndv.NewServer(config, mockndv.EchoHandler)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		glog.Infof("%s received, shutting down", s)
		server.Close()
	}()

	if err := server.Run(); err != nil {
		glog.Exitf("mockndv: %s", err)
	}
	glog.Infof("mockndv stopped: transactions=%d nextchunks=%d disconnects=%d",
		server.Transactions(), server.NextChunks(), server.Disconnects())
	glog.Flush()
}
