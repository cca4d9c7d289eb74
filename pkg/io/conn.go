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
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"ndvpal/pkg/logging/otel"
	"ndvpal/third_party/forked/golang/glog"
)

var errNoTLSConfig = errors.New("Unable to get TLS config")

// Connect dials the endpoint, over TLS when SSLEnabled is set.
func Connect(endpoint *ServiceEndpoint, connectTimeout time.Duration, getTLSConfig func() *tls.Config) (conn net.Conn, err error) {
	timeStart := time.Now()

	if endpoint.SSLEnabled {
		var tlsConn *tls.Conn
		if tlsConn, err = dialTLS(endpoint, connectTimeout, getTLSConfig); err == nil {
			conn = tlsConn
			if glog.LOG_DEBUG {
				glog.DebugDepth(1, fmt.Sprintf("connected to %s ssl=%s", endpoint.GetConnString(), getConnectionState(tlsConn)))
			}
		} else {
			glog.ErrorDepth(1, fmt.Sprintf("fail to connect %s error: %s", endpoint.GetConnString(), err))
		}
	} else {
		if conn, err = net.DialTimeout(endpoint.GetNetwork(), endpoint.Addr, connectTimeout); err == nil {
			if glog.LOG_DEBUG {
				glog.DebugDepth(1, fmt.Sprintf("connected to %s", endpoint.GetConnString()))
			}
		} else {
			glog.ErrorDepth(1, fmt.Sprintf("fail to connect %s error: %s", endpoint.GetConnString(), err.Error()))
		}
	}
	if otel.IsEnabled() {
		status := otel.StatusSuccess
		if err != nil {
			status = otel.StatusError
		}
		otel.RecordOutboundConnection(endpoint.GetConnString(), status, time.Since(timeStart).Milliseconds())
	}
	return
}

func dialTLS(endpoint *ServiceEndpoint, timeout time.Duration, getTLSConfig func() *tls.Config) (*tls.Conn, error) {
	if getTLSConfig == nil {
		return nil, errNoTLSConfig
	}
	tlsCfg := getTLSConfig()
	if tlsCfg == nil {
		return nil, errNoTLSConfig
	}
	dialer := &net.Dialer{Timeout: timeout}
	return tls.DialWithDialer(dialer, endpoint.GetNetwork(), endpoint.Addr, tlsCfg)
}

func getConnectionState(c *tls.Conn) string {
	if c == nil {
		return ""
	}

	st := c.ConnectionState()
	rid := 0
	if st.DidResume {
		rid = 1
	}
	return fmt.Sprintf("GoTLS:%s:%s:ssl_r=%d", getVersionName(st.Version),
		tls.CipherSuiteName(st.CipherSuite), rid)
}

func getVersionName(ver uint16) string {
	switch ver {
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return ""
	}
}
