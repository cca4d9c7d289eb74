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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"ndvpal/internal/cli"
	"ndvpal/pkg/codepage"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/sec"
	"ndvpal/test/mockndv"
	"ndvpal/test/testutil"
)

func startServer(t *testing.T, h mockndv.Handler, setup func(cfg *mockndv.Config)) *mockndv.Server {
	cfg := mockndv.DefaultConfig
	if setup != nil {
		setup(&cfg)
	}
	server := mockndv.NewServer(cfg, h)
	require.NoError(t, server.Start())
	t.Cleanup(server.Close)
	return server
}

func testConfig() Config {
	var cfg Config
	cfg.SetDefault()
	cfg.Appname = "palclient_test"
	cfg.ReadTimeout = Duration{Duration: 2 * time.Second}
	return cfg
}

func connectSession(t *testing.T, server *mockndv.Server, cfg Config, opts ...IOption) *Session {
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	host, port := server.HostPort()
	require.NoError(t, s.ConnectTo(host, port))
	t.Cleanup(func() { s.CloseSocket() })
	return s
}

func fieldRegistry(types ...int) *proto.Registry {
	reg := proto.NewRegistry()
	for _, typ := range types {
		reg.Register(typ, func(typ int) proto.Record { return &proto.FieldRecord{Code: typ} })
	}
	return reg
}

func TestRetrieveUnsolicitedFrame(t *testing.T) {
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.Greeting = []proto.Entry{{Type: 10, Data: []byte("hello")}}
	})
	s := connectSession(t, server, testConfig())

	recs, err := s.Retrieve(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, &proto.RawRecord{Code: 10, Data: []byte("hello")}, recs[0])
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Add(proto.NewFieldRecord(20, "next")))
	assert.Equal(t, StateQueuing, s.State())
	require.NoError(t, s.Commit())
	recs, err = s.Retrieve(20)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestAddCommitRetrieve(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig(), WithRegistry(fieldRegistry(1, 2)))

	require.NoError(t, s.Add(proto.NewFieldRecord(1, "LIB", "PGM"), proto.NewFieldRecord(2, "a")))
	require.NoError(t, s.Add(proto.NewFieldRecord(3, "raw")))
	require.NoError(t, s.Commit())
	assert.Equal(t, StateIdle, s.State())

	recs, err := s.Retrieve(2)
	require.NoError(t, err)
	assert.Equal(t, []proto.Record{proto.NewFieldRecord(2, "a")}, recs)
	assert.Equal(t, StateRetrieving, s.State())

	recs, err = s.Retrieve(1)
	require.NoError(t, err)
	assert.Equal(t, []proto.Record{proto.NewFieldRecord(1, "LIB", "PGM")}, recs)

	recs, err = s.Retrieve(3)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.IsType(t, &proto.RawRecord{}, recs[0])
	assert.Equal(t, StateIdle, s.State())

	recs, err = s.Retrieve(4)
	assert.NoError(t, err)
	assert.Nil(t, recs)
	assert.Equal(t, int64(1), server.Transactions())
}

func TestRetrieveCommitsImplicitly(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(&proto.RawRecord{Code: 8, Data: []byte("implicit")}))
	recs, err := s.Retrieve(8)
	require.NoError(t, err)
	assert.Equal(t, []proto.Record{&proto.RawRecord{Code: 8, Data: []byte("implicit")}}, recs)
}

func TestDuplicateTypeRejected(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(proto.NewFieldRecord(5, "first")))
	err := s.Add(proto.NewFieldRecord(5, "second"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateType))
	var merr *MisuseError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 5, merr.Type)
	assert.False(t, IsFatal(err))
	assert.NoError(t, s.Err())

	require.NoError(t, s.Commit())
	recs, err := s.Retrieve(5)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, s.Add(proto.NewFieldRecord(5, "next transaction")))
}

func TestSameTypeInOneAdd(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig(), WithRegistry(fieldRegistry(6)))

	require.NoError(t, s.Add(proto.NewFieldRecord(6, "x"), proto.NewFieldRecord(6, "y")))
	recs, err := s.Retrieve(6)
	require.NoError(t, err)
	assert.Equal(t, []proto.Record{proto.NewFieldRecord(6, "x"), proto.NewFieldRecord(6, "y")}, recs)
}

func TestChunkedRoundTrip(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	data := bytes.Repeat([]byte("NATURAL-SOURCE;"), 700)
	require.NoError(t, s.Add(&proto.RawRecord{Code: 30, Data: data}))
	require.NoError(t, s.Commit())

	recs, err := s.Retrieve(30)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, data, recs[0].(*proto.RawRecord).Data)
	assert.Equal(t, int64(2), server.NextChunks())
	assert.Equal(t, proto.CurrentVersion, s.NegotiatedVersion())
}

func TestOldServerVersionSkipsNextChunk(t *testing.T) {
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.Version = proto.VersionNextChunk - 1
	})
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(&proto.RawRecord{Code: 1, Data: []byte("hello")}))
	_, err := s.Retrieve(1)
	require.NoError(t, err)
	assert.Equal(t, proto.VersionNextChunk-1, s.NegotiatedVersion())

	data := bytes.Repeat([]byte{0xF1}, 9000)
	require.NoError(t, s.Add(&proto.RawRecord{Code: 2, Data: data}))
	recs, err := s.Retrieve(2)
	require.NoError(t, err)
	assert.Equal(t, data, recs[0].(*proto.RawRecord).Data)
	assert.Equal(t, int64(0), server.NextChunks())
}

func TestOldServerFirstRequestChunked(t *testing.T) {
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.Version = proto.VersionNextChunk - 1
	})
	s := connectSession(t, server, testConfig())

	data := bytes.Repeat([]byte{0xC1}, 9000)
	require.NoError(t, s.Add(&proto.RawRecord{Code: 2, Data: data}))
	recs, err := s.Retrieve(2)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, data, recs[0].(*proto.RawRecord).Data)
	assert.Equal(t, int64(0), server.NextChunks())
	assert.Equal(t, proto.VersionNextChunk-1, s.NegotiatedVersion())
	assert.Equal(t, 0, s.unacked)
	assert.NoError(t, s.Err())
}

func TestFirstRequestChunkedLateAcks(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	data := bytes.Repeat([]byte("late-ack;"), 1000)
	require.NoError(t, s.Add(&proto.RawRecord{Code: 3, Data: data}))
	require.NoError(t, s.Commit())
	assert.Equal(t, 2, s.unacked)
	assert.False(t, s.peerKnown)

	recs, err := s.Retrieve(3)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, data, recs[0].(*proto.RawRecord).Data)
	assert.Equal(t, 0, s.unacked)
	assert.True(t, s.peerKnown)

	require.NoError(t, s.Add(&proto.RawRecord{Code: 4, Data: data}))
	recs, err = s.Retrieve(4)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, data, recs[0].(*proto.RawRecord).Data)
}

func TestNegotiatedVersionInOutboundHeaders(t *testing.T) {
	var versions []int
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.Version = 16
		cfg.Greeting = []proto.Entry{{Type: 10, Data: []byte("v16")}}
	})
	cfg := testConfig()
	s := connectSession(t, server, cfg)
	s.writer = proto.NewFrameWriter(cfg.PalVersion, func(frame []byte, more bool) error {
		var hdr proto.FrameHeader
		require.NoError(t, hdr.Decode(frame[:proto.HeaderSize]))
		versions = append(versions, hdr.Version)
		return s.flushFrame(frame, more)
	})

	_, err := s.Retrieve(10)
	require.NoError(t, err)
	require.NoError(t, s.Add(proto.NewFieldRecord(1, "after greeting")))
	_, err = s.Retrieve(1)
	require.NoError(t, err)
	assert.Equal(t, []int{16}, versions)
}

func TestFailureAfterUserChanges(t *testing.T) {
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.Version = 16
		cfg.Greeting = []proto.Entry{{Type: 10, Data: []byte("hello")}}
	})
	s := connectSession(t, server, testConfig())

	recs, err := s.Retrieve(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	s.SetUserID("someone")
	s.SetSessionID("S2")
	server.Close()

	require.Eventually(t, func() bool { return s.Err() != nil }, 2*time.Second, 10*time.Millisecond)
	s.SetUserID("someone else")
	err = s.Add(proto.NewFieldRecord(1, "lost"))
	var cerr *cli.ConnectionError
	require.True(t, errors.As(err, &cerr))
	assert.True(t, IsFatal(err))
	_, err2 := s.Retrieve(1)
	assert.Equal(t, err, err2)
	assert.True(t, s.reported)
}

func TestAddDrainsOpenReply(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(&proto.RawRecord{Code: 1, Data: []byte("small")}))
	require.NoError(t, s.Add(&proto.RawRecord{Code: 2, Data: make([]byte, 6000)}))
	recs, err := s.Retrieve(1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, s.Add(&proto.RawRecord{Code: 3, Data: []byte("after drain")}))
	require.NoError(t, s.Commit())
	recs, err = s.Retrieve(3)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	recs, err = s.Retrieve(2)
	assert.NoError(t, err)
	assert.Nil(t, recs)
	assert.Equal(t, int64(2), server.Transactions())
}

func TestNoDataReply(t *testing.T) {
	server := startServer(t, mockndv.HandlerFunc(func(req []proto.Entry) *mockndv.Response {
		return &mockndv.Response{}
	}), nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(proto.NewFieldRecord(1, "query")))
	recs, err := s.Retrieve(1)
	assert.NoError(t, err)
	assert.Nil(t, recs)
	assert.Equal(t, StateIdle, s.State())
}

func TestTimeoutReraised(t *testing.T) {
	server := startServer(t, mockndv.HandlerFunc(func(req []proto.Entry) *mockndv.Response {
		return &mockndv.Response{Silent: true}
	}), nil)
	cfg := testConfig()
	cfg.ReadTimeout = Duration{Duration: 100 * time.Millisecond}
	s := connectSession(t, server, cfg)
	var calls atomic.Int32
	s.SetTimeoutHandler(TimeoutHandlerFunc(func() bool {
		calls.Inc()
		return false
	}))

	require.NoError(t, s.Add(proto.NewFieldRecord(1, "never answered")))
	start := time.Now()
	_, err := s.Retrieve(1)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	var terr *cli.TimeoutError
	assert.True(t, errors.As(err, &terr))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, IsFatal(err))

	err2 := s.Add(proto.NewFieldRecord(2, "poisoned"))
	assert.Equal(t, err, err2)
	assert.Equal(t, err, s.Err())
}

func TestTimeoutHandlerKeepsWaiting(t *testing.T) {
	server := startServer(t, nil, func(cfg *mockndv.Config) {
		cfg.MeanDelay = 300
	})
	cfg := testConfig()
	cfg.ReadTimeout = Duration{Duration: 50 * time.Millisecond}
	var calls atomic.Int32
	s := connectSession(t, server, cfg, WithTimeoutHandler(TimeoutHandlerFunc(func() bool {
		calls.Inc()
		return true
	})))

	require.NoError(t, s.Add(&proto.RawRecord{Code: 4, Data: []byte("slow")}))
	recs, err := s.Retrieve(4)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Greater(t, calls.Load(), int32(0))
}

func TestServerDisconnect(t *testing.T) {
	server := startServer(t, mockndv.HandlerFunc(func(req []proto.Entry) *mockndv.Response {
		return &mockndv.Response{Disconnect: true}
	}), nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Add(proto.NewFieldRecord(1, "bye")))
	_, err := s.Retrieve(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cli.ErrPeerDisconnect))
	var cerr *cli.ConnectionError
	assert.True(t, errors.As(err, &cerr))
}

func TestDisconnectNotice(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.Disconnect())
	assert.Eventually(t, func() bool { return server.Disconnects() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, ErrSessionClosed, s.Add(proto.NewFieldRecord(1, "late")))
	assert.NoError(t, s.Disconnect())
}

func TestCloseSocketWithoutNotice(t *testing.T) {
	server := startServer(t, nil, nil)
	s := connectSession(t, server, testConfig())

	require.NoError(t, s.CloseSocket())
	_, err := s.Retrieve(1)
	assert.Equal(t, ErrSessionClosed, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), server.Disconnects())
}

func TestMalformedRecordDoesNotPoison(t *testing.T) {
	server := startServer(t, mockndv.HandlerFunc(func(req []proto.Entry) *mockndv.Response {
		return &mockndv.Response{Entries: []proto.Entry{
			{Type: 7, Data: []byte("x")},
			{Type: 8, Data: []byte("fine")},
		}}
	}), nil)
	s := connectSession(t, server, testConfig(), WithRegistry(fieldRegistry(7)))

	require.NoError(t, s.Add(proto.NewFieldRecord(1, "q")))
	_, err := s.Retrieve(7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, proto.ErrMalformedRecord))
	assert.False(t, IsFatal(err))

	recs, err := s.Retrieve(8)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestServerCodePage(t *testing.T) {
	var seen atomic.Value
	server := startServer(t, mockndv.HandlerFunc(func(req []proto.Entry) *mockndv.Response {
		seen.Store(append([]byte(nil), req[0].Data...))
		return &mockndv.Response{Entries: req}
	}), nil)
	cfg := testConfig()
	cfg.ServerCodePage = "IBM-1047"
	s := connectSession(t, server, cfg, WithRegistry(fieldRegistry(9)))

	require.NoError(t, s.Add(proto.NewFieldRecord(9, "HI")))
	recs, err := s.Retrieve(9)
	require.NoError(t, err)
	assert.Equal(t, []proto.Record{proto.NewFieldRecord(9, "HI")}, recs)
	assert.Equal(t, []byte{'1', 0, 0xC8, 0xC9, 0}, seen.Load())

	assert.Error(t, s.SetServerCodePage("no-such-page"))
	require.NoError(t, s.SetServerCodePage("037"))
	assert.Equal(t, codepage.IBM037, s.charset)
}

func TestSessionMisuse(t *testing.T) {
	server := startServer(t, nil, nil)
	s, err := New(testConfig())
	require.NoError(t, err)
	assert.Equal(t, ErrNotConnected, s.Add(proto.NewFieldRecord(1)))
	assert.Equal(t, ErrNotConnected, s.Disconnect())

	host, port := server.HostPort()
	require.NoError(t, s.ConnectTo(host, port))
	defer s.CloseSocket()
	assert.Equal(t, ErrAlreadyConnected, s.ConnectTo(host, port))

	err = s.Add(&proto.RawRecord{Code: proto.TypeEnd})
	assert.True(t, errors.Is(err, proto.ErrReservedType))
	assert.NoError(t, s.Err())
}

func TestNewConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	s, err := New(testConfig())
	require.NoError(t, err)
	assert.Len(t, s.SessionID(), 36)
	s.SetSessionID("S1")
	s.SetUserID("DEVUSER")
	assert.Equal(t, "S1", s.SessionID())
	assert.Equal(t, "DEVUSER", s.UserID())
	assert.Equal(t, proto.CurrentVersion, s.NegotiatedVersion())

	cfg := testConfig()
	cfg.Server.SSLEnabled = true
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pal.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
Appname = "palcli"
PalVersion = 16
UserID = "DEVUSER"
ServerCodePage = "IBM-1140"
ReadTimeout = "250ms"

[Server]
Addr = "ndvhost:2700"
`), 0644))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "palcli", cfg.Appname)
	assert.Equal(t, 16, cfg.PalVersion)
	assert.Equal(t, "ndvhost:2700", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadTimeout.Duration)
	assert.Equal(t, defaultConfig.WriteTimeout, cfg.WriteTimeout)
	require.NoError(t, cfg.validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Retrieving", StateRetrieving.String())
	assert.Equal(t, "Unknown", State(9).String())
}

func TestTLSSession(t *testing.T) {
	certFile, keyFile, err := testutil.WriteSelfSignedCert(t.TempDir())
	require.NoError(t, err)
	server := startServer(t, mockndv.EchoHandler, func(cfg *mockndv.Config) {
		cfg.Listener.SSLEnabled = true
		cfg.Sec = sec.Config{CertPemFilePath: certFile, KeyPemFilePath: keyFile}
	})

	cfg := testConfig()
	cfg.Server.Addr = server.Addr()
	cfg.Server.SSLEnabled = true
	cfg.Sec = sec.Config{CAFilePath: certFile}
	s, err := New(cfg, WithRegistry(fieldRegistry(100)))
	require.NoError(t, err)
	require.NoError(t, s.Connect())
	defer s.CloseSocket()

	require.NoError(t, s.Add(proto.NewFieldRecord(100, "over", "tls")))
	recs, err := s.Retrieve(100)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"over", "tls"}, recs[0].(*proto.FieldRecord).Fields)
	require.NoError(t, s.Disconnect())
}

func TestLoadConfigSections(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pal.toml")
	tc := testutil.NewTestConfig()
	tc.AddConfig("", "Appname", `"bench"`)
	tc.AddConfig("", "WriteTimeout", `"2s"`)
	tc.AddConfig("Server", "Addr", `"127.0.0.1:9310"`)
	tc.AddConfig("Server", "SSLEnabled", "true")
	tc.AddConfig("Sec", "CAFilePath", `"/etc/ndv/ca.crt"`)
	tc.AddConfig("Otel", "Enabled", "false")
	tc.AddConfig("Otel", "Poolname", `"bench"`)
	require.NoError(t, tc.CreateTomlFile(file))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.Appname)
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout.Duration)
	assert.True(t, cfg.Server.SSLEnabled)
	assert.Equal(t, "/etc/ndv/ca.crt", cfg.Sec.CAFilePath)
	assert.Equal(t, "bench", cfg.Otel.Poolname)
	assert.Equal(t, proto.CurrentVersion, cfg.PalVersion)
}
