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

// Package mockndv is an in-process stub NDV server speaking the NATSPOD
// framing, including chunked replies and the NATSPODNEXTCHUNK exchange.
package mockndv

import (
	"crypto/tls"
	"errors"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"

	"ndvpal/pkg/io"
	"ndvpal/pkg/io/ioutil"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/sec"
	"ndvpal/pkg/util"
	"ndvpal/third_party/forked/golang/glog"
)

type Config struct {
	Listener    io.ListenerConfig
	Inbound     io.InboundConfig
	Version     int
	MeanDelay   int // ms
	StdDevDelay int
	LogLevel    string
	// Sec is required when Listener.SSLEnabled is set.
	Sec sec.Config
	// Greeting is sent as an unsolicited transaction right after a
	// connection is accepted.
	Greeting []proto.Entry `toml:"-"`
}

var DefaultConfig = Config{
	Listener: io.ListenerConfig{
		ServiceEndpoint: io.ServiceEndpoint{Addr: "127.0.0.1:0"},
	},
	Inbound:  io.DefaultInboundConfig,
	Version:  proto.CurrentVersion,
	LogLevel: "warning",
}

// Response tells the server how to answer one transaction.
type Response struct {
	Entries []proto.Entry
	// Disconnect sends NATSPODDISCONNECT and closes the connection.
	Disconnect bool
	// Silent sends nothing.
	Silent bool
}

type Handler interface {
	Handle(req []proto.Entry) *Response
}

type HandlerFunc func(req []proto.Entry) *Response

func (f HandlerFunc) Handle(req []proto.Entry) *Response {
	return f(req)
}

// EchoHandler replies with the request records.
var EchoHandler = HandlerFunc(func(req []proto.Entry) *Response {
	return &Response{Entries: req}
})

var errClientDisconnect = errors.New("client sent NATSPODDISCONNECT")

type Server struct {
	config   Config
	handler  Handler
	listener net.Listener
	wg       sync.WaitGroup
	mtx      sync.Mutex
	conns    map[net.Conn]struct{}
	rnd      *rand.Rand
	closed   atomic.Bool

	transactions atomic.Int64
	nextChunks   atomic.Int64
	disconnects  atomic.Int64
}

func NewServer(cfg Config, h Handler) *Server {
	cfg.Inbound.SetDefaultIfNotDefined()
	cfg.Listener.SetDefaultIfNotDefined()
	if cfg.Version == 0 {
		cfg.Version = proto.CurrentVersion
	}
	if h == nil {
		h = EchoHandler
	}
	return &Server{
		config:  cfg,
		handler: h,
		conns:   make(map[net.Conn]struct{}),
		rnd:     rand.New(rand.NewSource(1698661970)),
	}
}

func (s *Server) Start() (err error) {
	ep := &s.config.Listener.ServiceEndpoint
	if s.listener, err = net.Listen(ep.GetNetwork(), ep.Addr); err != nil {
		return
	}
	if ep.SSLEnabled {
		var tlsCfg *tls.Config
		if tlsCfg, err = sec.NewServerTLSConfig(&s.config.Sec); err != nil {
			s.listener.Close()
			s.listener = nil
			return
		}
		s.listener = tls.NewListener(s.listener, tlsCfg)
	}
	glog.Infof("mockndv %s listening on %s version=%d", s.config.Listener.Name, s.listener.Addr(), s.config.Version)
	s.wg.Add(1)
	go s.acceptLoop()
	return
}

// Run starts the server and blocks until it is closed.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}
	s.wg.Wait()
	return nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) HostPort() (string, int) {
	host, port, _ := net.SplitHostPort(s.Addr())
	p, _ := strconv.Atoi(port)
	return host, p
}

func (s *Server) Close() {
	if !s.closed.CAS(false, true) {
		return
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.mtx.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mtx.Unlock()
	s.wg.Wait()
}

func (s *Server) Transactions() int64 {
	return s.transactions.Load()
}

// NextChunks counts NATSPODNEXTCHUNK notices received from clients.
func (s *Server) NextChunks() int64 {
	return s.nextChunks.Load()
}

// Disconnects counts NATSPODDISCONNECT notices received from clients.
func (s *Server) Disconnects() int64 {
	return s.disconnects.Load()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.closed.Load() {
				glog.Warningln(err)
			}
			return
		}
		s.mtx.Lock()
		if s.closed.Load() {
			s.mtx.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mtx.Unlock()

		s.wg.Add(1)
		go func() {
			defer func() {
				s.mtx.Lock()
				delete(s.conns, conn)
				s.mtx.Unlock()
				conn.Close()
				s.wg.Done()
			}()
			s.serve(conn)
		}()
	}
}

func (s *Server) delay() {
	if s.config.MeanDelay <= 0 {
		return
	}
	s.mtx.Lock()
	d := int(s.rnd.NormFloat64()*float64(s.config.StdDevDelay) + float64(s.config.MeanDelay))
	s.mtx.Unlock()
	if d > 0 {
		time.Sleep(time.Duration(d) * time.Millisecond)
	}
}

type serverConn struct {
	server  *Server
	conn    net.Conn
	reader  *proto.FrameReader
	version int
}

func (s *Server) serve(conn net.Conn) {
	c := &serverConn{
		server:  s,
		conn:    conn,
		reader:  proto.NewFrameReader(),
		version: s.config.Version,
	}
	if len(s.config.Greeting) != 0 {
		if err := c.reply(s.config.Greeting); err != nil {
			ioutil.LogError(err)
			return
		}
	}
	for {
		req, err := c.readTransaction()
		if err != nil {
			if err == errClientDisconnect {
				s.disconnects.Inc()
				glog.Debugln(err)
			} else if !s.closed.Load() {
				ioutil.LogError(err)
			}
			return
		}
		s.transactions.Inc()
		resp := s.handler.Handle(req)
		s.delay()
		switch {
		case resp == nil || resp.Silent:
		case resp.Disconnect:
			c.write(proto.DisconnectNotice)
			return
		default:
			if err = c.reply(resp.Entries); err != nil {
				ioutil.LogError(err)
				return
			}
		}
	}
}

func (c *serverConn) readFull(b []byte, timeout time.Duration) error {
	c.conn.SetReadDeadline(util.DeadlineFrom(time.Now(), timeout))
	n := 0
	for n < len(b) {
		m, err := c.conn.Read(b[n:])
		n += m
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *serverConn) write(b []byte) error {
	c.conn.SetWriteDeadline(util.DeadlineFrom(time.Now(), c.server.config.Inbound.WriteTimeout.Duration))
	_, err := c.conn.Write(b)
	return err
}

// readTransaction reads frames up to END and returns their records.
func (c *serverConn) readTransaction() (entries []proto.Entry, err error) {
	timeout := c.server.config.Inbound.IdleTimeout.Duration
	for {
		var raw [proto.HeaderSize]byte
		if err = c.readFull(raw[:], timeout); err != nil {
			return
		}
		timeout = c.server.config.Inbound.ReadTimeout.Duration
		if proto.IsDisconnect(raw[:]) {
			return nil, errClientDisconnect
		}
		if proto.IsNextChunk(raw[:]) {
			return nil, proto.ErrUnexpectedNextChunk
		}
		var hdr proto.FrameHeader
		if err = hdr.Decode(raw[:]); err != nil {
			return
		}
		frame := make([]byte, proto.HeaderSize+hdr.PayloadLength)
		copy(frame, raw[:])
		if err = c.readFull(frame[proto.HeaderSize:], timeout); err != nil {
			return
		}
		var f *proto.Frame
		if f, err = c.reader.Decode(frame); err != nil {
			return
		}
		if hdr.Version < c.version {
			c.version = hdr.Version
		}
		entries = append(entries, f.Entries...)
		if !f.More() {
			return
		}
		if c.version >= proto.VersionNextChunk {
			if err = c.write(proto.NextChunkNotice); err != nil {
				return
			}
		}
	}
}

func (c *serverConn) reply(entries []proto.Entry) error {
	w := proto.NewFrameWriter(c.server.config.Version, c.flush)
	for _, e := range entries {
		if err := w.WriteRecord(e.Type, e.Data); err != nil {
			return err
		}
	}
	return w.FinishEmpty()
}

func (c *serverConn) flush(frame []byte, more bool) error {
	if err := c.write(frame); err != nil {
		return err
	}
	if !more || c.version < proto.VersionNextChunk {
		return nil
	}
	var raw [proto.HeaderSize]byte
	if err := c.readFull(raw[:], c.server.config.Inbound.ReadTimeout.Duration); err != nil {
		return err
	}
	if !proto.IsNextChunk(raw[:]) {
		return proto.ErrNextChunkExpected
	}
	c.server.nextChunks.Inc()
	return nil
}
