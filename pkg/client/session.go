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
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/atomic"

	"ndvpal/internal/cli"
	"ndvpal/pkg/codepage"
	"ndvpal/pkg/io"
	"ndvpal/pkg/logging"
	"ndvpal/pkg/logging/otel"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/sec"
	"ndvpal/pkg/util"
	"ndvpal/third_party/forked/golang/glog"
)

var _ ISession = (*Session)(nil)

// Session is a single connection to an NDV server. Its methods must be
// called from one goroutine.
type Session struct {
	config       Config
	getTLSConfig func() *tls.Config
	registry     *proto.Registry
	charset      proto.Charset
	sessionID    string
	userID       string

	handlerMtx sync.RWMutex
	handler    TimeoutHandler

	conn     net.Conn
	area     *cli.TransferArea
	receiver *cli.Receiver
	writer   *proto.FrameWriter
	reader   *proto.FrameReader
	version  int
	// peerKnown is set once a frame from the server revealed its version.
	peerKnown bool
	// unacked counts MORE frames sent before peerKnown; the server may
	// answer each with a late NATSPODNEXTCHUNK.
	unacked int

	state   State
	pending map[int]bool
	buckets map[int][]proto.Record
	// outstanding is set by Commit and cleared when END arrives.
	outstanding bool
	endSeen     bool
	txnStart    time.Time
	framesOut   int
	framesIn    int
	recordsIn   int
	// reported is set once the captured error has been logged.
	reported bool

	captured    atomic.Bool
	capturedErr atomic.Error
	closed      atomic.Bool
}

func New(conf Config, opts ...IOption) (*Session, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	data := newOptionData(opts...)
	if conf.Server.SSLEnabled && data.getTLSConfig == nil {
		if conf.Sec == (sec.Config{}) {
			return nil, errors.New("getTLSConfig is nil.")
		}
		tlsCfg, err := sec.NewClientTLSConfig(&conf.Sec)
		if err != nil {
			return nil, err
		}
		data.getTLSConfig = sec.GetTLSConfigFunc(tlsCfg)
	}
	if len(conf.SessionID) == 0 {
		conf.SessionID = uuid.NewV4().String()
	}
	s := &Session{
		config:       conf,
		getTLSConfig: data.getTLSConfig,
		registry:     data.registry,
		charset:      data.charset,
		sessionID:    conf.SessionID,
		userID:       conf.UserID,
		handler:      data.timeoutHandler,
		version:      conf.PalVersion,
		pending:      make(map[int]bool),
		buckets:      make(map[int][]proto.Record),
	}
	if s.registry == nil {
		s.registry = proto.NewRegistry()
	}
	if s.charset == nil && len(conf.ServerCodePage) != 0 {
		if err := s.SetServerCodePage(conf.ServerCodePage); err != nil {
			return nil, err
		}
	}
	if conf.Otel.Enabled && !otel.IsEnabled() {
		if err := otel.Initialize(&conf.Otel); err != nil {
			return nil, err
		}
	}
	if glog.LOG_DEBUG {
		glog.Debugf("session %s cfg=%+v", s.sessionID, conf)
	}
	return s, nil
}

func (s *Session) Connect() error {
	if err := s.config.Server.Validate(); err != nil {
		return err
	}
	return s.connect(&s.config.Server)
}

func (s *Session) ConnectTo(host string, port int) error {
	endpoint := io.NewServiceEndpoint(host, port)
	endpoint.SSLEnabled = s.config.Server.SSLEnabled
	return s.connect(&endpoint)
}

func (s *Session) connect(endpoint *io.ServiceEndpoint) (err error) {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn != nil {
		return ErrAlreadyConnected
	}
	var conn net.Conn
	if conn, err = io.Connect(endpoint, s.config.ConnectTimeout.Duration, s.getTLSConfig); err != nil {
		return &cli.ConnectionError{Err: err}
	}
	s.conn = conn
	s.area = cli.NewTransferArea()
	s.writer = proto.NewFrameWriter(s.config.PalVersion, s.flushFrame)
	s.reader = proto.NewFrameReader()
	s.receiver = cli.StartReceiver(conn, s.area, cli.ReceiverConfig{
		ReadTimeout:    s.config.ReadTimeout.Duration,
		TimeoutHandler: s.timeoutHandler,
		OnError:        s.capture,
	})
	glog.Infof("connected: %s", logging.NewKVBufferForLog().AddSessionID(s.sessionID).
		AddPeer(endpoint.GetConnString()).AddVersion(s.config.PalVersion).String())
	return nil
}

func (s *Session) SetTimeoutHandler(h TimeoutHandler) {
	s.handlerMtx.Lock()
	s.handler = h
	s.handlerMtx.Unlock()
}

func (s *Session) timeoutHandler() cli.TimeoutHandler {
	s.handlerMtx.RLock()
	defer s.handlerMtx.RUnlock()
	return s.handler
}

func (s *Session) SetSessionID(id string) {
	s.sessionID = id
}

func (s *Session) SessionID() string {
	return s.sessionID
}

func (s *Session) SetUserID(id string) {
	s.userID = id
}

func (s *Session) UserID() string {
	return s.userID
}

// SetServerCodePage selects the code page for text fields by name or CCSID.
func (s *Session) SetServerCodePage(name string) error {
	cp, err := codepage.Lookup(name)
	if err != nil {
		return err
	}
	s.charset = cp
	return nil
}

func (s *Session) State() State {
	return s.state
}

// NegotiatedVersion is the lower of the configured PAL version and the
// version of the last frame received.
func (s *Session) NegotiatedVersion() int {
	return s.version
}

// Err returns the error that poisoned the session, if any.
func (s *Session) Err() error {
	return s.capturedErr.Load()
}

func (s *Session) checkUsable() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNotConnected
	}
	if err := s.capturedErr.Load(); err != nil {
		return s.report(err)
	}
	return nil
}

// capture records the first fatal error; later calls return it. The
// receiver goroutine calls it too, so it touches only the atomics.
func (s *Session) capture(err error) error {
	if s.captured.CAS(false, true) {
		s.capturedErr.Store(errors.WithStack(err))
	}
	if cerr := s.capturedErr.Load(); cerr != nil {
		return cerr
	}
	return err
}

// fail captures err from the calling goroutine and reports it.
func (s *Session) fail(err error) error {
	return s.report(s.capture(err))
}

// report logs the captured error the first time the caller observes it.
func (s *Session) report(err error) error {
	if s.reported || s.closed.Load() {
		return err
	}
	s.reported = true
	glog.Errorf("session failed: %s", logging.NewKVBufferForLog().AddSessionID(s.sessionID).
		AddUser(s.userID).AddVersion(s.version).AddStatus(errorKind(err)).AddError(err).String())
	otel.RecordCount(otel.SessionError, []otel.Tags{{TagName: otel.ErrorKind, TagValue: errorKind(err)}})
	return err
}

func errorKind(err error) string {
	switch errors.Cause(err).(type) {
	case *cli.TimeoutError:
		return otel.StatusTimeout
	case *cli.ConnectionError:
		return "connection"
	case *proto.ProtocolError:
		return "protocol"
	}
	return otel.StatusError
}

func (s *Session) write(b []byte) error {
	s.conn.SetWriteDeadline(util.DeadlineFrom(time.Now(), s.config.WriteTimeout.Duration))
	if _, err := s.conn.Write(b); err != nil {
		return &cli.ConnectionError{Err: err}
	}
	return nil
}

func (s *Session) flushFrame(frame []byte, more bool) error {
	if err := s.write(frame); err != nil {
		return err
	}
	otel.RecordCount(otel.FramesOut, nil)
	if !more {
		return nil
	}
	if !s.peerKnown {
		s.unacked++
		return nil
	}
	if s.version < proto.VersionNextChunk {
		return nil
	}
	item, err := s.area.Get()
	if err != nil {
		return &cli.ConnectionError{Err: err}
	}
	if err = item.GetError(); err != nil {
		return err
	}
	if !item.IsNextChunk() {
		return proto.ErrNextChunkExpected
	}
	otel.RecordCount(otel.NextChunk, nil)
	return nil
}

// Add queues records for the current transaction. A reply left unread from
// the previous transaction is drained first.
func (s *Session) Add(records ...proto.Record) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	if s.outstanding {
		if err := s.drainToEnd(); err != nil {
			return err
		}
	}
	if s.state != StateQueuing {
		s.buckets = make(map[int][]proto.Record)
	}

	payloads := make([][]byte, len(records))
	for i, rec := range records {
		if s.pending[rec.Type()] {
			return &MisuseError{Op: "Add", Type: rec.Type(), Err: ErrDuplicateType}
		}
		data, err := proto.SerializeRecord(rec, s.charset)
		if err != nil {
			return &MisuseError{Op: "Add", Type: rec.Type(), Err: err}
		}
		payloads[i] = data
	}
	if s.state != StateQueuing {
		s.txnStart = time.Now()
	}
	s.state = StateQueuing
	for i, rec := range records {
		if err := s.writer.WriteRecord(rec.Type(), payloads[i]); err != nil {
			return s.fail(err)
		}
	}
	for _, rec := range records {
		s.pending[rec.Type()] = true
	}
	return nil
}

// Commit sends the queued records and ends the transaction.
func (s *Session) Commit() error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	if !s.writer.Pending() {
		return nil
	}
	if err := s.writer.Finish(); err != nil {
		return s.fail(err)
	}
	s.framesOut = s.writer.FramesSent()
	s.framesIn = 0
	s.recordsIn = 0
	if glog.LOG_DEBUG {
		glog.Debugf("committed: %s", logging.NewKVBufferForLog().AddSessionID(s.sessionID).
			AddFrames(s.framesOut, 0).String())
	}
	s.writer.Reset()
	s.pending = make(map[int]bool)
	s.outstanding = true
	s.endSeen = false
	s.state = StateIdle
	return nil
}

// Retrieve returns the records of typeID from the reply, reading frames
// until one arrives or the server ends the transaction. It returns nil when
// the reply holds no record of that type.
func (s *Session) Retrieve(typeID int) ([]proto.Record, error) {
	if err := s.checkUsable(); err != nil {
		return nil, err
	}
	if s.writer.Pending() {
		if err := s.Commit(); err != nil {
			return nil, err
		}
	}
	s.state = StateRetrieving
	for {
		if recs, found := s.buckets[typeID]; found {
			delete(s.buckets, typeID)
			s.settle()
			return recs, nil
		}
		if s.endSeen {
			s.settle()
			return nil, nil
		}
		if err := s.receiveFrame(); err != nil {
			return nil, err
		}
	}
}

// settle returns to Idle once the reply is complete and fully consumed.
func (s *Session) settle() {
	if s.endSeen && len(s.buckets) == 0 {
		s.state = StateIdle
	}
}

func (s *Session) drainToEnd() error {
	for !s.endSeen {
		if err := s.receiveFrame(); err != nil {
			if IsFatal(err) {
				return err
			}
		}
	}
	return nil
}

// receiveFrame takes one frame from the receiver and sorts its records into
// buckets. A record that fails to restore is skipped and its error returned
// after the rest of the frame is processed.
func (s *Session) receiveFrame() error {
	item, err := s.area.Get()
	if err != nil {
		if s.closed.Load() {
			return ErrSessionClosed
		}
		return s.fail(&cli.ConnectionError{Err: err})
	}
	if err = item.GetError(); err != nil {
		return s.report(err)
	}
	if item.IsNextChunk() {
		if s.unacked == 0 {
			return s.fail(proto.ErrUnexpectedNextChunk)
		}
		s.unacked--
		otel.RecordCount(otel.NextChunk, nil)
		return nil
	}
	f, err := s.reader.Decode(item.GetFrame())
	if err != nil {
		return s.fail(err)
	}
	s.framesIn++
	if !s.peerKnown {
		s.peerKnown = true
		if f.Header.Version < proto.VersionNextChunk || s.version < proto.VersionNextChunk {
			s.unacked = 0
		}
	}
	if f.Header.Version < s.version {
		s.version = f.Header.Version
		s.writer.SetVersion(s.version)
		glog.Infof("session %s negotiated PAL version %d", s.sessionID, s.version)
	}

	var decodeErr error
	for _, e := range f.Entries {
		rec, err := s.registry.Restore(e.Type, e.Data, s.charset)
		if err != nil {
			b := logging.NewKVBufferForLog().AddSessionID(s.sessionID).AddRecordType(e.Type).AddError(err)
			if glog.LOG_DEBUG {
				b.AddHexData(e.Data)
			}
			glog.Errorf("restore failed: %s", b.String())
			if decodeErr == nil {
				decodeErr = err
			}
			continue
		}
		s.buckets[e.Type] = append(s.buckets[e.Type], rec)
		s.recordsIn++
	}

	if f.More() {
		if s.version >= proto.VersionNextChunk {
			if err = s.write(proto.NextChunkNotice); err != nil {
				return s.fail(err)
			}
			otel.RecordCount(otel.NextChunk, nil)
		}
	} else {
		s.endSeen = true
		if s.outstanding {
			s.outstanding = false
			elapsed := time.Since(s.txnStart)
			otel.RecordTransaction("transaction", otel.StatusSuccess, elapsed.Milliseconds())
			if glog.LOG_DEBUG {
				glog.Debugf("transaction done: %s", logging.NewKVBufferForLog().AddSessionID(s.sessionID).
					AddUser(s.userID).AddVersion(s.version).AddFrames(s.framesOut, s.framesIn).
					AddNumRecords(s.recordsIn).AddElapsed(elapsed).String())
			}
		}
		if glog.LOG_DEBUG {
			if f.NoData {
				glog.Debugf("session %s: transaction carried no data", s.sessionID)
			}
		}
	}
	return decodeErr
}

// Disconnect notifies the server when its version supports it and closes
// the connection.
func (s *Session) Disconnect() error {
	if s.closed.Load() {
		return nil
	}
	if s.conn == nil {
		return ErrNotConnected
	}
	if s.version >= proto.VersionDisconnect && !s.captured.Load() {
		if err := s.write(proto.DisconnectNotice); err != nil {
			glog.Warningf("session %s: fail to send disconnect notice: %s", s.sessionID, err)
		}
	}
	return s.CloseSocket()
}

// CloseSocket closes the connection without notifying the server.
func (s *Session) CloseSocket() (err error) {
	if !s.closed.CAS(false, true) {
		return nil
	}
	if s.conn == nil {
		return nil
	}
	s.receiver.Stop()
	err = s.conn.Close()
	s.area.Close()
	<-s.receiver.Done()
	s.state = StateIdle
	otel.RecordCount(otel.Disconnect, nil)
	glog.Infof("session %s closed", s.sessionID)
	return
}
