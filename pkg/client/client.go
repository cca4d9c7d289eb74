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

/*
Package client implements a PAL session to an NDV server.

A session carries one transaction at a time:

	s.Add(records...)   queue request records
	s.Commit()          send them, closing the transaction with END
	s.Retrieve(type)    collect the reply records of one type

Connection, timeout and framing errors poison the session; every later call
returns the same error and the caller must connect a new session.
*/
package client

import (
	"ndvpal/internal/cli"
	"ndvpal/pkg/proto"
)

type TimeoutHandler = cli.TimeoutHandler

type TimeoutHandlerFunc = cli.TimeoutHandlerFunc

type State int

const (
	StateIdle State = iota
	StateQueuing
	StateRetrieving
)

var stateNames = []string{"Idle", "Queuing", "Retrieving"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

type ISession interface {
	Connect() error
	ConnectTo(host string, port int) error
	Add(records ...proto.Record) error
	Retrieve(typeID int) ([]proto.Record, error)
	Commit() error
	Disconnect() error
	CloseSocket() error
	SetTimeoutHandler(h TimeoutHandler)
	SetSessionID(id string)
	SetUserID(id string)
	SetServerCodePage(name string) error
	State() State
	NegotiatedVersion() int
}
