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
	"os"

	"ndvpal/pkg/client"
	"ndvpal/pkg/cmd"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/util"
)

type cmdSendT struct {
	clientCommandT
	optNoDisconnect bool
}

func (c *cmdSendT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.BoolOption(&c.optNoDisconnect, "no-disconnect", false, "close the socket without sending the disconnect notice")
	c.SetSynopsis("[option] <field> [<field>...]")
	c.AddExample(name+" -s 127.0.0.1:9310 -t 100 ACCT 42", "send one record with two fields")
}

func (c *cmdSendT) Exec() {
	c.Validate()

	s, err := c.newSession()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() {
		if c.optNoDisconnect {
			s.CloseSocket()
		} else {
			s.Disconnect()
		}
	}()

	recs, err := c.transact(s, c.Args())
	if err != nil {
		fmt.Printf("* transaction failed. %s (fatal=%v)\n", err, client.IsFatal(err))
		return
	}
	fmt.Printf("session %s, negotiated version %d, %d record(s) of type %d\n",
		s.SessionID(), s.NegotiatedVersion(), len(recs), c.optReplyType)
	for i, r := range recs {
		switch rec := r.(type) {
		case *proto.FieldRecord:
			fmt.Fprintf(os.Stdout, "  [%d] %s\n", i, rec)
		case *proto.RawRecord:
			fmt.Fprintf(os.Stdout, "  [%d] type=%d\n%s\n", i, rec.Code, util.HexDumpString(rec.Data))
		default:
			fmt.Fprintf(os.Stdout, "  [%d] %+v\n", i, rec)
		}
	}
}

func init() {
	send := &cmdSendT{}
	send.Init("send", "send one transaction and print the reply")

	bench := &cmdBenchT{}
	bench.Init("bench", "run transactions and report latency statistics")

	cmd.RegisterNewGroup("session commands", send, bench)
}
