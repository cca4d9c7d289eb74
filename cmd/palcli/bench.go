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
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"ndvpal/pkg/client"
	"ndvpal/third_party/forked/golang/glog"
)

type cmdBenchT struct {
	clientCommandT
	optNumTxns    uint
	optNumWorkers uint
	optNumFields  uint
	optReconnect  bool
}

func (c *cmdBenchT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.UintOption(&c.optNumTxns, "n|num-txns", 1000, "specify the number of transactions per worker")
	c.UintOption(&c.optNumWorkers, "w|workers", 1, "specify the number of concurrent sessions")
	c.UintOption(&c.optNumFields, "f|fields", 4, "specify the number of generated fields per request record")
	c.BoolOption(&c.optReconnect, "reconnect", false, "open a new session for every transaction")
	c.SetSynopsis("[option]")
	c.AddDetails("  Each worker owns one session. Requests carry generated uuid fields.\n")
	c.AddExample(name+" -s 127.0.0.1:9310 -n 10000 -w 8", "run 8 sessions with 10000 transactions each")
}

func (c *cmdBenchT) Exec() {
	c.Validate()
	if c.optNumWorkers == 0 || c.optNumTxns == 0 {
		fmt.Println("nothing to do")
		return
	}
	fmt.Printf("  running %d worker(s) x %d transaction(s) against %s...\n",
		c.optNumWorkers, c.optNumTxns, c.Server.Addr)

	var stats benchStats
	perWorker := make([]benchStats, c.optNumWorkers)
	var wg sync.WaitGroup
	stats.Start()
	for i := range perWorker {
		wg.Add(1)
		go func(st *benchStats) {
			defer wg.Done()
			c.runWorker(st)
		}(&perWorker[i])
	}
	wg.Wait()
	stats.Stop()

	for i := range perWorker {
		stats.connect.merge(&perWorker[i].connect)
		stats.transaction.merge(&perWorker[i].transaction)
	}
	stats.PrettyPrint(os.Stdout)
}

func (c *cmdBenchT) connectTimed(st *benchStats) *client.Session {
	start := time.Now()
	s, err := c.newSession()
	st.connect.Put(time.Since(start), err)
	if err != nil {
		glog.Warningf("connect failed: %s", err)
		return nil
	}
	return s
}

func (c *cmdBenchT) runWorker(st *benchStats) {
	var s *client.Session
	fields := make([]string, c.optNumFields)
	for i := uint(0); i < c.optNumTxns; i++ {
		if s == nil {
			if s = c.connectTimed(st); s == nil {
				st.transaction.Put(0, client.ErrNotConnected)
				continue
			}
		}
		for j := range fields {
			fields[j] = uuid.NewV4().String()
		}
		start := time.Now()
		_, err := c.transact(s, fields)
		st.transaction.Put(time.Since(start), err)

		if err != nil && client.IsFatal(err) {
			glog.Warningf("session %s failed: %s", s.SessionID(), err)
			s.CloseSocket()
			s = nil
		} else if c.optReconnect {
			s.Disconnect()
			s = nil
		}
	}
	if s != nil {
		s.Disconnect()
	}
}
