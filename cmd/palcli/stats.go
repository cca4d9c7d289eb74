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
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

type (
	// latencyStat collects per-transaction latencies of one phase.
	latencyStat struct {
		mtx       sync.Mutex
		hist      *hdrhistogram.Histogram
		total     time.Duration
		numErrors int64
	}

	statsData struct {
		throughput   float32
		avgLatency   time.Duration
		minLatency   time.Duration
		maxLatency   time.Duration
		p50Latency   time.Duration
		p95Latency   time.Duration
		p99Latency   time.Duration
		p9999Latency time.Duration
		numRequests  int64
	}

	benchStats struct {
		connect     latencyStat
		transaction latencyStat
		tmStart     time.Time
		elapsed     time.Duration
	}
)

func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, int64(3600*time.Second), 3)
}

func (s *latencyStat) Put(tm time.Duration, err error) {
	s.mtx.Lock()
	if s.hist == nil {
		s.hist = newLatencyHistogram()
	}
	if err != nil {
		s.numErrors++
	} else {
		s.hist.RecordValue(int64(tm))
		s.total += tm
	}
	s.mtx.Unlock()
}

func (s *latencyStat) GetStats() (stat statsData) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.hist == nil {
		return
	}
	stat.numRequests = s.hist.TotalCount()
	stat.minLatency = time.Duration(s.hist.Min())
	stat.maxLatency = time.Duration(s.hist.Max())
	stat.p50Latency = time.Duration(s.hist.ValueAtQuantile(50.))
	stat.p95Latency = time.Duration(s.hist.ValueAtQuantile(95.))
	stat.p99Latency = time.Duration(s.hist.ValueAtQuantile(99.))
	stat.p9999Latency = time.Duration(s.hist.ValueAtQuantile(99.99))

	if stat.numRequests != 0 {
		v := float32(s.total) / float32(stat.numRequests)
		stat.avgLatency = time.Duration(v)
		stat.throughput = 1.0e9 / v
	}
	return
}

func (s *latencyStat) NumErrors() int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.numErrors
}

// merge folds o into s. Used to combine per-worker stats.
func (s *latencyStat) merge(o *latencyStat) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.hist == nil {
		s.hist = newLatencyHistogram()
	}
	if o.hist != nil {
		s.hist.Merge(o.hist)
	}
	s.total += o.total
	s.numErrors += o.numErrors
}

func (b *benchStats) Start() {
	b.tmStart = time.Now()
}

func (b *benchStats) Stop() {
	b.elapsed = time.Since(b.tmStart)
}

func (b *benchStats) PrettyPrint(w io.Writer) {
	msfunc := func(d time.Duration) time.Duration {
		return d.Round(time.Microsecond)
	}

	fmt.Fprintln(w,
		`
   per sec  |                             latency                                                      |  number of |             | number of
  (average) | average    | min        | max        |        50% |      95%   |      99%   |     99.99% |  requests  | phase       |  errors
------------+------------+------------+------------+------------+------------+------------+------------+------------+-------------+-------------`)
	wstatFunc := func(stat *statsData, phase string, numErrors int64) {
		fmt.Fprintf(w, "%12.2f %12s %12s %12s %12s %12s %12s %12s %12d %13s %12d\n",
			stat.throughput, msfunc(stat.avgLatency), msfunc(stat.minLatency), msfunc(stat.maxLatency), msfunc(stat.p50Latency), msfunc(stat.p95Latency),
			msfunc(stat.p99Latency), msfunc(stat.p9999Latency),
			stat.numRequests, phase, numErrors)
	}
	connect := b.connect.GetStats()
	txn := b.transaction.GetStats()
	wstatFunc(&connect, "connect", b.connect.NumErrors())
	wstatFunc(&txn, "transaction", b.transaction.NumErrors())
	fmt.Fprintln(w,
		"------------+------------+------------+------------+------------+------------+------------+------------+------------+-------------+-------------")
	if b.elapsed > 0 {
		fmt.Fprintf(w, "  elapsed %s, %.2f transaction(s)/s overall\n",
			msfunc(b.elapsed), float64(txn.numRequests)/b.elapsed.Seconds())
	}
}
