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

package otel

import (
	"sync"

	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/sdk/metric"
)

type CMetric int

const (
	FramesOut CMetric = CMetric(iota)
	FramesIn
	NextChunk
	Disconnect
	SessionError
)

const (
	Endpoint  = string("endpoint")
	Operation = string("operation")
	Status    = string("status")
	ErrorKind = string("error_kind")
)

// OTEl Status
const (
	StatusSuccess string = "SUCCESS"
	StatusError   string = "ERROR"
	StatusTimeout string = "TIMEOUT"
)

const NDVPAL_METRIC_PREFIX = "ndvpal.client."
const MeterName = "ndvpal-client-meter"

type Tags struct {
	TagName  string
	TagValue string
}

type countMetric struct {
	metricName    string
	metricDesc    string
	counter       syncint64.Counter
	createCounter *sync.Once
}

type histogramMetric struct {
	metricName      string
	metricDesc      string
	histogram       syncint64.Histogram
	createHistogram *sync.Once
}

const (
	connectHist = iota
	transactionHist
)

var countMetricMap = map[CMetric]*countMetric{
	FramesOut:    {"frames_out", "Frames written to the NDV server", nil, &sync.Once{}},
	FramesIn:     {"frames_in", "Frames received from the NDV server", nil, &sync.Once{}},
	NextChunk:    {"next_chunk", "NATSPODNEXTCHUNK exchanges", nil, &sync.Once{}},
	Disconnect:   {"disconnect", "Sessions closed", nil, &sync.Once{}},
	SessionError: {"session_error", "Sessions poisoned by a receiver or framing error", nil, &sync.Once{}},
}

var histMetricMap = map[int]*histogramMetric{
	connectHist:     {"connect", "Histogram for NDV connect", nil, &sync.Once{}},
	transactionHist: {"transaction", "Histogram for NDV transactions", nil, &sync.Once{}},
}

var (
	meterProvider *metric.MeterProvider
	providerMutex sync.RWMutex
)
