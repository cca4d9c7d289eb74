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
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	otelCfg "ndvpal/pkg/logging/otel/config"
	"ndvpal/third_party/forked/golang/glog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/metric/unit"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregation"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func Initialize(args ...interface{}) (err error) {
	if len(args) == 0 {
		err = fmt.Errorf("Otel config argument not as expected")
		glog.Error(err)
		return
	}
	var c *otelCfg.Config
	var ok bool
	if c, ok = args[0].(*otelCfg.Config); !ok {
		err = fmt.Errorf("wrong argument type")
		glog.Error(err)
		return
	}
	if err = c.Validate(); err != nil {
		return
	}
	if glog.LOG_DEBUG {
		c.Dump()
	}
	if c.Enabled {
		err = InitMetricProvider(c)
	}
	return
}

func InitMetricProvider(config *otelCfg.Config) error {
	exp, err := NewHTTPExporter(context.Background(), config)
	if err != nil {
		return err
	}
	reader := metric.NewPeriodicReader(exp, metric.WithInterval(time.Duration(config.Resolution)*time.Second))
	return InitMetricProviderWithReader(config, reader)
}

// InitMetricProviderWithReader installs a meter provider that feeds reader.
func InitMetricProviderWithReader(config *otelCfg.Config, reader metric.Reader) error {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	if meterProvider != nil {
		glog.Info("meter provider already initialized")
		return nil
	}
	meterProvider = metric.NewMeterProvider(
		metric.WithResource(getResourceInfo(config.Poolname, config.Environment)),
		metric.WithReader(reader),
		metric.WithView(bucketViews(config)...),
	)
	global.SetMeterProvider(meterProvider)
	glog.Info("ndvpal OTEL initialized")
	return nil
}

func bucketViews(config *otelCfg.Config) []metric.View {
	view := func(name string, boundaries []float64) metric.View {
		return metric.NewView(
			metric.Instrument{
				Name:  PopulateMetricNamePrefix(name),
				Scope: instrumentation.Scope{Name: MeterName},
			},
			metric.Stream{
				Aggregation: aggregation.ExplicitBucketHistogram{
					Boundaries: boundaries,
				},
			})
	}
	return []metric.View{
		view(histMetricMap[connectHist].metricName, config.HistogramBuckets.Connect),
		view(histMetricMap[transactionHist].metricName, config.HistogramBuckets.Transaction),
	}
}

func NewHTTPExporter(ctx context.Context, config *otelCfg.Config) (metric.Exporter, error) {
	var deltaTemporalitySelector = func(metric.InstrumentKind) metricdata.Temporality { return metricdata.DeltaTemporality }
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(fmt.Sprintf("%s:%d", config.Host, config.Port)),
		otlpmetrichttp.WithURLPath(config.UrlPath),
		otlpmetrichttp.WithTimeout(7 * time.Second),
		otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression),
		otlpmetrichttp.WithTemporalitySelector(deltaTemporalitySelector),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 1 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  240 * time.Second,
		}),
	}
	if !config.UseTls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func IsEnabled() bool {
	providerMutex.RLock()
	defer providerMutex.RUnlock()
	return meterProvider != nil
}

// Finalize flushes pending measurements and shuts the provider down.
func Finalize(ctx context.Context) (err error) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	if meterProvider != nil {
		err = meterProvider.Shutdown(ctx)
		meterProvider = nil
	}
	return
}

func getHistogram(id int) (syncint64.Histogram, error) {
	h := histMetricMap[id]
	var err error
	h.createHistogram.Do(func() {
		meter := global.Meter(MeterName)
		h.histogram, err = meter.SyncInt64().Histogram(
			PopulateMetricNamePrefix(h.metricName),
			instrument.WithDescription(h.metricDesc),
			instrument.WithUnit(unit.Milliseconds),
		)
	})
	if h.histogram == nil {
		if err == nil {
			err = errors.New("Histogram Object not Ready")
		}
		return nil, err
	}
	return h.histogram, nil
}

func GetCounter(counterName CMetric) (syncint64.Counter, error) {
	if counterMetric, ok := countMetricMap[counterName]; ok {
		counterMetric.createCounter.Do(func() {
			meter := global.Meter(MeterName)
			counterMetric.counter, _ = meter.SyncInt64().Counter(
				PopulateMetricNamePrefix(counterMetric.metricName),
				instrument.WithDescription(counterMetric.metricDesc),
			)
		})
		if counterMetric.counter != nil {
			return counterMetric.counter, nil
		} else {
			return nil, errors.New("Counter Object not Ready")
		}
	} else {
		return nil, errors.New("No Such counter exists")
	}
}

func RecordOutboundConnection(endpoint string, status string, latency int64) {
	if !IsEnabled() {
		return
	}
	if h, err := getHistogram(connectHist); err == nil {
		h.Record(context.Background(), latency,
			attribute.String(Endpoint, endpoint),
			attribute.String(Status, status),
		)
	}
}

// RecordTransaction records the latency of one commit/retrieve round trip.
func RecordTransaction(opType string, status string, latency int64) {
	if !IsEnabled() {
		return
	}
	if h, err := getHistogram(transactionHist); err == nil {
		h.Record(context.Background(), latency,
			attribute.String(Operation, opType),
			attribute.String(Status, status),
		)
	}
}

func RecordCount(counterName CMetric, tags []Tags) {
	if !IsEnabled() {
		return
	}
	if counter, err := GetCounter(counterName); err == nil {
		if len(tags) != 0 {
			counter.Add(context.Background(), 1, covertTagsToOTELAttributes(tags)...)
		} else {
			counter.Add(context.Background(), 1)
		}
	} else {
		glog.Error(err)
	}
}

func covertTagsToOTELAttributes(tags []Tags) (attr []attribute.KeyValue) {
	attr = make([]attribute.KeyValue, len(tags))
	for i := 0; i < len(tags); i++ {
		attr[i] = attribute.String(tags[i].TagName, tags[i].TagValue)
	}
	return
}

func PopulateMetricNamePrefix(metricName string) string {
	return NDVPAL_METRIC_PREFIX + metricName
}

func getResourceInfo(appName string, env string) *resource.Resource {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(semconv.SchemaURL,
		semconv.HostNameKey.String(hostname),
		semconv.ServiceNameKey.String(appName),
		attribute.String("environment", env),
		attribute.String("application", appName),
	)
}
