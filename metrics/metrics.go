// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires the core's observable events into Prometheus
// collectors, following the registerer-passed-in style used throughout the
// Lux consensus stack.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the core components update.
type Metrics struct {
	RoundCurrent        prometheus.Gauge
	CertificatesFormed  prometheus.Counter
	CertificatesStored  prometheus.Gauge
	BatchesProposed     prometheus.Counter
	AnchorsCommitted    prometheus.Counter
	AnchorsSkipped      prometheus.Counter
	CommittedRound      prometheus.Gauge
	GCRound             prometheus.Gauge
	GCPurgedCerts       prometheus.Counter
	EquivocationsSeen   prometheus.Counter
	WorkerQueueDepth    prometheus.Gauge
	WorkerQueueRejected prometheus.Counter
	SyncFetchesInFlight prometheus.Gauge
	SyncBulkRoundsDone  prometheus.Counter
	PeersBenched        prometheus.Gauge
	MessagesSent        prometheus.Counter
	MessagesDropped     prometheus.Counter
}

// New creates and registers the full metric set against reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RoundCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_round_current",
			Help: "Current round this validator's primary is in.",
		}),
		CertificatesFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_certificates_formed_total",
			Help: "Certificates this validator assembled from quorum signatures.",
		}),
		CertificatesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_certificates_stored",
			Help: "Certificates currently resident in storage.",
		}),
		BatchesProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_batches_proposed_total",
			Help: "Batch headers this validator proposed.",
		}),
		AnchorsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_anchors_committed_total",
			Help: "Anchors committed by the BFT layer.",
		}),
		AnchorsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_anchors_skipped_total",
			Help: "Anchors permanently skipped after timeout.",
		}),
		CommittedRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_committed_round",
			Help: "Highest round committed so far.",
		}),
		GCRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_gc_round",
			Help: "Highest round purged by garbage collection.",
		}),
		GCPurgedCerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_gc_purged_certificates_total",
			Help: "Certificates purged by garbage collection.",
		}),
		EquivocationsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_equivocations_total",
			Help: "Distinct-header equivocations observed from peers.",
		}),
		WorkerQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_worker_queue_depth",
			Help: "Transmissions pending in the worker's queue.",
		}),
		WorkerQueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_worker_queue_rejected_total",
			Help: "Transmissions rejected due to a full worker queue.",
		}),
		SyncFetchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_sync_fetches_in_flight",
			Help: "Outstanding per-id sync fetch requests.",
		}),
		SyncBulkRoundsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_sync_bulk_rounds_total",
			Help: "Rounds fetched and installed during bulk sync.",
		}),
		PeersBenched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narwhal_gateway_peers_benched",
			Help: "Committee members currently benched by this node's gateway.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_gateway_messages_sent_total",
			Help: "Wire messages sent through the gateway.",
		}),
		MessagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narwhal_gateway_messages_dropped_total",
			Help: "Inbound messages dropped by the gateway (benched sender, decode failure).",
		}),
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewNoOp returns a Metrics backed by an isolated registry, suitable for
// tests that don't want to collide on global Prometheus registration.
func NewNoOp() *Metrics {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RoundCurrent, m.CertificatesFormed, m.CertificatesStored,
		m.BatchesProposed, m.AnchorsCommitted, m.AnchorsSkipped,
		m.CommittedRound, m.GCRound, m.GCPurgedCerts, m.EquivocationsSeen,
		m.WorkerQueueDepth, m.WorkerQueueRejected, m.SyncFetchesInFlight,
		m.SyncBulkRoundsDone, m.PeersBenched, m.MessagesSent, m.MessagesDropped,
	}
}
