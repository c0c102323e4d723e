// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "tender_collab"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	// 业务指标 - 章节锁
	LockAcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "acquire_total",
			Help:      "Total number of chapter lock acquisitions",
		},
		[]string{"outcome"}, // acquired/refreshed/conflict
	)

	LockReleaseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "release_total",
			Help:      "Total number of chapter lock releases",
		},
		[]string{"outcome"}, // released/noop/denied
	)

	LockExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "expired_total",
			Help:      "Total number of lazily reclaimed expired locks",
		},
	)

	// 业务指标 - 版本
	VersionCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "version",
			Name:      "created_total",
			Help:      "Total number of versions created",
		},
		[]string{"change_type"},
	)

	VersionAllocRetryTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "version",
			Name:      "alloc_retry_total",
			Help:      "Total number of version number allocation retries after store contention",
		},
	)

	DiffComputedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "version",
			Name:      "diff_total",
			Help:      "Total number of version diffs computed",
		},
		[]string{"status"},
	)

	// 业务指标 - 回滚
	RollbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "total",
			Help:      "Total number of rollback operations",
		},
		[]string{"status"},
	)

	RollbackDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "duration_seconds",
			Help:      "Rollback operation duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	RollbackChaptersRestored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "chapters_restored",
			Help:      "Number of chapters restored per rollback",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	// 活跃编辑者指标
	ActiveEditors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "editing",
			Name:      "active_editors",
			Help:      "Current number of chapters held under an edit lock",
		},
	)
)
