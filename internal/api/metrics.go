package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relayd_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relayd_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	commandsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relayd_commands_submitted_total",
		Help: "Commands accepted for delivery, by submission path",
	}, []string{"path"})

	commandsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayd_commands_delivered_total",
		Help: "Commands handed to a polling client",
	})

	resultsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relayd_results_recorded_total",
		Help: "Execution results recorded, by status",
	}, []string{"status"})

	offlineSweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayd_offline_sweeps_total",
		Help: "Forced offline re-evaluation sweeps",
	})

	clientsMarkedOfflineTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayd_clients_marked_offline_total",
		Help: "Clients newly marked offline by forced sweeps",
	})

	filesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayd_files_uploaded_total",
		Help: "Files accepted into session storage",
	})

	fileUploadsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relayd_file_uploads_rejected_total",
		Help: "Rejected file uploads, by reason",
	}, []string{"reason"})
)
