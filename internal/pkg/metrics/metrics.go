package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "http_requests_total", Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskgrade", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	InternalErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "internal_errors_total", Help: "Requests answered with an internal error",
	})

	TasksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "tasks_created_total", Help: "Tasks created",
	})
	SubmissionsFannedOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "submissions_fanned_out_total", Help: "Pending submissions created by task fan-out",
	})
	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "submission_uploads_total", Help: "Submission uploads by outcome",
	}, []string{"outcome"})
	MarksSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "marks_saved_total", Help: "Mark rows written",
	})
	StudentsImported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskgrade", Name: "students_imported_total", Help: "Bulk imported student rows by outcome",
	}, []string{"outcome"})

	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "taskgrade", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration, InternalErrors,
		TasksCreated, SubmissionsFannedOut, Uploads, MarksSaved, StudentsImported,
		DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// Middleware records request count and latency labelled by the matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
