// Package telemetry exposes domain counters over a Prometheus registry.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lifelog"

// Recorder собирает метрики приложения. Нулевой *Recorder безопасен и ничего не пишет.
type Recorder struct {
	registry *prometheus.Registry

	dailyLogsSaved    prometheus.Counter
	weeklyLogsSaved   prometheus.Counter
	todosChanged      *prometheus.CounterVec
	learningItems     prometheus.Counter
	reviews           *prometheus.CounterVec
	scoreComputations prometheus.Counter
	overallScore      prometheus.Histogram
	axisScore         *prometheus.GaugeVec
	requestDuration   *prometheus.HistogramVec
}

// New регистрирует метрики в собственном реестре вместе с go/process коллекторами.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		dailyLogsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_logs_saved_total",
			Help:      "Daily logs written.",
		}),
		weeklyLogsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weekly_logs_saved_total",
			Help:      "Weekly logs written.",
		}),
		todosChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todo_changes_total",
			Help:      "Todo items created, deleted or closed by markdown sync.",
		}, []string{"change"}),
		learningItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "learning_items_created_total",
			Help:      "Learning items created from completed tasks.",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Spaced repetition reviews by rating.",
		}, []string{"rating"}),
		scoreComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_computations_total",
			Help:      "Weekly score computations.",
		}),
		overallScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of the weekly overall score.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		axisScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_axis_score",
			Help:      "Most recently computed score per axis.",
		}, []string{"axis"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		r.dailyLogsSaved,
		r.weeklyLogsSaved,
		r.todosChanged,
		r.learningItems,
		r.reviews,
		r.scoreComputations,
		r.overallScore,
		r.axisScore,
		r.requestDuration,
	)

	return r
}

// Handler отдает метрики в формате Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) DailyLogSaved() {
	if r == nil {
		return
	}
	r.dailyLogsSaved.Inc()
}

func (r *Recorder) WeeklyLogSaved() {
	if r == nil {
		return
	}
	r.weeklyLogsSaved.Inc()
}

// TodosSynced учитывает изменения todo после синхронизации дневной записи.
func (r *Recorder) TodosSynced(created, deleted, closed int) {
	if r == nil {
		return
	}
	r.todosChanged.WithLabelValues("created").Add(float64(created))
	r.todosChanged.WithLabelValues("deleted").Add(float64(deleted))
	r.todosChanged.WithLabelValues("closed").Add(float64(closed))
}

func (r *Recorder) LearningItemsCreated(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.learningItems.Add(float64(n))
}

func (r *Recorder) Reviewed(rating string) {
	if r == nil {
		return
	}
	r.reviews.WithLabelValues(rating).Inc()
}

// ScoresComputed записывает итог недели и оценки по осям.
func (r *Recorder) ScoresComputed(overall float64, axes map[string]float64) {
	if r == nil {
		return
	}
	r.scoreComputations.Inc()
	r.overallScore.Observe(overall)
	for axis, score := range axes {
		r.axisScore.WithLabelValues(axis).Set(score)
	}
}

// ObserveRequest записывает длительность HTTP-запроса. route - шаблон пути, а не URI.
func (r *Recorder) ObserveRequest(method, route string, status int, latency time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(latency.Seconds())
}
