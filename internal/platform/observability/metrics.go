package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poster_posts_total",
		Help: "The total number of publish attempts by track and status",
	}, []string{"track", "status"})

	SkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poster_skips_total",
		Help: "The total number of scheduling decisions skipped by reason",
	}, []string{"reason"})

	ChunksSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poster_chunks_sent_total",
		Help: "The total number of text chunks sent after cover photos",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poster_run_duration_seconds",
		Help:    "Duration of a full posting run",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	DocFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poster_doc_fetch_duration_seconds",
		Help:    "Duration of document export fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"track"})

	ImagesAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poster_images_available",
		Help: "Number of images remaining in the pool past the current cursor",
	})

	ContentUnits = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "poster_content_units",
		Help: "Number of post units segmented from the source document",
	}, []string{"track"})
)
