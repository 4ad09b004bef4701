package convert

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/rdfstore/format"
)

var (
	mConversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfstore_conversions_total",
		Help: "Number of format conversions, by source, target and result.",
	}, []string{"from", "to", "result"})
	mConversionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "rdfstore_conversion_seconds",
		Help: "Time to convert a document.",
	}, []string{"to"})
	mConversionBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rdfstore_conversion_output_bytes",
		Help:    "Size of converted documents.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	})
)

func observe(from, to format.Format, start time.Time, n int, err error) {
	if !format.Supported(from) {
		from = format.Unknown
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		mConversionBytes.Observe(float64(n))
	}
	mConversions.WithLabelValues(string(from), string(to), result).Inc()
	mConversionSeconds.WithLabelValues(string(to)).Observe(time.Since(start).Seconds())
}
