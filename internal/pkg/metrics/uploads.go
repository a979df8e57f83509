package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(uploadsReceivedTotal, uploadBytesTotal) }

var uploadsReceivedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "clip_uploads_received_total",
		Help: "Total number of raw clips accepted by the upload endpoint.",
	},
)

var uploadBytesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "clip_upload_bytes_total",
		Help: "Total bytes of raw clip data accepted by the upload endpoint.",
	},
)

// IncUpload records an accepted clip upload of the given size.
func IncUpload(sizeBytes int64) {
	uploadsReceivedTotal.Inc()
	if sizeBytes > 0 {
		uploadBytesTotal.Add(float64(sizeBytes))
	}
}
