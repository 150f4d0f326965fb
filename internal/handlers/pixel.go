package handlers

import (
	"net/http"
	"strings"

	"portfolio/internal/httputil"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"
	"portfolio/middleware"
)

// transparentGIF is a 1x1 transparent GIF89a.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type PixelOptions struct {
	Metrics    *metrics.Pixel
	TrustProxy bool
	// Salt keys the client hash. Rotate it to unlink old logs.
	Salt string
}

// PixelSink is the development stand-in for the analytics endpoint. It logs
// and counts each beacon and answers with a transparent GIF.
func PixelSink(opts PixelOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		event := strings.TrimSpace(q.Get("event"))
		if event == "" {
			if opts.Metrics != nil {
				opts.Metrics.Reject()
			}
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if opts.Metrics != nil {
			opts.Metrics.Observe(event, q.Get("lang"))
		}
		logger.BeaconEvent(event, q.Get("path"), q.Get("lang")).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("client", httputil.ClientHash(r, opts.TrustProxy, opts.Salt)).
			Str("label", q.Get("label")).
			Str("target", q.Get("target")).
			Str("ref", q.Get("ref")).
			Str("ts", q.Get("ts")).
			Msg("beacon received")

		w.Header().Set("Content-Type", "image/gif")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(transparentGIF)
	}
}
