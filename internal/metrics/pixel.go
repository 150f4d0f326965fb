package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"portfolio/internal/locale"
)

// KnownEvents bounds the event label. Anything else is counted as "custom".
var KnownEvents = map[string]bool{
	"pageview":            true,
	"outbound_click":      true,
	"client_error":        true,
	"unhandled_rejection": true,
	"resume_download":     true,
	"project_preview":     true,
	"project_repo":        true,
	"project_case_study":  true,
}

// Pixel counts beacons received by the development pixel sink.
type Pixel struct {
	events   *prometheus.CounterVec
	rejected prometheus.Counter
}

func NewPixel(reg prometheus.Registerer) *Pixel {
	p := &Pixel{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_pixel_events_total",
			Help: "Analytics beacons received, by event and language",
		}, []string{"event", "lang"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_pixel_rejected_total",
			Help: "Pixel requests without a usable event parameter",
		}),
	}
	reg.MustRegister(p.events, p.rejected)
	return p
}

// Observe counts one beacon.
func (p *Pixel) Observe(event, lang string) {
	if !KnownEvents[event] {
		event = "custom"
	}
	l, ok := locale.Normalize(lang)
	if !ok {
		l = "unknown"
	}
	p.events.WithLabelValues(event, string(l)).Inc()
}

func (p *Pixel) Reject() { p.rejected.Inc() }
