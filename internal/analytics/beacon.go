package analytics

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Beacon delivers a tracking URL. Delivery is best effort and never
// reported back.
type Beacon interface {
	Send(rawURL string)
}

// Recorder keeps every URL it is handed. Hosts use it to inspect traffic.
type Recorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *Recorder) Send(rawURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, rawURL)
}

func (r *Recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// HTTPBeacon issues each request on its own goroutine, like an image load.
type HTTPBeacon struct {
	client *http.Client
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewHTTPBeacon(client *http.Client, log *zerolog.Logger) *HTTPBeacon {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "beacon").Logger()
	}
	return &HTTPBeacon{client: client, log: l}
}

func (b *HTTPBeacon) Send(rawURL string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, nil)
		if err != nil {
			b.log.Debug().Err(err).Msg("beacon request invalid")
			return
		}
		req.Header.Set("Accept", "image/gif,image/*")
		resp, err := b.client.Do(req)
		if err != nil {
			b.log.Debug().Err(err).Msg("beacon not delivered")
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
}

// Wait blocks until in-flight beacons finish.
func (b *HTTPBeacon) Wait() { b.wg.Wait() }
