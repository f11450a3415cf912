// Package connectivity tracks whether the tanda-api is reachable. The flag
// drives advisory UI only (sync-status banners); authentication and lock
// decisions never consult it, so losing the network can never force a
// logout or a lock.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tandahq/tanda/pkg/tandasdk"
)

// HealthClient is the probe target. *tandasdk.SDKClient satisfies it.
type HealthClient interface {
	GetLiveness(ctx context.Context) (*tandasdk.HealthResponse, error)
}

// Observer periodically probes the provider's liveness endpoint and exposes
// the result as a boolean.
type Observer struct {
	client   HealthClient
	logger   *slog.Logger
	interval time.Duration

	// limiter bounds user-forced probes so mashing a "retry" control
	// doesn't hammer the endpoint.
	limiter *rate.Limiter

	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewObserver creates an observer probing every interval. If interval is 0
// or negative, defaults to 30 seconds.
func NewObserver(client HealthClient, logger *slog.Logger, interval time.Duration) *Observer {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Observer{
		client:   client,
		logger:   logger,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(5*time.Second), 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background probe loop. The first probe runs immediately
// so IsOnline reflects real connectivity from the start. Call Stop to shut
// the loop down.
func (o *Observer) Start() {
	go o.run()
	o.logger.Info("connectivity observer started", "interval", o.interval)
}

// Stop shuts down the probe loop. Blocks until the worker has finished.
func (o *Observer) Stop() {
	close(o.stopCh)
	<-o.doneCh
	o.logger.Info("connectivity observer stopped")
}

// IsOnline reports the result of the most recent probe.
func (o *Observer) IsOnline() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}

// Subscribe registers fn to run whenever the online flag flips.
func (o *Observer) Subscribe(fn func(online bool)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, fn)
}

// Refresh forces a probe outside the regular schedule, subject to the rate
// limiter. Returns the post-probe (or current, if limited) flag.
func (o *Observer) Refresh(ctx context.Context) bool {
	if o.limiter.Allow() {
		o.probe(ctx)
	}
	return o.IsOnline()
}

func (o *Observer) run() {
	defer close(o.doneCh)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.probe(context.Background())

	for {
		select {
		case <-ticker.C:
			o.probe(context.Background())
		case <-o.stopCh:
			return
		}
	}
}

func (o *Observer) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := o.client.GetLiveness(ctx)
	online := err == nil

	o.mu.Lock()
	changed := online != o.online
	o.online = online
	subs := make([]func(bool), len(o.subscribers))
	copy(subs, o.subscribers)
	o.mu.Unlock()

	if !changed {
		return
	}

	if online {
		o.logger.Info("provider reachable, sync available")
	} else {
		o.logger.Warn("provider unreachable, sync degraded", "error", err)
	}
	for _, fn := range subs {
		fn(online)
	}
}
