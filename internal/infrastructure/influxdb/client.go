package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Client wraps the InfluxDB v2 client and its non-blocking write API.
// All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	mu        sync.RWMutex
	connected bool
	onError   func(err error)
}

// Connect creates the client and verifies the server answers a ping.
// It returns ErrDisabled when cfg.Enabled is false.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := uint(defaultBatchSize)
	if cfg.BatchSize > 0 {
		batchSize = uint(cfg.BatchSize)
	}
	flushInterval := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flushInterval = time.Duration(cfg.FlushInterval) * time.Second
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(batchSize).
			SetFlushInterval(uint(flushInterval.Milliseconds())))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil || !healthy {
		client.Close()
		if err == nil {
			err = errors.New("server not healthy")
		}
		return nil, fmt.Errorf("%w: ping: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
	}
	go c.forwardErrors(c.writeAPI.Errors())

	return c, nil
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()
		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes pending points and closes the client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if wasConnected {
		c.writeAPI.Flush()
		c.client.Close()
	}
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return errors.New("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether the client has been connected and not closed.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError sets the callback for asynchronous write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	c.onError = callback
	c.mu.Unlock()
}

// Flush blocks until buffered points are sent. No-op after Close.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}
