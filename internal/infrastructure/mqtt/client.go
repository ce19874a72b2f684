package mqtt

import (
	"context"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/pillarmap-api/internal/infrastructure/config"
)

// Client is a publish-only paho client.
//
// It announces the API on the system status topic (with a Last Will for
// crashes) and publishes retained events. It never subscribes.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	opts   options
}

// Logger is the subset of logging.Logger the client needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Option configures a Client at Connect time.
type Option func(*options)

type options struct {
	onConnect func(*Client)
	logger    Logger
}

// WithOnConnect runs fn after every connect and reconnect, once the online
// status is out. Retained events published from fn survive broker restarts.
func WithOnConnect(fn func(*Client)) Option {
	return func(o *options) { o.onConnect = fn }
}

// WithLogger logs connection loss and reconnects.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// Connect dials the broker described by cfg and waits for the first
// connection. Callbacks passed as options are in place before dialling, so
// the first connect runs them exactly once.
func Connect(cfg config.MQTTConfig, opts ...Option) (*Client, error) {
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(&c.opts)
	}

	po := pahoOptions(cfg)
	po.SetOnConnectHandler(func(pahomqtt.Client) { c.handleConnect() })
	po.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if c.opts.logger != nil {
			c.opts.logger.Warn("MQTT connection lost", "error", err)
		}
	})

	c.client = pahomqtt.NewClient(po)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// Stops the background retry loop
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

func (c *Client) handleConnect() {
	c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
		statusMessage(c.cfg.Broker.ClientID, statusOnline, ""))

	if c.opts.logger != nil {
		c.opts.logger.Info("MQTT connected", "client_id", c.cfg.Broker.ClientID)
	}
	if c.opts.onConnect != nil {
		c.opts.onConnect(c)
	}
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
			statusMessage(c.cfg.Broker.ClientID, statusOffline, "graceful_shutdown")).
			WaitTimeout(publishTimeout)
	}
	c.client.Disconnect(disconnectQuiesceMS)
	return nil
}

// HealthCheck reports ErrNotConnected unless the connection is open right
// now. A client waiting to reconnect is unhealthy.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the connection is currently open.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && c.client.IsConnectionOpen()
}
