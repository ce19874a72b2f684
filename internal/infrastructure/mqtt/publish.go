package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// maxPayloadSize caps a single message at 1 MB.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for the broker acknowledgement
// (for QoS above 0).
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	case len(payload) > maxPayloadSize:
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrPublishFailed, len(payload), maxPayloadSize)
	case !c.IsConnected():
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// DirectoryEvent reports the outcome of loading the worker directory.
type DirectoryEvent struct {
	Source    string `json:"source"`
	Buildings int    `json:"buildings"`
	Empty     bool   `json:"empty"`
	Timestamp string `json:"timestamp"`
}

// NewDirectoryEvent builds a DirectoryEvent stamped with the current time.
func NewDirectoryEvent(source string, buildings int) DirectoryEvent {
	return DirectoryEvent{
		Source:    source,
		Buildings: buildings,
		Empty:     buildings == 0,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// PublishDirectoryLoaded publishes ev retained on the worker directory
// topic, so dashboards can spot an API serving an empty directory.
func (c *Client) PublishDirectoryLoaded(ev DirectoryEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding directory event: %w", err)
	}
	return c.Publish(Topics{}.WorkerDirectory(), payload, byte(c.cfg.QoS), true)
}
