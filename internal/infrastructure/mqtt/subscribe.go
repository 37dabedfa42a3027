package mqtt

import "fmt"

// Subscribe registers handler for topic, which may contain + and #
// wildcards. The subscription is restored automatically after a reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	var err error
	if !token.WaitTimeout(operationTimeout) {
		err = fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, operationTimeout)
	} else if tokenErr := token.Error(); tokenErr != nil {
		err = fmt.Errorf("%w: %w", ErrSubscribeFailed, tokenErr)
	}
	if err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return err
	}
	return nil
}
