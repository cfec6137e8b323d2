package messaging

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const (
	dialTimeout      = 5 * time.Second
	publishTimeout   = 200 * time.Millisecond
	reconnectBackoff = 5 * time.Second
	maxReconnects    = 10
)

// AMQPConfig holds AMQP client configuration
type AMQPConfig struct {
	URL        string
	QueueName  string
	RoutingKey string
	Durable    bool
}

// AMQPClient publishes debate events to an AMQP queue. The connection is
// monitored and re-established with backoff; publish failures never
// propagate panics into the analysis pipeline.
type AMQPClient struct {
	logger *logrus.Entry
	config AMQPConfig

	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.RWMutex
	stopChan  chan struct{}
}

// NewAMQPClient creates a new AMQP event publisher
func NewAMQPClient(logger *logrus.Logger, config AMQPConfig) *AMQPClient {
	if config.RoutingKey == "" {
		config.RoutingKey = config.QueueName
	}
	config.Durable = true

	return &AMQPClient{
		logger:   logger.WithField("component", "amqp"),
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Connect establishes the connection and declares the queue
func (c *AMQPClient) Connect() error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.connected {
		return nil
	}

	if c.config.URL == "" || c.config.QueueName == "" {
		return fmt.Errorf("AMQP URL or queue name not configured")
	}

	conn, err := dialWithTimeout(c.config.URL, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP server: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		c.config.QueueName,
		c.config.Durable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare AMQP queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	c.connected = true
	c.stopChan = make(chan struct{})

	c.logger.WithFields(logrus.Fields{
		"url":   c.config.URL,
		"queue": c.config.QueueName,
	}).Info("Connected to AMQP server")

	go c.monitorConnection()

	return nil
}

// Disconnect closes the AMQP connection
func (c *AMQPClient) Disconnect() {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if !c.connected {
		return
	}

	close(c.stopChan)
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}

	c.connected = false
	c.logger.Info("Disconnected from AMQP server")
}

// IsConnected reports the connection status
func (c *AMQPClient) IsConnected() bool {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.connected
}

// PublishEvent sends one debate event to the queue
func (c *AMQPClient) PublishEvent(event *Event) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("recover", r).Error("Recovered from panic in AMQP publish")
		}
	}()

	if !c.IsConnected() {
		return fmt.Errorf("not connected to AMQP server")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishChan := make(chan error, 1)
	go func() {
		c.connMutex.RLock()
		defer c.connMutex.RUnlock()

		if !c.connected {
			publishChan <- fmt.Errorf("connection lost before publish")
			return
		}

		publishChan <- c.channel.Publish(
			"", // default exchange
			c.config.RoutingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    event.Timestamp,
				Body:         body,
			},
		)
	}()

	select {
	case err := <-publishChan:
		if err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
	case <-time.After(publishTimeout):
		return fmt.Errorf("timed out publishing event after %v", publishTimeout)
	}

	c.logger.WithFields(logrus.Fields{
		"type":       event.Type,
		"session_id": event.SessionID,
	}).Debug("Published event")

	return nil
}

// monitorConnection watches for connection loss and reconnects with
// backoff until the retry budget runs out
func (c *AMQPClient) monitorConnection() {
	closeChan := make(chan *amqp.Error, 1)
	c.connMutex.RLock()
	if c.conn != nil {
		c.conn.NotifyClose(closeChan)
	}
	c.connMutex.RUnlock()

	select {
	case <-c.stopChan:
		return
	case amqpErr := <-closeChan:
		c.connMutex.Lock()
		c.connected = false
		c.connMutex.Unlock()

		if amqpErr != nil {
			c.logger.WithError(amqpErr).Warn("AMQP connection lost, reconnecting")
		}

		for attempt := 1; attempt <= maxReconnects; attempt++ {
			select {
			case <-c.stopChan:
				return
			case <-time.After(reconnectBackoff):
			}

			if err := c.Connect(); err == nil {
				return
			}
			c.logger.WithField("attempt", attempt).Warn("AMQP reconnect failed")
		}

		c.logger.Error("Gave up reconnecting to AMQP server")
	}
}

func dialWithTimeout(url string, timeout time.Duration) (*amqp.Connection, error) {
	type dialResult struct {
		conn *amqp.Connection
		err  error
	}

	resultChan := make(chan dialResult, 1)
	go func() {
		conn, err := amqp.Dial(url)
		resultChan <- dialResult{conn, err}
	}()

	select {
	case result := <-resultChan:
		return result.conn, result.err
	case <-time.After(timeout):
		go func() {
			// Close a late connection so it does not leak
			if result := <-resultChan; result.conn != nil {
				result.conn.Close()
			}
		}()
		return nil, fmt.Errorf("connection timed out after %v", timeout)
	}
}
