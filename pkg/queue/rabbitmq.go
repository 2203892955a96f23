package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"premier-open-group/pkg/config"
	"premier-open-group/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MemberQueueName   = "member_notification_queue"
	MemberExchange    = "member_events"
	StatusChangedType = "member_status_changed"

	ChangeStatus = "status"
	ChangeRole   = "role"
)

// MemberStatusTask is published when an administrator changes a member's
// approval status or role.
type MemberStatusTask struct {
	Type      string    `json:"type"`
	Change    string    `json:"change"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Role      string    `json:"role,omitempty"`
	ChangedBy string    `json:"changed_by"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func URL(cfg *config.Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		MemberExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		MemberQueueName, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		amqp.Table{
			"x-max-priority": 10,
		},
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		MemberQueueName,   // queue name
		StatusChangedType, // routing key
		MemberExchange,    // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishMemberStatusChanged publishes a status change task with its priority
// clamped to the queue's 0-10 range.
func (c *Client) PublishMemberStatusChanged(ctx context.Context, task MemberStatusTask) error {
	body, err := encodeTask(task)
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(ctx,
		MemberExchange,    // exchange
		StatusChangedType, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     clampPriority(task.Priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish to exchange=%s, routing_key=%s: %v", MemberExchange, StatusChangedType, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s for user %s", StatusChangedType, task.UserID)
	return nil
}

// ConsumeMemberStatusTasks delivers tasks to handler until the channel closes.
// Undecodable messages are dropped, handler failures are requeued.
func (c *Client) ConsumeMemberStatusTasks(handler func(MemberStatusTask) error) error {
	msgs, err := c.channel.Consume(
		MemberQueueName, // queue
		"",              // consumer
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", MemberQueueName)

	go func() {
		for msg := range msgs {
			switch Dispatch(msg.Body, handler, c.logger) {
			case Ack:
				msg.Ack(false)
			case Requeue:
				msg.Nack(false, true)
			default:
				msg.Nack(false, false)
			}
		}
	}()

	return nil
}

type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

// Dispatch decodes one delivery body and runs handler on it.
func Dispatch(body []byte, handler func(MemberStatusTask) error, log *logger.Logger) Outcome {
	task, err := decodeTask(body)
	if err != nil {
		log.Error("[RABBITMQ] Failed to decode task: %v, body=%s", err, string(body))
		return Drop
	}
	if err := handler(task); err != nil {
		log.Error("[RABBITMQ] Handler failed for user %s: %v", task.UserID, err)
		return Requeue
	}
	return Ack
}

func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(MemberQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}

func encodeTask(task MemberStatusTask) ([]byte, error) {
	if task.Type == "" {
		task.Type = StatusChangedType
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return body, nil
}

func decodeTask(body []byte) (MemberStatusTask, error) {
	var task MemberStatusTask
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.Type != StatusChangedType {
		return task, fmt.Errorf("unexpected task type %q", task.Type)
	}
	if task.UserID == "" {
		return task, fmt.Errorf("task has no user_id")
	}
	return task, nil
}

func clampPriority(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return uint8(p)
}
