package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

// Handler processes one message body. A nil return commits the offset; an
// error leaves it uncommitted for redelivery.
type Handler func(ctx context.Context, body []byte) error

type KafkaConsumer struct {
	consumer *kafka.Consumer
	topic    string
	handler  Handler
}

func NewKafkaConsumer(bootstrapServers, group, topic string, handler Handler) (*KafkaConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  bootstrapServers,
		"group.id":           group,
		"enable.auto.commit": false,
		"auto.offset.reset":  "earliest",
	})
	if err != nil {
		return nil, err
	}

	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		c.Close()
		return nil, err
	}

	return &KafkaConsumer{
		consumer: c,
		topic:    topic,
		handler:  handler,
	}, nil
}

func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer c.consumer.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.IsTimeout() {
				continue
			}
			logrus.Warnf("consumer read failed: %v", err)
			continue
		}

		if err := c.handler(ctx, msg.Value); err != nil {
			logrus.WithFields(logrus.Fields{
				"PRTN":   msg.TopicPartition.Partition,
				"OFFSET": msg.TopicPartition.Offset,
			}).Warnf("handler failed, leaving offset uncommitted: %v", err)
			continue
		}

		if _, err := c.consumer.CommitMessage(msg); err != nil {
			logrus.Warnf("offset commit failed: %v", err)
		}
	}
}
