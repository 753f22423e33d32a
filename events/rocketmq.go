package events

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
)

// VoteTag tags vote messages so consumers can filter on it.
const VoteTag = "vote"

type syncSender interface {
	SendSync(ctx context.Context, msgs ...*primitive.Message) (*primitive.SendResult, error)
	Shutdown() error
}

// RocketMQPublisher sends vote events to a RocketMQ topic. Messages of one
// question share a sharding key so they stay ordered.
type RocketMQPublisher struct {
	producer syncSender
	topic    string
}

// NewRocketMQPublisher 创建并启动RocketMQ生产者
func NewRocketMQPublisher(nameServer, topic string) (*RocketMQPublisher, error) {
	p, err := rocketmq.NewProducer(
		producer.WithNameServer([]string{nameServer}),
		producer.WithGroupName("polls_producer"),
		producer.WithRetry(2),
		producer.WithSendMsgTimeout(10*time.Second),
		producer.WithVIPChannel(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create rocketmq producer: %w", err)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("start rocketmq producer at %s: %w", nameServer, err)
	}
	log.Printf("rocketmq producer started, name server %s, topic %s", nameServer, topic)
	return &RocketMQPublisher{producer: p, topic: topic}, nil
}

func (p *RocketMQPublisher) Publish(ctx context.Context, event VoteEvent) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}

	msg := primitive.NewMessage(p.topic, body)
	msg.WithTag(VoteTag)
	msg.WithKeys([]string{event.ID})
	msg.WithShardingKey(strconv.FormatUint(uint64(event.QuestionID), 10))

	res, err := p.producer.SendSync(ctx, msg)
	if err != nil {
		return fmt.Errorf("send vote event %s: %w", event.ID, err)
	}
	log.Printf("vote event %s sent, msg id %s", event.ID, res.MsgID)
	return nil
}

func (p *RocketMQPublisher) Close() error {
	return p.producer.Shutdown()
}
