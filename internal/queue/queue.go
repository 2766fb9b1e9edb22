package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// Declare 声明匹配任务队列，api 和 worker 都需要调用
func Declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}

type Publisher struct {
	cfg *config.Config
	ch  *amqp.Channel
}

func NewPublisher(cfg *config.Config, ch *amqp.Channel) *Publisher {
	return &Publisher{
		cfg: cfg,
		ch:  ch,
	}
}

func (p *Publisher) Publish(job *domain.MatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.cfg.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    job.CreatedAt,
			Body:         body,
		},
	)
}
