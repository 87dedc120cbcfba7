// Package rabbitmq содержит публикацию событий об изменении подписок
// в RabbitMQ для внешних потребителей (нотификации, аналитика).
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange и ключи маршрутизации событий подписок.
const (
	ExchangeSubscriptions = "subscriptions"
	RoutingKeyUpdated     = "updated"
)

// Channel описывает минимальный интерфейс amqp-канала для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// SetupExchange объявляет exchange для событий подписок.
func SetupExchange(ch Channel) error {
	const op = "rabbitmq.SetupExchange"
	if err := ch.ExchangeDeclare(ExchangeSubscriptions, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PublishMessage публикует сообщение в RabbitMQ в формате JSON.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
