package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/cartonbox/config"
	"example.com/cartonbox/internal/models"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// Fulfillment event types published to downstream consumers
const (
	EventDeliveryCreated = "delivery.created"
	EventDeliveryDeleted = "delivery.deleted"
)

// Publisher publishes fulfillment events to the message queue
type Publisher interface {
	PublishDeliveryEvent(ctx context.Context, event string, delivery *models.Delivery) error
	Close() error
}

// serviceBusPublisher implements Publisher on Azure Service Bus
type serviceBusPublisher struct {
	client    *azservicebus.Client
	sender    *azservicebus.Sender
	queueName string
}

// NewServiceBusPublisher creates a new Azure Service Bus publisher
func NewServiceBusPublisher(cfg config.AzureConfig) (Publisher, error) {
	if cfg.QueueConnStr == "" {
		return nil, fmt.Errorf("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	return &serviceBusPublisher{
		client:    client,
		sender:    sender,
		queueName: cfg.QueueName,
	}, nil
}

// deliveryEvent is the wire format of a published fulfillment event
type deliveryEvent struct {
	Event    string           `json:"event"`
	Time     string           `json:"time"`
	Delivery *models.Delivery `json:"delivery"`
}

// PublishDeliveryEvent sends a delivery lifecycle event to the queue
func (p *serviceBusPublisher) PublishDeliveryEvent(ctx context.Context, event string, delivery *models.Delivery) error {
	data, err := json.Marshal(deliveryEvent{
		Event:    event,
		Time:     time.Now().UTC().Format(time.RFC3339),
		Delivery: delivery,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery event: %w", err)
	}

	msg := &azservicebus.Message{
		Body: data,
		ApplicationProperties: map[string]interface{}{
			"event": event,
		},
	}

	return p.sender.SendMessage(ctx, msg, nil)
}

// Close closes the Service Bus publisher
func (p *serviceBusPublisher) Close() error {
	if p.sender != nil {
		if err := p.sender.Close(context.Background()); err != nil {
			return err
		}
	}

	if p.client != nil {
		return p.client.Close(context.Background())
	}

	return nil
}
