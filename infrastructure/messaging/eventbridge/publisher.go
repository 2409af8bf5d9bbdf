// Package eventbridge publishes policy change events to an EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"policyapi/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// source identifies this service on the bus.
const source = "policyapi"

// Publisher implements ports.EventPublisher using AWS EventBridge. Events are
// emitted after the table write has already committed, so publish failures
// are logged and never surfaced to the caller.
type Publisher struct {
	client  *awseventbridge.Client
	busName string
	timeout time.Duration
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher.
func NewPublisher(client *awseventbridge.Client, busName string, timeout time.Duration, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:  client,
		busName: busName,
		timeout: timeout,
		logger:  logger,
	}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// PublishPolicyEvent sends one change event. detailType is the event name,
// e.g. "policy.created".
func (p *Publisher) PublishPolicyEvent(ctx context.Context, detailType, policyID string, detail interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]interface{}{
		"policy_id": policyID,
		"detail":    detail,
	})
	if err != nil {
		return fmt.Errorf("marshal event detail: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(source),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(payload)),
				Time:         aws.Time(time.Now().UTC()),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put event %s: %w", detailType, err)
	}
	if out.FailedEntryCount > 0 {
		return fmt.Errorf("put event %s: %d entries failed", detailType, out.FailedEntryCount)
	}

	p.logger.Debug("Published policy event",
		zap.String("detailType", detailType),
		zap.String("policyID", policyID),
	)
	return nil
}

// NoopPublisher drops every event. Used when no event bus is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards events.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

var _ ports.EventPublisher = (*NoopPublisher)(nil)

// PublishPolicyEvent discards the event.
func (*NoopPublisher) PublishPolicyEvent(ctx context.Context, detailType, policyID string, detail interface{}) error {
	return nil
}
