// Package dynamodb implements the policy repository against DynamoDB.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"policyapi/application/ports"
	"policyapi/domain/policy"
	apperrors "policyapi/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// PolicyRepository implements ports.PolicyRepository using a DynamoDB table
// keyed by policy_id, with optional secondary indexes on state and
// policy_status.
type PolicyRepository struct {
	client      *awsdynamodb.Client
	tableName   string
	stateIndex  string
	statusIndex string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewPolicyRepository creates a new PolicyRepository. Every call to the table
// runs under the given timeout; there are no internal retries.
func NewPolicyRepository(
	client *awsdynamodb.Client,
	tableName, stateIndex, statusIndex string,
	timeout time.Duration,
	logger *zap.Logger,
) ports.PolicyRepository {
	return &PolicyRepository{
		client:      client,
		tableName:   tableName,
		stateIndex:  stateIndex,
		statusIndex: statusIndex,
		timeout:     timeout,
		logger:      logger,
	}
}

// GetByID fetches a single record by its partition key.
func (r *PolicyRepository) GetByID(ctx context.Context, policyID string) (*policy.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"policy_id": &types.AttributeValueMemberS{Value: policyID},
		},
	})
	if err != nil {
		r.logger.Error("Failed to get policy",
			zap.String("policyID", policyID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get policy %s: %w", policyID, err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("Policy")
	}

	var record policy.Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshal policy %s: %w", policyID, err)
	}
	return &record, nil
}

// Put writes a full record, replacing any existing item with the same key.
func (r *PolicyRepository) Put(ctx context.Context, record policy.Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal policy %s: %w", record.PolicyID, err)
	}

	if _, err := r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to put policy",
			zap.String("policyID", record.PolicyID),
			zap.Error(err),
		)
		return fmt.Errorf("put policy %s: %w", record.PolicyID, err)
	}
	return nil
}

// Delete removes a record by key. Deleting an absent key is not an error at
// this layer; existence checks happen above.
func (r *PolicyRepository) Delete(ctx context.Context, policyID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"policy_id": &types.AttributeValueMemberS{Value: policyID},
		},
	}); err != nil {
		r.logger.Error("Failed to delete policy",
			zap.String("policyID", policyID),
			zap.Error(err),
		)
		return fmt.Errorf("delete policy %s: %w", policyID, err)
	}
	return nil
}

// ScanAll reads the entire table, following LastEvaluatedKey until the scan
// is complete.
func (r *PolicyRepository) ScanAll(ctx context.Context) ([]policy.Record, error) {
	var records []policy.Record
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.scanPage(ctx, startKey)
		if err != nil {
			return nil, err
		}

		var page []policy.Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		records = append(records, page...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// scanPage runs one Scan call under its own timeout so a long multi-page scan
// still bounds each network call.
func (r *PolicyRepository) scanPage(ctx context.Context, startKey map[string]types.AttributeValue) (*awsdynamodb.ScanOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.Scan(ctx, &awsdynamodb.ScanInput{
		TableName:         aws.String(r.tableName),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		r.logger.Error("Failed to scan policy table", zap.Error(err))
		return nil, fmt.Errorf("scan policies: %w", err)
	}
	return out, nil
}

// QueryByState queries the state secondary index.
func (r *PolicyRepository) QueryByState(ctx context.Context, state string) ([]policy.Record, error) {
	return r.queryIndex(ctx, r.stateIndex, "state", state)
}

// QueryByStatus queries the policy_status secondary index.
func (r *PolicyRepository) QueryByStatus(ctx context.Context, status string) ([]policy.Record, error) {
	return r.queryIndex(ctx, r.statusIndex, "policy_status", status)
}

func (r *PolicyRepository) queryIndex(ctx context.Context, indexName, keyName, keyValue string) ([]policy.Record, error) {
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition for %s: %w", indexName, err)
	}

	var records []policy.Record
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.queryPage(ctx, indexName, expr, startKey)
		if err != nil {
			return nil, err
		}

		var page []policy.Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal query page: %w", err)
		}
		records = append(records, page...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *PolicyRepository) queryPage(
	ctx context.Context,
	indexName string,
	expr expression.Expression,
	startKey map[string]types.AttributeValue,
) (*awsdynamodb.QueryOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.Query(ctx, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", indexName, err)
	}
	return out, nil
}
