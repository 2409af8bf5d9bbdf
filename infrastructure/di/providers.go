// Package di assembles the application object graph with google/wire.
package di

import (
	"context"
	"fmt"
	"net/http"

	"policyapi/application/ports"
	"policyapi/application/services"
	"policyapi/infrastructure/cache"
	"policyapi/infrastructure/config"
	"policyapi/infrastructure/messaging/eventbridge"
	"policyapi/infrastructure/persistence/dynamodb"
	"policyapi/interfaces/http/rest"
	"policyapi/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
)

// Container holds the wired application graph.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics ports.Metrics
	Service *services.PolicyService
	Router  http.Handler
}

// ProvideConfig loads and validates configuration from the environment.
func ProvideConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// ProvideLogger builds the zap logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the AWS SDK configuration, instrumenting every
// client for X-Ray when tracing is enabled.
func ProvideAWSConfig(cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates the DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvidePolicyRepository creates the DynamoDB-backed repository.
func ProvidePolicyRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PolicyRepository {
	return dynamodb.NewPolicyRepository(client, cfg.TableName, cfg.StateIndexName, cfg.StatusIndexName, cfg.StoreTimeout, logger)
}

// ProvideCache creates the in-memory response cache.
func ProvideCache() ports.Cache {
	return cache.NewMemory()
}

// ProvideEventPublisher creates the EventBridge publisher, or a noop when no
// event bus is configured.
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher()
	}
	client := awseventbridge.NewFromConfig(awsCfg)
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.StoreTimeout, logger)
}

// ProvideMetrics creates the CloudWatch metrics sink, or a noop when metrics
// are disabled.
func ProvideMetrics(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewNoopMetrics()
	}
	client := cloudwatch.NewFromConfig(awsCfg)
	return observability.NewCloudWatchMetrics(client, cfg.Environment, logger)
}

// ProvidePolicyService wires the application service.
func ProvidePolicyService(
	repo ports.PolicyRepository,
	c ports.Cache,
	events ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
	cfg *config.Config,
) *services.PolicyService {
	return services.NewPolicyService(repo, c, events, metrics, logger, cfg.DefaultCacheTTL)
}

// ProvideRouter wires the HTTP router.
func ProvideRouter(cfg *config.Config, service *services.PolicyService, metrics ports.Metrics, logger *zap.Logger) http.Handler {
	return rest.NewRouter(cfg, service, metrics, logger)
}

// NewContainer bundles the wired graph.
func NewContainer(cfg *config.Config, logger *zap.Logger, metrics ports.Metrics, service *services.PolicyService, router http.Handler) *Container {
	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Service: service,
		Router:  router,
	}
}
