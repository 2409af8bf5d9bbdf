//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvidePolicyRepository,
	ProvideCache,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvidePolicyService,
	ProvideRouter,
	NewContainer,
)

// InitializeContainer creates a fully wired container
func InitializeContainer() (*Container, error) {
	wire.Build(ProvideConfig, SuperSet)
	return nil, nil // Wire will replace this
}
