//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/aq-predictor/internal/bootstrap"
	"github.com/yanqian/aq-predictor/internal/domain/predictor"
	"github.com/yanqian/aq-predictor/internal/infra/artifact"
	"github.com/yanqian/aq-predictor/internal/infra/config"
	httpiface "github.com/yanqian/aq-predictor/internal/interface/http"
	"github.com/yanqian/aq-predictor/pkg/logger"
	"github.com/yanqian/aq-predictor/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.New,
		providePredictorConfig,
		provideArtifactSource,
		artifact.NewLoader,
		provideModel,
		provideScaler,
		provideLabelRegistry,
		provideDriftStore,
		predictor.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
