// Command lambda serves the invoice form gate as an AWS Lambda behind an
// API Gateway HTTP API. Configuration comes from FORMGATE_* variables.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/config"
	"github.com/ginjaninja78/invoice-form-gate/internal/gateway"
	"github.com/ginjaninja78/invoice-form-gate/internal/logging"
)

func main() {
	cfg := config.Default()
	if err := config.ApplyEnv(cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.NewProduction(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	app, err := gateway.New(cfg, logger)
	if err != nil {
		logger.Fatal("gateway.init", zap.Error(err))
	}
	lambda.Start(app.Handle)
}
