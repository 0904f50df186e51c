// Command function serves the conversion API as an AWS Lambda behind API
// Gateway. Requests are translated into net/http so the same router handles
// both deployments.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/akila/pdf-conversion-api/app"
	"github.com/akila/pdf-conversion-api/config"
)

func main() {
	cfg, logger, err := app.Bootstrap(config.FunctionDefaults(), os.Getenv("CONFIG_PATH"), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}

	logger.Info().Str("environment", cfg.Environment).Msg("function handler ready")
	lambda.Start(httpadapter.New(a.Handler).ProxyWithContext)
}
