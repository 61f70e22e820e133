package main

import (
	"context"
	"log"

	"github.com/locvowork/employee_activity_nlq/internal/bootstrap"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.InitializeServer(ctx); err != nil {
		log.Fatal(err)
	}

	logger.InfoLog(ctx, "Starting query API")
	if err := app.Run(); err != nil {
		logger.ErrorLog(ctx, "Server stopped: %v", err)
	}
}
