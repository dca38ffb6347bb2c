package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-ledger/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-ledger/internal/core/authz"
	"github.com/ogurasousui/hr-ledger/internal/core/employee"
	"github.com/ogurasousui/hr-ledger/internal/core/salary"
	"github.com/ogurasousui/hr-ledger/internal/platform/config"
	pg "github.com/ogurasousui/hr-ledger/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-ledger/internal/platform/logging"
	"github.com/ogurasousui/hr-ledger/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	decider := authz.NewEngine()

	salaryRepo := postgres.NewSalaryRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)

	salarySvc := salary.NewService(salaryRepo, employeeRepo, nil, txManager, logger)
	ledger := salary.NewFacade(salarySvc, decider, logger)
	employeeSvc := employee.NewService(employeeRepo, salaryRepo, nil, txManager)

	auth := handler.NewAuthMiddleware(cfg.Auth.JWTSecret, logger)
	salaryHandler := handler.NewSalaryHandler(ledger, logger)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc, decider, logger)
	app := handler.NewApp(auth, salaryHandler, employeeHandler, logger)

	logger.Info("HTTP server listening", zap.String("addr", cfg.Server.ListenAddr))

	if err := server.New(cfg.Server.ListenAddr, app).Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
