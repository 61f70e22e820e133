package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/locvowork/employee_activity_nlq/internal/config"
	"github.com/locvowork/employee_activity_nlq/internal/database"
	"github.com/locvowork/employee_activity_nlq/internal/handler"
	"github.com/locvowork/employee_activity_nlq/internal/llm"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
	"github.com/locvowork/employee_activity_nlq/internal/nlq"
	"github.com/locvowork/employee_activity_nlq/internal/repository"
	"github.com/locvowork/employee_activity_nlq/internal/service"
)

type App struct {
	Echo      *echo.Echo
	DB        *sql.DB
	Queries   service.QueryService
	Benchmark service.BenchmarkService
	Employees service.EmployeeService
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// Initialize loads configuration and wires the database, the query pipeline and the services.
// It does not register HTTP routes; InitializeServer does.
func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	db, err := database.Open(ctx, DatabaseConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	logger.InfoLog(ctx, "Database connection established (driver=%s)", cfg.DB_DRIVER)

	strategy, err := NewStrategy()
	if err != nil {
		db.Close()
		return err
	}
	logger.InfoLog(ctx, "Query pipeline uses the %s strategy", strategy.Name())

	// Initialize dependencies
	pipeline := nlq.NewPipeline(strategy, nlq.NewSQLExecutor(db, cfg.QUERY_TIMEOUT))
	clock := clockwork.NewRealClock()
	a.Queries = service.NewQueryService(pipeline, clock)
	a.Benchmark = service.NewBenchmarkService(a.Queries, clock, nil)
	a.Employees = service.NewEmployeeService(repository.NewEmployeeRepository(db))
	return nil
}

// InitializeServer runs Initialize and registers middlewares and routes.
func (a *App) InitializeServer(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(
		handler.NewQueryHandler(a.Queries),
		handler.NewBenchmarkHandler(a.Benchmark),
		handler.NewEmployeeHandler(a.Employees),
		handler.NewHealthHandler(a.DB),
	)
	return nil
}

// DatabaseConfig maps the environment onto database.Config.
func DatabaseConfig() database.Config {
	cfg := config.DefaultEnvConfig
	return database.Config{
		Driver:          cfg.DB_DRIVER,
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		SQLitePath:      cfg.SQLITE_PATH,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}
}

// NewStrategy builds the configured synthesis backend.
func NewStrategy() (nlq.Strategy, error) {
	cfg := config.DefaultEnvConfig

	rules, err := nlq.DefaultRules()
	if cfg.NLQ_RULES_FILE != "" {
		rules, err = nlq.LoadRules(cfg.NLQ_RULES_FILE)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	schema := nlq.DefaultSchema()

	switch cfg.NLQ_STRATEGY {
	case nlq.StrategyTemplate, "":
		return nlq.NewTemplateStrategy(rules, schema), nil
	case nlq.StrategyModel:
		client, err := llm.NewClient(llm.Config{
			Provider: cfg.LLM_PROVIDER,
			APIKey:   cfg.LLM_API_KEY,
			BaseURL:  cfg.LLM_BASE_URL,
			Model:    cfg.LLM_MODEL,
			Timeout:  cfg.LLM_TIMEOUT,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create completion client: %w", err)
		}
		return nlq.NewModelStrategy(rules, schema, client, nlq.ModelOptions{
			Model:       cfg.LLM_MODEL,
			Temperature: cfg.LLM_TEMPERATURE,
			MaxTokens:   cfg.LLM_MAX_TOKENS,
			Timeout:     cfg.LLM_TIMEOUT,
		}), nil
	default:
		return nil, fmt.Errorf("unknown NLQ_STRATEGY %q", cfg.NLQ_STRATEGY)
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(queryHandler *handler.QueryHandler, benchHandler *handler.BenchmarkHandler, employeeHandler *handler.EmployeeHandler, healthHandler *handler.HealthHandler) {
	a.Echo.GET("/healthz", healthHandler.HealthzHandler)
	a.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := a.Echo.Group("/api/v1")
	api.POST("/query", queryHandler.AskHandler)
	api.POST("/benchmark", benchHandler.RunHandler)
	api.GET("/benchmark/export", benchHandler.ExportHandler)

	// Read-only views of the dataset the questions run against
	api.GET("/employees", employeeHandler.ListHandler)
	api.GET("/employees/export", employeeHandler.ExportHandler)
	api.GET("/employees/:id", employeeHandler.GetHandler)
	api.GET("/activities", employeeHandler.ListActivitiesHandler)
}

func (a *App) Run() error {
	defer a.DB.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
