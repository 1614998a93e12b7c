package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"microblog/internal/config"
	"microblog/internal/db"
	"microblog/internal/handlers"
	"microblog/internal/kv"
	"microblog/internal/logger"
	"microblog/internal/repository"
	"microblog/internal/resettoken"
	"microblog/internal/routes"
	"microblog/internal/services"
	"microblog/internal/utils"
)

const mailQueueSize = 100

// App — собранное приложение; Close освобождает ресурсы в обратном порядке.
type App struct {
	Router  *mux.Router
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	fail := func(err error) (*App, error) {
		a.Close()
		return nil, err
	}

	if err := db.Migrate(cfg); err != nil {
		return nil, err
	}

	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.closers = append(a.closers, conn.Close)
	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))

	store, err := newStore(ctx, cfg, a)
	if err != nil {
		return fail(err)
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	postRepo := repository.NewPostRepo(conn)

	// Сервисы
	hasher := utils.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := resettoken.New([]byte(cfg.ResetTokenSecret), cfg.ResetTokenTTL, userRepo, nil)
	if err != nil {
		return fail(err)
	}

	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	queue := services.NewQueueMailer(mailer, mailQueueSize, cfg.MailWorkers)
	a.closers = append(a.closers, queue.Close)

	authService := services.NewAuthService(userRepo, hasher, store, cfg.SessionSecret, cfg.AccessTokenTTL, nil)
	passwordService := services.NewPasswordService(userRepo, tokens, queue, hasher, store, cfg.SiteURL, cfg.ResetTokenSingleUse)
	postService := services.NewPostService(postRepo, userRepo)
	accountService := services.NewAccountService(userRepo, cfg.UploadDir)
	if err := accountService.EnsureDefaultPicture(); err != nil {
		logger.Log.Warn("Не удалось создать аватарку по умолчанию", zap.Error(err))
	}
	limiter := services.NewRateLimiter(store, nil)

	// Хендлеры и маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, limiter),
		Password: handlers.NewPasswordHandler(passwordService),
		Posts:    handlers.NewPostHandler(postService),
		Account:  handlers.NewAccountHandler(accountService),
		Health:   handlers.Healthz(conn),
	}, authService, cfg.UploadDir)

	a.Router = router
	return a, nil
}

// newStore: Redis, если задан REDIS_URL, иначе память процесса.
func newStore(ctx context.Context, cfg *config.Config, a *App) (kv.Store, error) {
	if cfg.RedisURL == "" {
		logger.Log.Warn("REDIS_URL не задан, используется in-memory хранилище")
		return kv.NewMemoryStore(nil), nil
	}
	client, err := kv.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	logger.Log.Info("Подключение к Redis установлено")
	return kv.NewRedisStore(client, ""), nil
}

func newMailer(ctx context.Context, cfg *config.Config) (services.Mailer, error) {
	switch cfg.MailDriver {
	case "smtp":
		logger.Log.Info("Почта: SMTP", zap.String("host", cfg.SMTPHost))
		return services.NewSMTPMailer(cfg), nil
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(
			ctx,
			awsConfig.WithRegion(cfg.AWSRegion),
			awsConfig.WithRetryer(func() aws.Retryer {
				return retry.AddWithMaxAttempts(
					retry.AddWithMaxBackoffDelay(retry.NewStandard(), 5*time.Second),
					3,
				)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		logger.Log.Info("Почта: Amazon SES", zap.String("region", cfg.AWSRegion))
		return services.NewSESMailer(awsCfg, cfg.MailFrom), nil
	default:
		logger.Log.Warn("Почта: письма только пишутся в лог (MAIL_DRIVER=log)")
		return services.LogMailer{ShowBody: cfg.Env == "dev"}, nil
	}
}
