package app

import (
	"context"
	"errors"

	"github.com/avolkov/polyalerts/internal/config"
	"github.com/avolkov/polyalerts/internal/delivery/telegram"
	"github.com/avolkov/polyalerts/internal/infra/db"
	"github.com/avolkov/polyalerts/internal/infra/log"
	"github.com/avolkov/polyalerts/internal/infra/polymarket"
	"github.com/avolkov/polyalerts/internal/infra/sched"
	"github.com/avolkov/polyalerts/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	bot       *telegram.Bot
	runner    *sched.Runner
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	userRepo := db.NewUserRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)

	gammaClient := polymarket.NewGammaClient(cfg.GammaBaseURL, cfg.HTTPTimeout, logger)
	priceClient := polymarket.NewCLOBClient(cfg.CLOBBaseURL, cfg.HTTPTimeout, logger)
	resolver := usecase.NewResolver(gammaClient, cfg.EventCacheTTL)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	notifier := telegram.NewNotifier(api, logger)

	userUC := usecase.NewUserUsecase(userRepo)
	alertUC := usecase.NewAlertUsecase(userRepo, alertRepo)
	dialog := usecase.NewDialogManager(userRepo, alertRepo, resolver, cfg.DialogTTL, logger)
	poller := usecase.NewPoller(userRepo, alertRepo, resolver, priceClient, notifier, logger)

	handlers := telegram.NewHandlers(userUC, alertUC, dialog, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)

	runner := sched.New(ctx, logger)
	if _, err := runner.AddEvery(cfg.PollInterval, poller.RunCycle); err != nil {
		return nil, err
	}

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{bot: bot, runner: runner, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("polyalerts starting")
	a.runner.Start()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.bot.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		a.runner.Stop()
		return groupCtx.Err()
	})

	a.logger.Info("polyalerts started")
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("polyalerts shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
