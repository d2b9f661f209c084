package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, closeStorage, err := newGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			log.Error("could not close storage", "error", closeErr)
		}
	}()

	bot, err := service.NewBotService(logger)
	if err != nil {
		return fmt.Errorf("could not create bot: %w", err)
	}

	gameManager := usecase.NewGameManager(logger, gameRepo, bot)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameManager).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, gameManager).Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newGameRepository picks the session store named by the config.
func newGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	if conf.Storage.Driver == config.StorageMemory {
		return repository.NewMemoryGameRepository(), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.Game.SessionTTL), redisStorage.Close, nil
}
