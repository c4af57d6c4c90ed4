package main

import (
	"context"
	"log/slog"
	"os"

	"finboard/config"
	"finboard/internal/domain/repository"
	"finboard/internal/domain/service"
	"finboard/internal/infra/auth"
	logs "finboard/internal/infra/log"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/localdisk"
	"finboard/internal/infra/persistence/memory"
	"finboard/internal/usecase"
	"finboard/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startCoreParams struct {
	fx.In
	fx.Lifecycle

	Logger *slog.Logger
	Data   usecase.DataUsecase
	Sync   usecase.SyncUsecase
	Auth   usecase.AuthUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		fx.Invoke(
			startCore,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		newKeyValueStore,
		appdata.New,
	)
}

// newKeyValueStore selects the durable backend from config. The disk
// backend is file-per-key with a filesystem watcher, so separate
// processes sharing the directory observe each other's mutations.
func newKeyValueStore(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (repository.KeyValue, error) {
	if cfg.Storage.Backend == config.BackendMemory {
		return memory.New(), nil
	}

	store, err := localdisk.New(cfg.Storage.Path, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open disk store")
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newCredentialChecker,
		),
	)
}

// newCredentialChecker builds the demo checker against the reactive
// store's account directory.
func newCredentialChecker(cfg *config.Config, data usecase.DataUsecase) service.CredentialChecker {
	return auth.NewDemoChecker(cfg, data)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDataService,
			impl.NewSyncService,
			impl.NewAuthService,
		),
	)
}

// startCore brings the reconciliation core up: seed the durable store on
// first run, merge and pull, hydrate the session guard, then keep the
// guard watching until shutdown.
func startCore(ctx context.Context, params startCoreParams) {
	seeded, err := params.Sync.InitializeIfEmpty()
	if err != nil {
		slog.Error("Failed to initialize durable store", slog.Any("error", err))
		os.Exit(1)
	}
	if !seeded {
		if err := params.Sync.MergeSeedIntoDurable(); err != nil {
			slog.Error("Failed to merge seed dataset", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := params.Data.LoadFromDurable(); err != nil {
		slog.Error("Failed to load working copy", slog.Any("error", err))
		os.Exit(1)
	}

	snap := params.Auth.Hydrate()
	params.Logger.Info("core started",
		slog.Bool("seeded", seeded),
		slog.String("auth_state", string(snap.State)))

	watchCtx, cancel := context.WithCancel(ctx)
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go params.Auth.Watch(watchCtx)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}
