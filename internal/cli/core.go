package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"finboard/config"
	"finboard/internal/domain/repository"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/localdisk"
	"finboard/internal/infra/persistence/memory"
	"finboard/internal/usecase"
	"finboard/internal/usecase/impl"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// core bundles everything a one-shot command needs.
type core struct {
	Data    usecase.DataUsecase
	Sync    usecase.SyncUsecase
	Adapter *appdata.Adapter

	close func() error
}

// Close releases the backing store.
func (c *core) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// openCore loads the config and wires the reconciliation core over the
// configured backend. Only the disk backend is meaningful for one-shot
// commands; with the memory backend every run starts empty, so commands
// warn and proceed.
func openCore(opts *RootOptions, errWriter io.Writer) (*core, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errWriter, &slog.HandlerOptions{Level: logLevel}))

	var kv repository.KeyValue
	closeStore := func() error { return nil }
	if cfg.Storage.Backend == config.BackendMemory {
		fmt.Fprintln(errWriter, "warning: memory backend holds no durable state between runs; set storage.backend to \"disk\"")
		kv = memory.New()
	} else {
		store, err := localdisk.New(cfg.Storage.Path, logger)
		if err != nil {
			return nil, errors.Wrap(err, "open disk store")
		}
		kv = store
		closeStore = store.Close
	}

	adapter := appdata.New(kv, logger)
	data := impl.NewDataService(adapter, logger)
	sync := impl.NewSyncService(adapter, data, logger)

	return &core{
		Data:    data,
		Sync:    sync,
		Adapter: adapter,
		close:   closeStore,
	}, nil
}

// emit renders a command result as text or JSON per the global flag.
func emit(cmd *cobra.Command, opts *RootOptions, result any, text string) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
