// Command metad runs the meta/store node: a Typed Tree fronted by the
// Catalog RPC Surface.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/logging"
	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/store"
)

// Exit code constants, POSIX-compatible.
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitStoreError       = 2
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "metad",
		Short: "Run the meta/store node's Typed Tree and Catalog RPC Surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitInvalidArguments)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)

	if cfg.Storage.Type != config.StorageDisk {
		return fmt.Errorf("metad: storage type %q not yet wired to a Typed Tree backend (only %q is)", cfg.Storage.Type, config.StorageDisk)
	}

	dataPath := filepath.Join(cfg.Storage.Disk.DataPath, "catalog.db")
	tree, err := store.Open("meta", dataPath, store.Options{Sync: true})
	if err != nil {
		log.WithError(err).Error("failed to open typed tree")
		os.Exit(ExitStoreError)
	}
	defer tree.Close()

	svc := catalog.NewService(tree)
	_ = svc // no wire transport serves svc; catalog.LocalClient reaches a Service only from within the same process

	log.WithFields(map[string]interface{}{
		"data_path": dataPath,
	}).Info("metad ready")

	waitForSignal()
	log.Info("metad shutting down")
	return nil
}

func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
}
