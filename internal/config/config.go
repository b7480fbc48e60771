// Package config loads the node configuration shared by cmd/metad and
// cmd/queryd: a TOML file, then environment variable overrides, matching
// the storage config group of spec §6.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// StorageType selects which backing store a node's Typed Tree data lives
// behind.
type StorageType string

const (
	StorageDFS  StorageType = "dfs"
	StorageDisk StorageType = "disk"
	StorageS3   StorageType = "s3"
)

// DFSConfig configures a distributed filesystem storage backend.
type DFSConfig struct {
	Address                        string `toml:"address"`
	Username                       string `toml:"username"`
	Password                       string `toml:"password"`
	RPCTLSStorageServerRootCACert  string `toml:"rpc_tls_storage_server_root_ca_cert"`
	RPCTLSStorageServiceDomainName string `toml:"rpc_tls_storage_service_domain_name"`
}

// DiskConfig configures a local-disk storage backend.
type DiskConfig struct {
	DataPath string `toml:"data_path"`
}

// S3Config configures an S3-compatible storage backend.
type S3Config struct {
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Bucket          string `toml:"bucket"`
}

// StorageConfig selects and configures exactly one storage backend. Only
// the fields under Type's matching group are consulted.
type StorageConfig struct {
	Type StorageType `toml:"type"`
	DFS  DFSConfig   `toml:"dfs"`
	Disk DiskConfig  `toml:"disk"`
	S3   S3Config    `toml:"s3"`
}

// Config is one node's full configuration.
type Config struct {
	Storage  StorageConfig `toml:"storage"`
	LogLevel string        `toml:"log_level"`
}

// defaults returns a Config with StorageDisk as the default storage type
// and info as the default log level.
func defaults() Config {
	return Config{
		Storage:  StorageConfig{Type: StorageDisk, Disk: DiskConfig{DataPath: "./data"}},
		LogLevel: "info",
	}
}

// Load reads path as TOML (if it exists) layered over defaults, then
// applies LATTICE_* environment variable overrides, which always win over
// the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides overlays LATTICE_* environment variables onto cfg. An
// unset (empty) variable leaves the existing value untouched.
func applyEnvOverrides(cfg *Config) {
	overrideString((*string)(&cfg.Storage.Type), "LATTICE_STORAGE_TYPE")
	overrideString(&cfg.LogLevel, "LATTICE_LOG_LEVEL")

	overrideString(&cfg.Storage.Disk.DataPath, "LATTICE_STORAGE_DATA_PATH")

	overrideString(&cfg.Storage.DFS.Address, "LATTICE_STORAGE_ADDRESS")
	overrideString(&cfg.Storage.DFS.Username, "LATTICE_STORAGE_USERNAME")
	overrideString(&cfg.Storage.DFS.Password, "LATTICE_STORAGE_PASSWORD")
	overrideString(&cfg.Storage.DFS.RPCTLSStorageServerRootCACert, "LATTICE_STORAGE_RPC_TLS_STORAGE_SERVER_ROOT_CA_CERT")
	overrideString(&cfg.Storage.DFS.RPCTLSStorageServiceDomainName, "LATTICE_STORAGE_RPC_TLS_STORAGE_SERVICE_DOMAIN_NAME")

	overrideString(&cfg.Storage.S3.Region, "LATTICE_STORAGE_REGION")
	overrideString(&cfg.Storage.S3.AccessKeyID, "LATTICE_STORAGE_ACCESS_KEY_ID")
	overrideString(&cfg.Storage.S3.SecretAccessKey, "LATTICE_STORAGE_SECRET_ACCESS_KEY")
	overrideString(&cfg.Storage.S3.Bucket, "LATTICE_STORAGE_BUCKET")
}

func overrideString(dst *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*dst = v
	}
}
