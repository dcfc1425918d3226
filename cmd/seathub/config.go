// Config loading for the seathub CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"seathub/internal/blob"
	"seathub/internal/core"
	"seathub/pkg/domain"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyStorageDriver  = "storage_driver"
	cfgKeySQLitePath     = "sqlite_path"
	cfgKeyPostgresDSN    = "postgres_dsn"
	cfgKeyBondedDenom    = "bonded_denom"
	cfgKeyArchiveEnabled = "archive_enabled"
	cfgKeyBlobDriver     = "blob_driver"
	cfgKeyBlobFSRoot     = "blob_fs_root"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Seathub CLI configuration

# Storage backend: memory | sqlite | postgres
storage_driver: sqlite

# Path to the sqlite file (driver=sqlite)
# sqlite_path: seathub.db

# PostgreSQL DSN (driver=postgres)
# postgres_dsn:

# Denomination used to default a sale price when none is configured
bonded_denom: uturnt

# Archive a state snapshot to a blob store after every execute
archive_enabled: false

# Blob backend for archived snapshots: fs | s3 | memory
# blob_driver: fs
# blob_fs_root: archivedata
`

// loadConfig reads config.yaml from the config directory using Viper, with
// SEATHUB_* environment variables taking precedence over file values. The
// directory and a default config.yaml are created on first run.
func loadConfig(dir string) (*viper.Viper, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".seathub")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyStorageDriver, string(core.StorageSQLite))
	v.SetDefault(cfgKeyBondedDenom, "uturnt")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("SEATHUB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// missing config.yaml is not an error
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(dir string) error {
	path := filepath.Join(dir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// openStore maps the resolved configuration onto the environment scheme the
// storage selector reads, then opens the backend.
func openStore(v *viper.Viper) (domain.PersistentStore, error) {
	for key, env := range map[string]string{
		cfgKeyStorageDriver: "SEATHUB_STORAGE_DRIVER",
		cfgKeySQLitePath:    "SEATHUB_SQLITE_PATH",
		cfgKeyPostgresDSN:   "SEATHUB_POSTGRES_DSN",
	} {
		if val := v.GetString(key); val != "" {
			if err := os.Setenv(env, val); err != nil {
				return nil, fmt.Errorf("set %s: %w", env, err)
			}
		}
	}
	return core.OpenPersistentStore()
}

// openArchiver selects the blob backend the same way openStore selects the
// persistent store and wraps it in a snapshot archiver.
func openArchiver(ctx context.Context, v *viper.Viper) (*core.SnapshotArchiver, error) {
	for key, env := range map[string]string{
		cfgKeyBlobDriver: "SEATHUB_BLOB_DRIVER",
		cfgKeyBlobFSRoot: "SEATHUB_BLOB_FS_ROOT",
	} {
		if val := v.GetString(key); val != "" {
			if err := os.Setenv(env, val); err != nil {
				return nil, fmt.Errorf("set %s: %w", env, err)
			}
		}
	}
	blobs, err := blob.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return core.NewSnapshotArchiver(blobs), nil
}
