package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/home/tester/.local/share/vaultswipe/vaultswipe.db", cfg.Storage.Path)
	assert.Equal(t, "/home/tester/.local/share/vaultswipe/state", cfg.Storage.Dir)
	assert.Equal(t, "vaultswipe_mvp1", cfg.Storage.Key)
	assert.True(t, cfg.Storage.AutoCheckpoint)

	assert.Equal(t, ledger.DefaultPalette, cfg.Ledger.Palette)
	assert.Equal(t, 1, cfg.Ledger.DefaultDueDay)
	assert.Equal(t, 5, cfg.Ledger.DueSoonDays)
	assert.Equal(t, model.TransferStrict, cfg.Ledger.TransferMode)
	assert.Equal(t, model.PendingSum, cfg.Ledger.Aggregation)
}

func TestLoad_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  backend: file
  dir: /tmp/vault-state
  auto_checkpoint: false
ledger:
  palette: ["#111111", "#222222"]
  due_soon_days: 3
  transfer_mode: unchecked
  aggregation: auto
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/vault-state", cfg.Storage.Dir)
	assert.False(t, cfg.Storage.AutoCheckpoint)
	assert.Equal(t, []string{"#111111", "#222222"}, cfg.Ledger.Palette)
	assert.Equal(t, 3, cfg.Ledger.DueSoonDays)
	assert.Equal(t, model.TransferUnchecked, cfg.Ledger.TransferMode)
	assert.Equal(t, ledger.AggregationAuto, cfg.Ledger.Aggregation)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VAULTSWIPE_LEDGER_TRANSFER_MODE", "unchecked")

	v := newViper()
	v.SetEnvPrefix("VAULTSWIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, model.TransferUnchecked, cfg.Ledger.TransferMode)
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	v := newViper()
	v.Set("logging.level", "loud")
	v.Set("storage.backend", "s3")
	v.Set("ledger.palette", []string{"teal"})
	v.Set("ledger.default_due_day", 40)
	v.Set("ledger.transfer_mode", "yolo")
	v.Set("ledger.aggregation", "sometimes")

	_, err := Load(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	for _, want := range []string{
		"invalid log level 'loud'",
		"invalid storage backend 's3'",
		"invalid palette color 'teal'",
		"invalid default due day 40",
		"invalid transfer mode 'yolo'",
		"invalid aggregation 'sometimes'",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestStorageLocation(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("VAULT_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "~", want: "/home/tester"},
		{in: "~/vault.db", want: "/home/tester/vault.db"},
		{in: "$VAULT_TEST_DIR/vault.db", want: "/data/vault.db"},
		{in: "${VAULT_TEST_DIR}/state/", want: "/data/state"},
		{in: "/abs/./path/../vault.db", want: "/abs/vault.db"},
		{in: "relative/vault.db", want: "relative/vault.db"},
	}
	for _, tt := range tests {
		got, err := storageLocation("storage.path", tt.in)
		require.NoError(t, err, "storageLocation(%q)", tt.in)
		assert.Equal(t, tt.want, got, "storageLocation(%q)", tt.in)
	}

	_, err := storageLocation("storage.dir", "$VAULTSWIPE_TEST_UNSET_DIR/state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dir '$VAULTSWIPE_TEST_UNSET_DIR/state' uses unset variable VAULTSWIPE_TEST_UNSET_DIR")
}

func TestLoad_UnsetVariableInActiveLocation(t *testing.T) {
	v := newViper()
	v.Set("storage.path", "$VAULTSWIPE_TEST_UNSET_DIR/vaultswipe.db")

	_, err := Load(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "uses unset variable VAULTSWIPE_TEST_UNSET_DIR")

	v.Set("storage.backend", BackendFile)
	v.Set("storage.dir", t.TempDir())
	cfg, err := Load(v)
	require.NoError(t, err, "inactive sqlite path is not resolved")
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}
