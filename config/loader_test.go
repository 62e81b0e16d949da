package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{}
	require.NoError(t, BindFlags(cmd.Flags(), v))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, Defaults(), cfg)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min-clients: 7\nwitness-nodes: 4\nwitness-quorum: 3\n"), 0o600))

	v := viper.New()
	cmd := &cobra.Command{}
	require.NoError(t, BindFlags(cmd.Flags(), v))

	cfg, err := Load(v, path)
	require.NoError(t, err)
	require.Equal(t, uint32(7), cfg.MinClients)
	require.Equal(t, uint32(4), cfg.WitnessNodes)
	require.Equal(t, uint32(3), cfg.WitnessQuorum)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min-clients: 0\n"), 0o600))

	v := viper.New()
	cmd := &cobra.Command{}
	require.NoError(t, BindFlags(cmd.Flags(), v))

	_, err := Load(v, path)
	require.Error(t, err)
}
