package ssotica

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ssotica-backend/pkg/configutil"

	"github.com/stretchr/testify/require"
)

func TestConfigOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		// credentials usually come from the environment
		username: "from-file",
		password: "from-file",
		token_source: "cookie",
		timeout_seconds: 5,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := configutil.ReadConfig[Config](path)
	require.NoError(t, err)

	t.Setenv("SSOTICA_USER", "from-env")
	t.Setenv("SSOTICA_PASS", "")
	cfg.ApplyEnv()
	require.Equal(t, "from-env", cfg.Username)
	require.Equal(t, "from-file", cfg.Password)

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	require.Equal(t, TokenFromCookie, opts.TokenSource)
	require.Equal(t, 5*time.Second, opts.Timeout)

	_, err = Config{TokenSource: "header"}.Options(nil)
	require.ErrorIs(t, err, ErrConfiguration)
}
