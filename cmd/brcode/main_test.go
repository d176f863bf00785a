package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alovak/brcode-playground/merchant"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const fulanoCode = "00020126380014BR.GOV.BCB.PIX0116user@example.com520400005303986540510.005802BR5913Fulano de Tal6009Sao Paulo62070503***6304AF9F"

// setupConfig writes a config file pointing at a fresh sqlite database.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "brcode.yaml")
	content := "language: en\n" +
		"timezone: UTC\n" +
		"storage:\n" +
		"  backend: sqlite\n" +
		"  dsn: " + filepath.Join(dir, "brcode.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func saveFulano(t *testing.T, cfg string) {
	t.Helper()
	out, err := execute(t, cfg, "settings", "set", "--key", "user@example.com", "--name", "Fulano de Tal", "--city", "Sao Paulo")
	require.NoError(t, err)
	require.Contains(t, out, "Profile saved.")
}

func TestSettings(t *testing.T) {
	cfg := setupConfig(t)

	out, err := execute(t, cfg, "settings", "show")
	require.NoError(t, err)
	require.Contains(t, out, "Pix key: (not set)")

	_, err = execute(t, cfg, "settings", "set", "--key", "user@example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "brcode settings set")

	saveFulano(t, cfg)

	// partial update keeps the other fields
	_, err = execute(t, cfg, "settings", "set", "--city", "Rio")
	require.NoError(t, err)

	out, err = execute(t, cfg, "settings", "show")
	require.NoError(t, err)
	require.Contains(t, out, "Pix key: user@example.com")
	require.Contains(t, out, "Recipient name: Fulano de Tal")
	require.Contains(t, out, "City: Rio")
}

func TestGenerate(t *testing.T) {
	cfg := setupConfig(t)

	_, err := execute(t, cfg, "generate", "10", "--no-qr")
	require.Error(t, err)

	saveFulano(t, cfg)

	out, err := execute(t, cfg, "generate", "10,00", "--no-qr")
	require.NoError(t, err)
	require.Contains(t, out, "Amount: R$ 10,00")
	require.Contains(t, out, fulanoCode)
	require.NotContains(t, out, "█")

	out, err = execute(t, cfg, "generate", "1000", "--cents")
	require.NoError(t, err)
	require.Contains(t, out, fulanoCode)
	require.Contains(t, out, "█")

	_, err = execute(t, cfg, "generate", "0", "--no-qr")
	require.Error(t, err)
	require.Contains(t, err.Error(), "greater than zero")

	_, err = execute(t, cfg, "generate")
	require.Error(t, err)
}

func TestGenerate_QRFileAndClipboard(t *testing.T) {
	cfg := setupConfig(t)
	saveFulano(t, cfg)

	orig := copyToClipboard
	defer func() { copyToClipboard = orig }()
	var copied string
	copyToClipboard = func(s string) error { copied = s; return nil }

	png := filepath.Join(t.TempDir(), "pix.png")
	out, err := execute(t, cfg, "generate", "10", "--no-qr", "--qr", png, "--copy")
	require.NoError(t, err)
	require.Contains(t, out, "QR code saved to "+png)
	require.Contains(t, out, "Code copied to the clipboard.")
	require.Equal(t, fulanoCode, copied)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	copyToClipboard = func(string) error { return errors.New("no clipboard") }
	out, err = execute(t, cfg, "generate", "10", "--no-qr", "--copy")
	require.NoError(t, err)
	require.Contains(t, out, "Could not copy to the clipboard: no clipboard")
}

func TestHistory(t *testing.T) {
	cfg := setupConfig(t)

	out, err := execute(t, cfg, "history")
	require.NoError(t, err)
	require.Contains(t, out, "No payments generated yet.")

	saveFulano(t, cfg)
	for _, a := range []string{"1", "2", "3"} {
		_, err := execute(t, cfg, "generate", a, "--no-qr")
		require.NoError(t, err)
	}

	out, err = execute(t, cfg, "history", "--limit", "2", "--code")
	require.NoError(t, err)
	require.Contains(t, out, "R$ 3,00")
	require.Contains(t, out, "R$ 2,00")
	require.NotContains(t, out, "R$ 1,00")
	require.Less(t, strings.Index(out, "R$ 3,00"), strings.Index(out, "R$ 2,00"))
	require.Contains(t, out, "BR.GOV.BCB.PIX")
}

func TestDecode(t *testing.T) {
	cfg := setupConfig(t)

	out, err := execute(t, cfg, "decode", fulanoCode)
	require.NoError(t, err)
	require.Contains(t, out, "Valid BR Code")
	require.Contains(t, out, "Pix key: user@example.com")
	require.Contains(t, out, "Recipient: Fulano de Tal")
	require.Contains(t, out, "Amount: R$ 10,00")
	require.Contains(t, out, "Reference: ***")

	_, err = execute(t, cfg, "decode", fulanoCode[:len(fulanoCode)-4]+"0000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	cfg := setupConfig(t)
	t.Setenv("BRCODE_LANGUAGE", "pt-BR")

	out, err := execute(t, cfg, "settings", "set", "--key", "k", "--name", "n", "--city", "c")
	require.NoError(t, err)
	require.Contains(t, out, "Configurações salvas.")
}

func TestConfig_Load(t *testing.T) {
	cfg := setupConfig(t)
	t.Setenv("BRCODE_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("BRCODE_STORAGE_HISTORY_LIMIT", "7")

	v := viper.New()
	setDefaults(v, merchant.DefaultConfig())
	c := &cli{v: v, cfgFile: cfg}
	require.NoError(t, c.load())

	require.Equal(t, "sqlite", c.cfg.Storage.Backend)
	require.Equal(t, 7, c.cfg.Storage.HistoryLimit)
	require.Equal(t, []string{"a:9092", "b:9092"}, c.cfg.Kafka.Brokers)
	require.Equal(t, "brcode.payments", c.cfg.Kafka.Topic)
	require.Equal(t, 256, c.cfg.QR.Size)
	require.False(t, c.cfg.Kafka.Enabled)
}

func TestConfig_MissingFile(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing.yaml"), "settings", "show")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(merchant.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestRemoteServer(t *testing.T) {
	router := chi.NewRouter()
	merchant.NewAPI(merchant.NewService(merchant.NewRepository(), merchant.DefaultConfig())).AppendRoutes(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	cfg := setupConfig(t)
	out, err := execute(t, cfg, "--server", srv.URL, "settings", "set", "--key", "user@example.com", "--name", "Fulano de Tal", "--city", "Sao Paulo")
	require.NoError(t, err)
	require.Contains(t, out, "Profile saved.")

	out, err = execute(t, cfg, "--server", srv.URL, "generate", "10", "--no-qr")
	require.NoError(t, err)
	require.Contains(t, out, fulanoCode)

	out, err = execute(t, cfg, "--server", srv.URL, "history")
	require.NoError(t, err)
	require.Contains(t, out, "R$ 10,00")

	// the local database was not touched
	out, err = execute(t, cfg, "history")
	require.NoError(t, err)
	require.Contains(t, out, "No payments generated yet.")
}
