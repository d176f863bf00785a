package merchant_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/alovak/brcode-playground/merchant"
	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestApp(t *testing.T) {
	cfg := merchant.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.DSN = ":memory:"

	app := merchant.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, app.Start())
	defer app.Shutdown()

	base := "http://" + app.Addr

	for _, path := range []string{"/-/live", "/-/ready"} {
		res, err := http.Get(base + path)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode, path)
		require.NotEmpty(t, res.Header.Get("X-Request-ID"))
	}

	body, _ := json.Marshal(models.Profile{PixKey: "k", RecipientName: "", City: "Brasilia"})
	req, _ := http.NewRequest(http.MethodPut, base+"/profile", bytes.NewReader(body))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	body, _ = json.Marshal(models.Profile{PixKey: "k", RecipientName: "Fulano", City: "Brasilia"})
	req, _ = http.NewRequest(http.MethodPut, base+"/profile", bytes.NewReader(body))
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, _ = json.Marshal(models.CreatePayload{Amount: "5,50"})
	res, err = http.Post(base+"/payloads", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var tx models.Transaction
	require.NoError(t, json.NewDecoder(res.Body).Decode(&tx))
	require.Equal(t, "5.50", tx.Amount)
	require.Equal(t, "00020126230014BR.GOV.BCB.PIX0101k52040000530398654045.505802BR5906Fulano6008Brasilia62070503***6304", tx.BRCode[:len(tx.BRCode)-4])
}

func TestApp_UnsupportedBackend(t *testing.T) {
	cfg := merchant.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.Storage.Backend = "cassandra"

	app := merchant.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.Error(t, app.Start())
}
