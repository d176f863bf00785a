// brcode generates static Pix BR Codes from the command line and serves the
// merchant HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alovak/brcode-playground/internal/datefmt"
	"github.com/alovak/brcode-playground/internal/i18n"
	"github.com/alovak/brcode-playground/merchant"
	"github.com/alovak/brcode-playground/merchant/client"
	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the configuration shared by all subcommands of one root.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *merchant.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	setDefaults(c.v, merchant.DefaultConfig())

	cmd := &cobra.Command{
		Use:   "brcode",
		Short: "Generate static Pix BR Codes.",
		Long: `brcode builds static Pix payment codes (BR Code) for a saved merchant profile,
keeps a history of generated codes and can serve the same features over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.brcode.yaml or ./.brcode.yaml)")
	cmd.PersistentFlags().String("storage", "", "storage backend (mem, sqlite, postgres, mongo, redis)")
	cmd.PersistentFlags().String("dsn", "", "storage connection string, file path or address")
	cmd.PersistentFlags().String("lang", "", `output language ("en", "pt-BR")`)
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("server", "", "use a running merchant API at this URL instead of local storage")

	c.v.BindPFlag("storage.backend", cmd.PersistentFlags().Lookup("storage"))
	c.v.BindPFlag("storage.dsn", cmd.PersistentFlags().Lookup("dsn"))
	c.v.BindPFlag("language", cmd.PersistentFlags().Lookup("lang"))
	c.v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	c.v.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))

	cmd.AddCommand(newServeCmd(c))
	cmd.AddCommand(newSettingsCmd(c))
	cmd.AddCommand(newGenerateCmd(c))
	cmd.AddCommand(newHistoryCmd(c))
	cmd.AddCommand(newDecodeCmd(c))

	return cmd
}

func setDefaults(v *viper.Viper, d *merchant.Config) {
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("language", d.Language)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.database", d.Storage.Database)
	v.SetDefault("storage.password", d.Storage.Password)
	v.SetDefault("storage.history_limit", d.Storage.HistoryLimit)
	v.SetDefault("qr.size", d.QR.Size)
	v.SetDefault("kafka.enabled", d.Kafka.Enabled)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
}

// load reads the config file and BRCODE_* environment variables and applies
// the language and timezone.
func (c *cli) load() error {
	v := c.v
	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".brcode")
	}

	v.SetEnvPrefix("BRCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || c.cfgFile != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &merchant.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	c.cfg = cfg

	i18n.Init(cfg.Language)
	if err := datefmt.LoadDefaultLocation(cfg.Timezone); err != nil {
		return err
	}
	return nil
}

func newLogger(cfg merchant.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// backend is what the profile and payment commands need; it is served
// by a local Service or by a remote merchant API.
type backend interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, req models.Profile) (*models.Profile, error)
	Generate(ctx context.Context, req models.CreatePayload) (*models.Transaction, error)
	ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error)
}

var (
	_ backend = (*merchant.Service)(nil)
	_ backend = (*client.Client)(nil)
)

// openBackend returns the remote API client when --server is set, otherwise a
// service over the configured storage. The returned func releases it.
func (c *cli) openBackend(ctx context.Context) (backend, func(), error) {
	if server := c.v.GetString("server"); server != "" {
		return client.New(server, nil), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	storage, err := merchant.OpenStorage(ctx, c.cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return merchant.NewService(storage, c.cfg), func() { storage.Close() }, nil
}

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merchant HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(c.cfg.Log, cmd.ErrOrStderr())
			app := merchant.NewApp(logger, c.cfg)
			if err := app.Start(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("serve.listening", app.Addr))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			app.Shutdown()
			return nil
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address")
	c.v.BindPFlag("http_addr", cmd.Flags().Lookup("addr"))
	cmd.Flags().Bool("kafka", false, "publish payment events to kafka")
	c.v.BindPFlag("kafka.enabled", cmd.Flags().Lookup("kafka"))

	return cmd
}
