package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/pkg/configutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	Ssotica  ssotica.Config    `json:"ssotica"`
	Database configutil.Libsql `json:"database"`
}

var (
	configPath *string
	dumpHttp   *string
	verbose    *bool
)

var rootCmd = &cobra.Command{
	Use:   "parcelas-cli",
	Short: "parcelas-cli searches the open installments of SSÓtica customers from the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every request made to SSÓtica into this directory.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg.Ssotica.ApplyEnv()
	return cfg, nil
}

func newClient(cfg Config) (*ssotica.Client, error) {
	var output telemetry.MessageOutput
	if *dumpHttp != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}

	opts, err := cfg.Ssotica.Options(output)
	if err != nil {
		return nil, err
	}
	return ssotica.NewClient(opts, telemetry.SlogAPI{})
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
