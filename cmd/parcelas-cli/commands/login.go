package commands

import (
	"fmt"
	"time"

	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/pkg/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks that the configured credentials can log into SSÓtica.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		client, err := newClient(cfg)
		if err != nil {
			serviceutil.Fatal("create ssotica client", err)
		}

		start := time.Now()
		err = client.EnsureAuthenticated(cmd.Context())
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("login failed (%s)", ssotica.KindOf(err)), err)
		}
		fmt.Printf("logged in as %s in %s\n", cfg.Ssotica.Username, time.Since(start).Round(time.Millisecond))
	},
}
