package commands

import (
	"database/sql"
	"fmt"
	"time"

	"ssotica-backend/internal/db"
	"ssotica-backend/pkg/migrations"
	"ssotica-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int64

func init() {
	historyLimit = historyCmd.Flags().Int64("limit", 20, "How many searches to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Lists the latest searches recorded in the search log.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		database, err := migrations.OpenAndMigrateDB(db.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("open search log", err)
		}
		defer database.Close()

		rows, err := db.New(database).GetRecentSearchLogs(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("query search log", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"When", "Search", "Results", "Error", "Cached", "Duration"})
		for _, row := range rows {
			t.AppendRow(table.Row{
				time.Unix(row.SearchedAt, 0).Format(time.DateTime),
				row.RawName,
				row.ResultCount,
				nullString(row.ErrorKind),
				row.Cached != 0,
				fmt.Sprintf("%dms", row.DurationMs),
			})
		}
		t.Render()
	},
}

func nullString(value sql.NullString) string {
	if !value.Valid {
		return "-"
	}
	return value.String
}
