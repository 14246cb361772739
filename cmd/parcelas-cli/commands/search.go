package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"ssotica-backend/internal/components/chrono"
	"ssotica-backend/internal/db"
	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/internal/service"
	"ssotica-backend/pkg/migrations"
	"ssotica-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var searchJson *bool

func init() {
	searchJson = searchCmd.Flags().Bool("json", false, "Print the result in the same json shape the http api returns.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <customer name> [--json]",
	Short: "Searches the open installments of a customer.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		client, err := newClient(cfg)
		if err != nil {
			serviceutil.Fatal("create ssotica client", err)
		}

		var options []service.Option
		if cfg.Database.File != "" || cfg.Database.Url != "" {
			database, err := migrations.OpenAndMigrateDB(db.Schema, cfg.Database)
			if err != nil {
				serviceutil.Fatal("open search log", err)
			}
			defer database.Close()
			options = append(options, service.WithSearchLog(db.New(database)))
		}

		installments, err := service.NewInstallmentService(client, options...)
		if err != nil {
			serviceutil.Fatal("create installment service", err)
		}

		result, err := installments.SearchDetailed(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed (%s): %v\n", ssotica.KindOf(err), err)
			os.Exit(1)
		}

		if *searchJson {
			printJson(result)
			return
		}
		printTable(result)
	},
}

func printJson(result service.SearchResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(map[string]any{
		"success":   true,
		"dados":     result.Installments,
		"sugestoes": result.Suggestions,
	})
	if err != nil {
		serviceutil.Fatal("encode result", err)
	}
}

func printTable(result service.SearchResult) {
	if len(result.Installments) == 0 {
		fmt.Println("no open installments found.")
		if len(result.Suggestions) > 0 {
			fmt.Println("did you mean:")
			for _, name := range result.Suggestions {
				fmt.Printf("  - %s\n", name)
			}
		}
		return
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("load timezone", err)
	}

	t := newTable()
	t.AppendHeader(table.Row{"Customer", "Installment", "Amount", "Due date", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	for _, installment := range result.Installments {
		t.AppendRow(table.Row{
			installment.CustomerName,
			installment.InstallmentLabel,
			installment.AmountText,
			installment.DueDate,
			dueStatus(installment, clock),
		})
	}

	total, unparsed := sumAmounts(result.Installments)
	footer := fmt.Sprintf("R$ %s", total.StringFixed(2))
	if unparsed > 0 {
		footer += fmt.Sprintf(" (%d unreadable)", unparsed)
	}
	t.AppendFooter(table.Row{"", "Total", footer, "", ""})
	t.Render()
}
