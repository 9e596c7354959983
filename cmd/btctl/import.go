package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/subcommands"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/application/usecase/importer"
	"github.com/btc-tracker/backend/internal/domain/entity"
)

var cliKinds = map[string]entity.ImportKind{
	"trades":      entity.ImportKindTrade,
	"deposits":    entity.ImportKindDeposit,
	"withdrawals": entity.ImportKindWithdrawal,
}

type importCmd struct {
	configID string
	kind     string
	reportID string
	user     string
	quiet    bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import LN Markets trades, deposits or withdrawals" }
func (*importCmd) Usage() string {
	return `btctl import -config <id> [-kind trades|deposits|withdrawals|all] [-report <id>] [-user <identity>]

  Fetches records from LN Markets and merges the new ones into a report.
  Re-running an import only adds records that were not imported before.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configID, "config", "", "LN Markets config id")
	f.StringVar(&c.kind, "kind", "all", "Record kind to import (trades, deposits, withdrawals, all)")
	f.StringVar(&c.reportID, "report", "", "Target report id. Defaults to the active report.")
	f.StringVar(&c.user, "user", "", "User identity owning the config. Defaults to DEFAULT_USER_ID.")
	f.BoolVar(&c.quiet, "q", false, "Do not print progress")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.configID == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		return subcommands.ExitUsageError
	}
	kindName := strings.ToLower(c.kind)
	kind, ok := cliKinds[kindName]
	if !ok && kindName != "all" {
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", c.kind)
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return runWithEnv(ctx, func(ctx context.Context, e *env) error {
		user := c.user
		if user == "" {
			user = e.injector.Config.Server.DefaultUserID
		}
		input := importer.ImportInput{
			UserIdentity: user,
			ConfigID:     c.configID,
			ReportID:     c.reportID,
		}
		if !c.quiet {
			input.Progress = adapter.ProgressFunc(func(p entity.ImportProgress) {
				fmt.Fprintf(os.Stderr, "\r[%5.1f%%] %s", p.Percentage, p.Message)
				if p.Status != entity.ImportStatusLoading {
					fmt.Fprintln(os.Stderr)
				}
			})
		}

		if kindName == "all" {
			out, err := e.injector.ImportUseCase.ImportAll(ctx, input)
			if out != nil {
				if perr := e.printJSON(out); perr != nil {
					return perr
				}
			}
			return err
		}

		input.Kind = kind
		out, err := e.injector.ImportUseCase.Execute(ctx, input)
		if err != nil {
			return err
		}
		return e.printJSON(out)
	})
}
