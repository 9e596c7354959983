package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type reportsCmd struct{}

func (*reportsCmd) Name() string     { return "reports" }
func (*reportsCmd) Synopsis() string { return "list reports and their record counts" }
func (*reportsCmd) Usage() string {
	return `btctl reports

  Lists every report. The active report is marked with '*'.
`
}

func (*reportsCmd) SetFlags(*flag.FlagSet) {}

func (c *reportsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return runWithEnv(ctx, func(ctx context.Context, e *env) error {
		reports, err := e.injector.Store.Reports()
		if err != nil {
			return err
		}

		var md strings.Builder
		md.WriteString("# Reports\n\n")
		md.WriteString("| | ID | Name | Investments | Profits | Withdrawals |\n")
		md.WriteString("|---|---|---|---:|---:|---:|\n")
		for _, r := range reports {
			marker := ""
			if r.IsActive {
				marker = "*"
			}
			fmt.Fprintf(&md, "| %s | %s | %s | %d | %d | %d |\n",
				marker, r.ID, strings.ReplaceAll(r.Name, "|", "\\|"), len(r.Investments), len(r.Profits), len(r.Withdrawals))
		}
		return e.printMarkdown(md.String())
	})
}

type selectCmd struct{}

func (*selectCmd) Name() string     { return "select" }
func (*selectCmd) Synopsis() string { return "make a report the active report" }
func (*selectCmd) Usage() string {
	return `btctl select <report-id>

  Marks the given report as active. Imports and metrics default to it.
`
}

func (*selectCmd) SetFlags(*flag.FlagSet) {}

func (c *selectCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: select expects exactly one report id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return runWithEnv(ctx, func(ctx context.Context, e *env) error {
		if err := e.injector.Store.SelectActiveReport(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Active report: %s\n", id)
		return nil
	})
}
