package cli

import (
	"context"
	"f1timing/internal/fixup"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

func FixupMode(ctx context.Context, commandname string, args []string) {
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	parseCommand(ctx, commandFlags, commandname, args, 1)

	ctx = logctx.AppendCtxTag(ctx, global.NSFixup)
	ctx, cancel := interruptible(ctx)
	defer cancel()

	failed := 0
	for _, path := range commandFlags.Args() {
		stats, err := fixup.Run(ctx, path)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed to fix up %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: %s\n", path, stats)
	}
	if failed > 0 {
		exitOnError("Error", fmt.Errorf("%d of %d recordings failed", failed, commandFlags.NArg()))
	}
}

func StatsMode(ctx context.Context, commandname string, args []string) {
	var showTypes bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.BoolVar(&showTypes, "t", false, "Show message counts per type")
	commandFlags.BoolVar(&showTypes, "types", false, "Show message counts per type")
	parseCommand(ctx, commandFlags, commandname, args, 1)

	for _, path := range commandFlags.Args() {
		stats, err := fixup.Inspect(path)
		exitOnError("Error", err)
		writeStats(os.Stdout, stats, showTypes)
	}
}

func writeStats(out io.Writer, stats fixup.FileStats, showTypes bool) {
	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(table, "%s\t\n", stats.FileName)
	fmt.Fprintf(table, "bytes\t%d\t\n", stats.FileLength)
	fmt.Fprintf(table, "messages\t%d\t\n", stats.MessageCount)
	fmt.Fprintf(table, "average length\t%d\t\n", stats.AverageMessageLength())
	if showTypes {
		for _, count := range stats.ByType {
			fmt.Fprintf(table, "%s\t%d\t\n", count.Name, count.Count)
		}
	}
	table.Flush()
	fmt.Fprintln(out)
}
