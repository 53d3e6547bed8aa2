package cli

import (
	"f1timing/internal/global"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Set the account password with the F1TIMING_PASSWORD environment variable
to avoid the interactive prompt.
`
	baseIndentSpaces int = 2
)

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	cmdSet, parents := findCommand(command, rootCmd)
	if cmdSet == nil {
		fmt.Fprintf(out, "Unknown command: %s\n", command)
		return
	}

	fmt.Fprintf(out, "Usage: %s\n\n", usageLine(cmdSet, parents))

	// Description
	if cmdSet == rootCmd {
		fmt.Fprintln(out, cmdSet.Description)
		fmt.Fprintln(out, cmdSet.FullDescription)
		fmt.Fprintln(out)
	} else if cmdSet.FullDescription != "" {
		fmt.Fprintln(out, "  Description:")
		fmt.Fprintf(out, "    %s\n\n", cmdSet.FullDescription)
	}

	printSubcommands(out, cmdSet)
	printFlagOptions(out, fs)

	if cmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Locates a command up to two levels below root, returning the chain of parents
func findCommand(command string, rootCmd *global.CommandSet) (cmdSet *global.CommandSet, parents []*global.CommandSet) {
	if command == "" || command == RootCLICommand {
		cmdSet = rootCmd
		return
	}
	if cmd, ok := rootCmd.ChildCommands[command]; ok {
		cmdSet = cmd
		parents = []*global.CommandSet{rootCmd}
		return
	}
	for _, topCmd := range rootCmd.ChildCommands {
		if sub, ok := topCmd.ChildCommands[command]; ok {
			cmdSet = sub
			parents = []*global.CommandSet{rootCmd, topCmd}
			return
		}
	}
	return
}

func usageLine(cmdSet *global.CommandSet, parents []*global.CommandSet) string {
	parts := []string{os.Args[0]}
	for _, parent := range append(parents, cmdSet) {
		if parent.CommandName == RootCLICommand {
			continue
		}
		parts = append(parts, parent.CommandName)
	}

	switch len(cmdSet.ChildCommands) {
	case 0:
	case 1:
		for name := range cmdSet.ChildCommands {
			parts = append(parts, name)
		}
	default:
		parts = append(parts, "[subcommand]")
	}
	if len(cmdSet.ChildCommands) == 0 {
		parts = append(parts, "[options]")
	}
	if cmdSet.UsageOption != "" {
		parts = append(parts, cmdSet.UsageOption)
	}
	return strings.Join(parts, " ")
}

func printSubcommands(out io.Writer, cmdSet *global.CommandSet) {
	if len(cmdSet.ChildCommands) == 0 {
		return
	}

	names := make([]string, 0, len(cmdSet.ChildCommands))
	width := 0
	for name := range cmdSet.ChildCommands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, name := range names {
		fmt.Fprintf(out, "%s%-*s  - %s\n", strings.Repeat(" ", baseIndentSpaces+2), width, name, cmdSet.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

type flagOption struct {
	short      string
	long       []string
	usage      string
	defaultVal string
}

// Label like "-c, --config", long-only flags aligned past the short column
func (opt *flagOption) label() string {
	var names []string
	for _, name := range opt.long {
		names = append(names, "--"+name)
	}
	longText := strings.Join(names, ", ")
	if opt.short == "" {
		return "    " + longText
	}
	if longText == "" {
		return "-" + opt.short
	}
	return "-" + opt.short + ", " + longText
}

// Prints flags with short and long spellings of the same option merged (matched by usage text)
func printFlagOptions(out io.Writer, fs *flag.FlagSet) {
	byUsage := make(map[string]*flagOption)
	var opts []*flagOption
	fs.VisitAll(func(arg *flag.Flag) {
		opt, seen := byUsage[arg.Usage]
		if !seen {
			opt = &flagOption{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = opt
			opts = append(opts, opt)
		}
		if len(arg.Name) == 1 && opt.short == "" {
			opt.short = arg.Name
		} else {
			opt.long = append(opt.long, arg.Name)
		}
	})
	if len(opts) == 0 {
		return
	}

	sort.Slice(opts, func(a, b int) bool {
		return strings.ToLower(strings.TrimSpace(opts[a].label())) < strings.ToLower(strings.TrimSpace(opts[b].label()))
	})

	width := 0
	for _, opt := range opts {
		width = max(width, len(opt.label()))
	}

	indent := strings.Repeat(" ", baseIndentSpaces)
	fmt.Fprintf(out, "%sOptions:\n", indent)
	for _, opt := range opts {
		desc := opt.usage
		// Skip printing any "empty" defaults
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}
		fmt.Fprintf(out, "%s%-*s  %s\n", indent, width, opt.label(), desc)
	}
}
