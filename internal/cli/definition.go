package cli

import "f1timing/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "F1 Live Timing (f1timing)",
		FullDescription: "  Decodes, records, replays and redistributes the live timing feed",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Distribution
	root.ChildCommands["server"] = &global.CommandSet{
		CommandName:     "server",
		Description:     "Run Distribution Server",
		FullDescription: "Relays the live feed (or a recording) to any number of proxy clients over TCP",
	}

	// Recording
	root.ChildCommands["record"] = &global.CommandSet{
		CommandName:     "record",
		UsageOption:     "<session-name>",
		Description:     "Record a Session",
		FullDescription: "Records the live feed or a proxy stream to a dated file, retrying the initial connection",
	}

	// Replay
	root.ChildCommands["play"] = &global.CommandSet{
		CommandName:     "play",
		UsageOption:     "<recording>",
		Description:     "Replay a Recording",
		FullDescription: "Replays a recording with its original pacing, printing messages or forwarding them to a beats server",
	}
	root.ChildCommands["dump"] = &global.CommandSet{
		CommandName:     "dump",
		UsageOption:     "<recording>",
		Description:     "Print Messages",
		FullDescription: "Prints every message of a recording (or a proxy stream with --proxy) without pacing",
	}

	// File maintenance
	root.ChildCommands["fixup"] = &global.CommandSet{
		CommandName:     "fixup",
		UsageOption:     "<recording>...",
		Description:     "Retranslate Recordings",
		FullDescription: "Replaces the translated messages in recordings with the output of the current translator",
	}
	root.ChildCommands["stats"] = &global.CommandSet{
		CommandName:     "stats",
		UsageOption:     "<recording>...",
		Description:     "Recording Statistics",
		FullDescription: "Shows size and message counts by type for recordings",
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Install the server, or write a template configuration",
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
