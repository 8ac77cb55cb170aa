// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND PARSING
// =============================================================================

// Command identifies which subcommand was requested.
type Command int

const (
	// CmdTUI launches the interactive chat (the default).
	CmdTUI Command = iota
	CmdAsk
	CmdSessions
	CmdExport
	CmdVersion
	CmdHelp
)

// Args are the remaining arguments after the subcommand.
type Args []string

// Parse reads os.Args and resolves the subcommand. Unknown subcommands
// fall through to help so a typo never silently launches the TUI.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	if len(argv) == 0 {
		return CmdTUI, nil
	}

	switch argv[0] {
	case "ask":
		return CmdAsk, argv[1:]
	case "sessions":
		return CmdSessions, argv[1:]
	case "export":
		return CmdExport, argv[1:]
	case "version", "--version", "-v":
		return CmdVersion, nil
	case "help", "--help", "-h":
		return CmdHelp, nil
	case "tui":
		return CmdTUI, argv[1:]
	default:
		return CmdHelp, argv
	}
}

// HandleVersion prints the build information.
func HandleVersion() {
	fmt.Printf("sm-ai-partner %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`sm-ai-partner - conversational AI study partner

Usage:
  sm-ai-partner                     launch the interactive chat
  sm-ai-partner ask [flags] <text>  one-shot question, streamed to stdout
  sm-ai-partner sessions            list saved conversations
  sm-ai-partner export <id> [path]  save a conversation as Markdown
  sm-ai-partner version             print version information

Flags for ask:
  -mode education|coding|image      conversation mode (default education)
  -deep                             use the deep reasoning model
  -image <path>                     attach an image to the question
  -audio <path>                     transcribe a recorded clip as the question
  -out <path>                       output file for generated images

GEMINI_API_KEY must be set (environment or ~/.sm-ai-partner/config.toml).
`)
}
