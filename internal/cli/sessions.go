// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/util"
)

// =============================================================================
// SESSIONS AND EXPORT COMMANDS
// =============================================================================

// HandleSessions lists the saved conversations, most recent first.
func HandleSessions(_ Args) error {
	app, err := Bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer app.Close()

	sessions := app.Store.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	for _, s := range sessions {
		marker := " "
		if s.ID == app.Store.ActiveID() {
			marker = "*"
		}
		fmt.Printf("%s %s  %-40s  %3d messages  %s\n",
			marker, s.ID,
			util.TruncateRunes(s.Title, 40),
			len(s.Messages),
			s.LastUpdated.Format("2006-01-02 15:04"))
	}
	return nil
}

// HandleExport writes one conversation to a Markdown file.
func HandleExport(args Args) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: export <session-id> [path]")
	}

	app, err := Bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer app.Close()

	session, ok := app.Store.Get(args[0])
	if !ok {
		return fmt.Errorf("no session with ID %s", args[0])
	}

	path := session.ID + ".md"
	if len(args) > 1 {
		path = args[1]
	}

	if err := util.AtomicWriteFile(path, []byte(session.ExportMarkdown()), 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %q to %s\n", session.Title, path)
	return nil
}
