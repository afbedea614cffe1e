// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

const maxSubjectLength = 72

// GenerateMessage creates a commit message from the structural diff that
// drove the generation run and the list of files written. The subject verb
// follows the dominant change kind; the body lists the written files.
func GenerateMessage(result *types.DiffResult, modifiedFiles []string) string {
	subject := buildSubject(result)
	body := buildBody(modifiedFiles)

	msg := subject
	if body != "" {
		msg += "\n\n" + body
	}
	msg += "\n\n" + coAuthorTrailer

	return msg
}

// buildSubject creates the first line of the commit message, such as
// "add billing > gateway" or "update app, db (3 changes)".
func buildSubject(result *types.DiffResult) string {
	verb := "update"
	if result != nil {
		switch s := result.Summary; {
		case s.Added > 0 && s.Removed == 0 && s.Modified == 0:
			verb = "add"
		case s.Removed > 0 && s.Added == 0 && s.Modified == 0:
			verb = "remove"
		}
	}

	targets := topLevelTargets(result)
	subject := verb
	if len(targets) > 0 {
		subject = fmt.Sprintf("%s %s", verb, strings.Join(targets, ", "))
	}
	if result != nil {
		if total := result.Summary.Added + result.Summary.Removed + result.Summary.Modified; total > 1 {
			subject = fmt.Sprintf("%s (%d changes)", subject, total)
		}
	}

	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}
	return subject
}

// topLevelTargets names the changed top-level elements, in document order.
func topLevelTargets(result *types.DiffResult) []string {
	if result == nil {
		return nil
	}
	var out []string
	for _, c := range result.Changes {
		if c.Kind != types.ChangeUnchanged {
			out = append(out, c.Tag)
		}
	}
	return out
}

// buildBody creates the commit body listing written files.
func buildBody(modifiedFiles []string) string {
	if len(modifiedFiles) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("Generated files:\n")
	for _, f := range modifiedFiles {
		buf.WriteString(fmt.Sprintf("- %s\n", f))
	}
	return buf.String()
}
