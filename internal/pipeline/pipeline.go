// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline wires the internal components into the generation
// lifecycle: read the document, diff against HEAD, assemble a prompt per
// changed element, generate, write files, verify, retry, commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/petar-djukic/cdml-coder/internal/assemble"
	"github.com/petar-djukic/cdml-coder/internal/cdml"
	"github.com/petar-djukic/cdml-coder/internal/diff"
	gitpkg "github.com/petar-djukic/cdml-coder/internal/git"
	"github.com/petar-djukic/cdml-coder/internal/llm"
	"github.com/petar-djukic/cdml-coder/internal/manifest"
	"github.com/petar-djukic/cdml-coder/internal/project"
	"github.com/petar-djukic/cdml-coder/internal/respond"
	"github.com/petar-djukic/cdml-coder/internal/verify"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// Deps holds injected dependencies for the runner.
type Deps struct {
	Generator  llm.Generator // Generation backend (required)
	WorkDir    string        // Repository working directory
	DocPath    string        // Source document, relative to WorkDir
	MaxRetries int           // Verification retry budget
	CheckCmd   string        // Check command run after writes; empty disables
	NoGit      bool          // Skip all git operations
	Logger     *zap.Logger
}

// RunResult holds the outcome of a Runner.Run invocation. This is the
// internal result type; pkg/coder converts it to the public Result.
type RunResult struct {
	ModifiedFiles []string
	Errors        []string
	TokensUsed    types.TokenUsage
	Retries       int
	Success       bool
}

// usageReporter is implemented by generators that track token usage.
type usageReporter interface {
	CumulativeUsage() types.TokenUsage
}

// Runner orchestrates the generation lifecycle.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Runner{deps: deps}
}

// Run executes the full lifecycle for one document revision.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	log := r.deps.Logger

	if r.deps.Generator == nil {
		return result, fmt.Errorf("no generator configured")
	}

	// Step 1: Handle git (dirty files).
	var gitRepo *gitpkg.Repo
	if !r.deps.NoGit {
		repo, err := gitpkg.Open(gitpkg.Config{
			WorkDir:     r.deps.WorkDir,
			AutoCommit:  true,
			DirtyCommit: true,
		})
		if err == nil {
			gitRepo = repo
		} else {
			log.Debug("running without git", zap.Error(err))
		}
	}

	// Step 2: Read the current document.
	docFull := filepath.Join(r.deps.WorkDir, r.deps.DocPath)
	newRaw, err := os.ReadFile(docFull)
	if err != nil {
		return result, fmt.Errorf("reading document: %w", err)
	}
	newText := string(newRaw)

	// Step 3: Retrieve the old revision and commit remaining dirty files.
	// The old revision is captured before the dirty commit so hand edits to
	// the document since the last cdml-coder run are part of the diff.
	oldText := ""
	if gitRepo != nil {
		content, ok, err := gitRepo.FileAtHead(r.deps.DocPath)
		if err != nil {
			return result, fmt.Errorf("reading document at HEAD: %w", err)
		}
		if ok {
			oldText = content
		}
		if err := gitRepo.HandleDirty(); err != nil {
			return result, fmt.Errorf("handling dirty files: %w", err)
		}
	}

	// Step 4: Diff. No changes means nothing to generate.
	diffResult := diff.Diff(oldText, newText)
	if !diffResult.HasChanges {
		log.Info("document unchanged, nothing to do")
		result.Success = true
		return result, nil
	}
	log.Info("document changed",
		zap.Int("added", diffResult.Summary.Added),
		zap.Int("removed", diffResult.Summary.Removed),
		zap.Int("modified", diffResult.Summary.Modified))

	// Step 5: Load the side-car manifest; absent manifest means no context.
	var man *types.ContextManifest
	manifestPath := strings.TrimSuffix(docFull, ".cdml") + ".context.cdml"
	if raw, err := os.ReadFile(manifestPath); err == nil {
		if m, err := manifest.Parse(string(raw)); err == nil {
			man = m
		} else {
			log.Debug("ignoring malformed manifest", zap.Error(err))
		}
	}

	// Step 6: Load the project registry; a missing project.cdml is fine.
	var registry types.Registry
	proj, err := project.Load(ctx, r.deps.WorkDir, log)
	if err == nil {
		registry = proj
	} else if !errors.Is(err, project.ErrNoProject) {
		return result, fmt.Errorf("loading project: %w", err)
	}

	// Step 7: Collect locked-element descriptions from the new document.
	constraints := lockedConstraints(newText)

	// Step 8: Generate per changed top-level element.
	assembler := assemble.New()
	var lastPrompt string
	for _, change := range diffResult.Changes {
		if change.Kind == types.ChangeUnchanged {
			continue
		}
		if change.Kind == types.ChangeRemoved {
			// Removed elements have no target state to generate toward.
			log.Info("element removed, skipping generation", zap.String("path", change.Path))
			continue
		}

		prompt, err := assembler.Assemble(ctx, assemble.Input{
			Change:      change,
			ScopePath:   change.Path,
			Manifest:    man,
			Registry:    registry,
			ProjectRoot: r.deps.WorkDir,
			Constraints: constraints,
			Logger:      log,
		})
		if err != nil {
			return result, fmt.Errorf("assembling prompt for %s: %w", change.Path, err)
		}
		lastPrompt = prompt.Prompt

		written, errs := r.generateAndWrite(ctx, prompt.Prompt)
		result.ModifiedFiles = append(result.ModifiedFiles, written...)
		for _, e := range errs {
			result.Errors = append(result.Errors, e.Error())
		}
	}

	// Step 9: Verify and retry with error feedback.
	vres := verify.Run(ctx, verify.Config{WorkDir: r.deps.WorkDir, Cmd: r.deps.CheckCmd})
	for !vres.OK && result.Retries < r.deps.MaxRetries {
		result.Retries++
		log.Info("verification failed, retrying", zap.Int("attempt", result.Retries))

		retryPrompt := lastPrompt + "\n\n## Errors\n\nThe previous attempt failed verification:\n\n```\n" +
			vres.Output + "\n```\n\nFix the errors and return the corrected files.\n"

		written, errs := r.generateAndWrite(ctx, retryPrompt)
		result.ModifiedFiles = append(result.ModifiedFiles, written...)
		for _, e := range errs {
			result.Errors = append(result.Errors, e.Error())
		}

		vres = verify.Run(ctx, verify.Config{WorkDir: r.deps.WorkDir, Cmd: r.deps.CheckCmd})
	}
	if !vres.OK {
		result.Errors = append(result.Errors, "verification failed: "+vres.Output)
	}
	result.Success = vres.OK && len(result.Errors) == 0

	result.ModifiedFiles = dedupe(result.ModifiedFiles)

	// Step 10: Token usage.
	if u, ok := r.deps.Generator.(usageReporter); ok {
		result.TokensUsed = u.CumulativeUsage()
	}

	// Step 11: Auto-commit on success, the document included.
	if result.Success && gitRepo != nil && len(result.ModifiedFiles) > 0 {
		files := append([]string{r.deps.DocPath}, result.ModifiedFiles...)
		msg := gitpkg.GenerateMessage(diffResult, result.ModifiedFiles)
		if err := gitRepo.AutoCommit(files, msg); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("auto-commit failed: %v", err))
		}
	}

	return result, nil
}

// generateAndWrite runs one generation round and writes the returned files.
func (r *Runner) generateAndWrite(ctx context.Context, prompt string) ([]string, []error) {
	response, err := r.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, []error{fmt.Errorf("generation failed: %w", err)}
	}

	parsed, err := respond.Parse(response)
	if err != nil {
		return nil, []error{fmt.Errorf("parsing response: %w", err)}
	}

	var errs []error
	for _, pe := range parsed.ParseErrors {
		errs = append(errs, pe)
	}

	written, writeErrs := respond.WriteFiles(r.deps.WorkDir, parsed.Files)
	errs = append(errs, writeErrs...)
	return written, errs
}

// lockedConstraints walks the document and describes every element marked
// lock="true" so the assembler can forbid touching it.
func lockedConstraints(docText string) []string {
	doc := cdml.Parse(docText)
	var out []string
	var walk func(el *types.Element, path string)
	walk = func(el *types.Element, path string) {
		for _, c := range el.Children {
			childPath := c.Tag
			if path != "" {
				childPath = path + " > " + c.Tag
			}
			if c.AttrOr("lock", "") == "true" {
				out = append(out, childPath+" is locked: leave it exactly as it is")
			}
			walk(c, childPath)
		}
	}
	walk(doc, "")
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
