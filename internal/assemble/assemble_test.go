// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assemble

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

type fakeRegistry struct {
	project    string
	components map[string]*types.ComponentDefinition
}

func (r *fakeRegistry) ProjectName() string     { return r.project }
func (r *fakeRegistry) IsProject(n string) bool { return n == r.project }
func (r *fakeRegistry) Lookup(key string) (*types.ComponentDefinition, bool) {
	c, ok := r.components[key]
	return c, ok
}

func testRegistry() *fakeRegistry {
	return &fakeRegistry{
		project: "shop",
		components: map[string]*types.ComponentDefinition{
			"billing:gateway": {
				FQN:  "billing:gateway",
				Name: "gateway",
				Interface: &types.InterfaceDefinition{
					Facets: []types.InterfaceFacet{
						{Type: "api", Content: "POST /charge"},
						{Type: "network", Content: "internal only"},
					},
				},
			},
			"auth": {
				FQN:  "auth",
				Name: "auth",
				Interface: &types.InterfaceDefinition{
					Facets: []types.InterfaceFacet{
						{Type: "api", Content: "POST /verify"},
						{Type: "network", Content: "mTLS required"},
					},
				},
			},
		},
	}
}

func modifiedChange() *types.ElementChange {
	return &types.ElementChange{
		Kind:     types.ChangeModified,
		Tag:      "gateway",
		Path:     "app > billing > gateway",
		NewAttrs: map[string]string{"retries": "3", "port": "8443"},
		OldText:  "retry once",
		NewText:  "retry three times",
		Children: []*types.ElementChange{
			{Kind: types.ChangeAdded, Tag: "circuit-breaker"},
			{Kind: types.ChangeUnchanged, Tag: "timeout"},
		},
	}
}

func TestRenderTargetState(t *testing.T) {
	out := RenderTargetState(modifiedChange())

	assert.True(t, strings.HasPrefix(out, "[modified] app > billing > gateway\n"))
	assert.Contains(t, out, "  port=\"8443\"\n  retries=\"3\"\n", "attributes are sorted")
	assert.Contains(t, out, "[-once-]")
	assert.Contains(t, out, "[+three times+]")
	assert.Contains(t, out, "- [added] circuit-breaker")
	assert.Contains(t, out, "- [unchanged] timeout")
}

func TestAssemble_NilChange(t *testing.T) {
	_, err := New().Assemble(context.Background(), Input{})
	assert.Error(t, err)
}

func TestAssemble_NoManifestNoRegistry(t *testing.T) {
	p, err := New().Assemble(context.Background(), Input{
		Change:    modifiedChange(),
		ScopePath: "app > billing > gateway",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.TargetState)
	assert.Empty(t, p.CurrentFiles)
	assert.Empty(t, p.Contracts)
	assert.Contains(t, p.Prompt, "# Target state")
	assert.Contains(t, p.Prompt, "# Instructions")
	assert.NotContains(t, p.Prompt, "# Constraints", "empty sections are omitted")
	assert.NotContains(t, p.Prompt, "# Facts")
}

func TestAssemble_RefsReadWithFilters(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "internal", "gateway.go"),
		[]byte("line one\nline two\nline three\nline four\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.env"),
		[]byte("PORT=8443\nDEBUG=true\nHOST=internal\n"), 0o644))

	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Refs: []types.CodeRef{
				{File: "internal/gateway.go", Role: "modify", Lines: "2-3"},
				{File: "app.env", Role: "context", Keys: []string{"PORT", "HOST"}},
				{File: "missing.go", Role: "context"},
			},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:      modifiedChange(),
		ScopePath:   "app",
		Manifest:    m,
		ProjectRoot: root,
	})
	require.NoError(t, err)

	assert.Equal(t, "line two\nline three", p.CurrentFiles["internal/gateway.go"])
	assert.Equal(t, "PORT=8443\nHOST=internal", p.CurrentFiles["app.env"])
	_, ok := p.CurrentFiles["missing.go"]
	assert.False(t, ok, "unreadable refs are silently omitted")

	require.Len(t, p.ModifyTargets, 1)
	assert.Equal(t, "internal/gateway.go", p.ModifyTargets[0].File)
	assert.Contains(t, p.Prompt, "# Files to modify")
	assert.Contains(t, p.Prompt, "internal/gateway.go (lines 2-3)")
}

func TestAssemble_ModifyTargetMayNotExistYet(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "existing.go"),
		[]byte("package x\n"), 0o644))

	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Refs: []types.CodeRef{
				{File: "existing.go", Role: "modify"},
				{File: "internal/charge.go", Role: "modify"},
			},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:      modifiedChange(),
		Manifest:    m,
		ProjectRoot: root,
	})
	require.NoError(t, err)

	// The generation is expected to create internal/charge.go; the target
	// stays listed even though there is nothing to read yet.
	require.Len(t, p.ModifyTargets, 2)
	assert.Equal(t, "existing.go", p.ModifyTargets[0].File)
	assert.Equal(t, "internal/charge.go", p.ModifyTargets[1].File)

	_, ok := p.CurrentFiles["internal/charge.go"]
	assert.False(t, ok, "only readable refs land in the current-state map")
	assert.Contains(t, p.Prompt, "- internal/charge.go")
}

func TestAssemble_OutlineRef(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "svc.go"),
		[]byte("package svc\n\nfunc Charge(amount int) error { return nil }\n"), 0o644))

	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Refs: []types.CodeRef{{File: "svc.go", Role: "outline"}},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:      modifiedChange(),
		Manifest:    m,
		ProjectRoot: root,
	})
	require.NoError(t, err)

	outlineText := p.CurrentFiles["svc.go"]
	assert.Contains(t, outlineText, "func Charge(amount int) error")
	assert.NotContains(t, outlineText, "return nil", "outline shows signatures, not bodies")
}

func TestAssemble_ContractsAndDependencies(t *testing.T) {
	m := &types.ContextManifest{
		Scopes: []types.ContextScope{
			{
				Path: "app > billing",
				Context: types.ScopeContext{
					Interfaces: []types.InterfaceObligation{
						{Kind: types.ObligationFulfills, Component: "billing:gateway"},
						{Kind: types.ObligationDepends, Component: "auth", Facets: []string{"api"}, Usage: "token checks"},
						{Kind: types.ObligationDepends, Component: "ghost"},
					},
				},
			},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:    modifiedChange(),
		ScopePath: "app > billing > gateway",
		Manifest:  m,
		Registry:  testRegistry(),
	})
	require.NoError(t, err)

	require.Len(t, p.Contracts, 1)
	assert.Equal(t, "billing:gateway", p.Contracts[0].Source)
	assert.Equal(t, "contract to fulfill", p.Contracts[0].Purpose)
	assert.Len(t, p.Contracts[0].Facets, 2, "contracts always carry the full facet list")

	require.Len(t, p.Dependencies, 1, "unresolvable obligations are skipped")
	assert.Equal(t, "auth", p.Dependencies[0].Source)
	require.Len(t, p.Dependencies[0].Facets, 1)
	assert.Equal(t, "api", p.Dependencies[0].Facets[0].Type)
	assert.Equal(t, "token checks", p.Dependencies[0].Purpose)

	assert.Contains(t, p.Prompt, "# Interface contracts")
	assert.Contains(t, p.Prompt, "# Dependency interfaces")
}

func TestAssemble_FactsAndConstraints(t *testing.T) {
	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Facts: []types.Fact{
				{Text: "All services speak gRPC.", Source: "adr-002"},
				{Text: "No shared databases."},
			},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:      modifiedChange(),
		Manifest:    m,
		Constraints: []string{"db (locked): do not modify"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"All services speak gRPC. (adr-002)", "No shared databases."}, p.Facts)
	assert.Contains(t, p.Prompt, "- All services speak gRPC. (adr-002)")
	assert.Contains(t, p.Prompt, "# Constraints\n\n- db (locked): do not modify")
}

func TestAssemble_SectionOrder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("content\n"), 0o644))

	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Refs:  []types.CodeRef{{File: "a.txt", Role: "modify"}},
			Facts: []types.Fact{{Text: "fact"}},
			Interfaces: []types.InterfaceObligation{
				{Kind: types.ObligationFulfills, Component: "billing:gateway"},
				{Kind: types.ObligationDepends, Component: "auth"},
			},
		},
	}

	p, err := New().Assemble(context.Background(), Input{
		Change:      modifiedChange(),
		Manifest:    m,
		Registry:    testRegistry(),
		ProjectRoot: root,
		Constraints: []string{"locked"},
	})
	require.NoError(t, err)

	sections := []string{
		"# Target state",
		"# Current state",
		"# Interface contracts",
		"# Dependency interfaces",
		"# Constraints",
		"# Facts",
		"# Files to modify",
		"# Instructions",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(p.Prompt, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %s", s)
		assert.Greater(t, idx, last, "section %s out of order", s)
		last = idx
	}
}

func TestSliceLines(t *testing.T) {
	content := "a\nb\nc\nd"

	got, err := sliceLines(content, "2-3")
	require.NoError(t, err)
	assert.Equal(t, "b\nc", got)

	got, err = sliceLines(content, "4")
	require.NoError(t, err)
	assert.Equal(t, "d", got)

	got, err = sliceLines(content, "3-99")
	require.NoError(t, err)
	assert.Equal(t, "c\nd", got, "over-long ranges clamp to EOF")

	_, err = sliceLines(content, "0-2")
	assert.Error(t, err)
	_, err = sliceLines(content, "9")
	assert.Error(t, err)
	_, err = sliceLines(content, "x-2")
	assert.Error(t, err)
}

func TestFilterKeys(t *testing.T) {
	content := "PORT = 8443\n# comment\nHOST=internal\nDEBUG=true"

	got := filterKeys(content, []string{"PORT", "DEBUG"})
	assert.Equal(t, "PORT = 8443\nDEBUG=true", got, "keys are trimmed before matching")
}
