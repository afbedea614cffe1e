// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

const sampleManifest = `<context-manifest for-file="app.cdml" auto-generated="true">
  <global>
    <ref file="docs/architecture.md" role="reference"/>
    <fact source="adr-002">All services speak gRPC internally.</fact>
  </global>
  <scope path="app">
    <ref file="cmd/app/main.go" role="modify" lines="10-40"/>
    <tool name="shell" policy="deny"/>
  </scope>
  <scope path="app &gt; billing">
    <ref file="internal/billing/billing.go" role="modify" keys="Charge, Refund"/>
    <fulfills component="billing:gateway"/>
    <depends component="auth" facets="network,api" usage="token checks"/>
  </scope>
</context-manifest>`

func TestParse(t *testing.T) {
	m, err := Parse(sampleManifest)
	require.NoError(t, err)

	assert.Equal(t, "app.cdml", m.ForFile)
	assert.True(t, m.AutoGenerated)

	require.Len(t, m.Global.Refs, 1)
	assert.Equal(t, "docs/architecture.md", m.Global.Refs[0].File)
	require.Len(t, m.Global.Facts, 1)
	assert.Equal(t, "All services speak gRPC internally.", m.Global.Facts[0].Text)
	assert.Equal(t, "adr-002", m.Global.Facts[0].Source)

	require.Len(t, m.Scopes, 2)
	assert.Equal(t, "app", m.Scopes[0].Path)
	assert.Equal(t, "10-40", m.Scopes[0].Context.Refs[0].Lines)
	require.Len(t, m.Scopes[0].Context.Tools, 1)
	assert.Equal(t, "deny", m.Scopes[0].Context.Tools[0].Policy)

	billing := m.Scopes[1].Context
	assert.Equal(t, []string{"Charge", "Refund"}, billing.Refs[0].Keys, "keys list is trimmed")
	require.Len(t, billing.Interfaces, 2)
	assert.Equal(t, types.ObligationFulfills, billing.Interfaces[0].Kind)
	assert.Equal(t, "billing:gateway", billing.Interfaces[0].Component)
	assert.Equal(t, types.ObligationDepends, billing.Interfaces[1].Kind)
	assert.Equal(t, []string{"network", "api"}, billing.Interfaces[1].Facets)
	assert.Equal(t, "token checks", billing.Interfaces[1].Usage)
}

func TestParse_NotAManifest(t *testing.T) {
	_, err := Parse(`<app name="shop"/>`)
	assert.ErrorIs(t, err, ErrNotManifest)
}

func TestParse_MissingOptionalAttrsDefaultEmpty(t *testing.T) {
	m, err := Parse(`<context-manifest><global><ref file="a.go"/></global></context-manifest>`)
	require.NoError(t, err)
	assert.Empty(t, m.ForFile)
	assert.False(t, m.AutoGenerated)
	assert.Empty(t, m.Global.Refs[0].Role)
	assert.Nil(t, m.Global.Refs[0].Keys)
}

func TestRoundTrip(t *testing.T) {
	m, err := Parse(sampleManifest)
	require.NoError(t, err)

	again, err := Parse(Serialize(m))
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestResolveScope_PrefixChainOrder(t *testing.T) {
	m := &types.ContextManifest{
		Global: types.ScopeContext{
			Refs: []types.CodeRef{{File: "g"}},
		},
		Scopes: []types.ContextScope{
			{Path: "app > billing", Context: types.ScopeContext{Refs: []types.CodeRef{{File: "r2"}}}},
			{Path: "app", Context: types.ScopeContext{Refs: []types.CodeRef{{File: "r1"}}}},
			{Path: "app > auth", Context: types.ScopeContext{Refs: []types.CodeRef{{File: "other"}}}},
		},
	}

	got := ResolveScope(m, "app > billing")

	files := make([]string, 0, len(got.Refs))
	for _, r := range got.Refs {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{"g", "r1", "r2"}, files, "global first, then general to specific")
}

func TestResolveScope_ExactPrefixOnly(t *testing.T) {
	m := &types.ContextManifest{
		Scopes: []types.ContextScope{
			{Path: "app", Context: types.ScopeContext{Facts: []types.Fact{{Text: "yes"}}}},
			{Path: "application", Context: types.ScopeContext{Facts: []types.Fact{{Text: "no"}}}},
			{Path: "billing", Context: types.ScopeContext{Facts: []types.Fact{{Text: "no"}}}},
		},
	}

	got := ResolveScope(m, "app > billing")
	require.Len(t, got.Facts, 1, "segment prefixes match, string prefixes do not")
	assert.Equal(t, "yes", got.Facts[0].Text)
}

func TestResolveScope_NoMatchesYieldsGlobalOnly(t *testing.T) {
	m := &types.ContextManifest{
		Global: types.ScopeContext{Facts: []types.Fact{{Text: "g"}}},
		Scopes: []types.ContextScope{
			{Path: "other", Context: types.ScopeContext{Facts: []types.Fact{{Text: "x"}}}},
		},
	}

	got := ResolveScope(m, "app > billing > retry")
	require.Len(t, got.Facts, 1)
	assert.Equal(t, "g", got.Facts[0].Text)
}

func TestScopeSegments(t *testing.T) {
	assert.Equal(t, []string{"app", "billing"}, ScopeSegments(" app >  billing "))
	assert.Nil(t, ScopeSegments(""))
}
