// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

func TestDiff_Idempotence(t *testing.T) {
	doc := `<app name="shop">
  <service port="8080">gateway</service>
  <db engine="postgres"/>
</app>`

	result := Diff(doc, doc)

	assert.False(t, result.HasChanges)
	assert.Zero(t, result.Summary.Added)
	assert.Zero(t, result.Summary.Removed)
	assert.Zero(t, result.Summary.Modified)
	assertAllUnchanged(t, result.Changes)
}

func TestDiff_WhitespaceInsensitive(t *testing.T) {
	old := `<app><note>keep   it
		simple</note></app>`
	new := `<app><note>keep it simple</note></app>`

	result := Diff(old, new)
	assert.False(t, result.HasChanges)
}

func TestDiff_AttributeChange(t *testing.T) {
	result := Diff(`<svc replicas="1" name="api"/>`, `<svc name="api" replicas="3"/>`)

	require.Len(t, result.Changes, 1)
	c := result.Changes[0]
	assert.Equal(t, types.ChangeModified, c.Kind)
	assert.Equal(t, "svc", c.Path)
	assert.Equal(t, map[string]string{"replicas": "1", "name": "api"}, c.OldAttrs)
	assert.Equal(t, map[string]string{"replicas": "3", "name": "api"}, c.NewAttrs)
	assert.Equal(t, types.ChangeSummary{Modified: 1}, result.Summary)
}

func TestDiff_AttributeOrderIrrelevant(t *testing.T) {
	result := Diff(`<svc a="1" b="2"/>`, `<svc b="2" a="1"/>`)
	assert.False(t, result.HasChanges)
}

func TestDiff_TextChange(t *testing.T) {
	result := Diff(`<note>old words</note>`, `<note>new words</note>`)

	c := result.Changes[0]
	assert.Equal(t, types.ChangeModified, c.Kind)
	assert.Equal(t, "old words", c.OldText)
	assert.Equal(t, "new words", c.NewText)
	assert.Nil(t, c.OldAttrs, "attributes did not change")
}

func TestDiff_SimpleAppend(t *testing.T) {
	result := Diff(`<app><a/></app>`, `<app><a/><b/></app>`)

	require.Len(t, result.Changes, 1)
	app := result.Changes[0]
	assert.Equal(t, types.ChangeModified, app.Kind)
	assert.Equal(t, "app", app.Path)

	require.Len(t, app.Children, 2)
	assert.Equal(t, types.ChangeUnchanged, app.Children[0].Kind)
	assert.Equal(t, "a", app.Children[0].Tag)
	assert.Equal(t, types.ChangeAdded, app.Children[1].Kind)
	assert.Equal(t, "b", app.Children[1].Tag)
	assert.Equal(t, "app > b", app.Children[1].Path)

	assert.Equal(t, types.ChangeSummary{Added: 1, Modified: 1, Unchanged: 1}, result.Summary)
}

// Inserting at index 0 shifts every later sibling onto a different
// counterpart: positional alignment yields cascading remove/add pairs,
// not a single clean insertion.
func TestDiff_InsertionCascade(t *testing.T) {
	result := Diff(`<app><a/><b/></app>`, `<app><x/><a/><b/></app>`)

	require.Len(t, result.Changes, 1)
	app := result.Changes[0]
	assert.Equal(t, types.ChangeModified, app.Kind)

	kinds := make([]string, 0, len(app.Children))
	for _, c := range app.Children {
		kinds = append(kinds, string(c.Kind)+":"+c.Tag)
	}
	want := []string{
		"removed:a", "added:x", // index 0: a vs x
		"removed:b", "added:a", // index 1: b vs a
		"added:b", // index 2: only new side
	}
	assert.Empty(t, cmp.Diff(want, kinds))

	assert.Equal(t, 2, result.Summary.Removed)
	assert.Equal(t, 3, result.Summary.Added)
	assert.Equal(t, 1, result.Summary.Modified, "only the container is modified")
}

func TestDiff_TagChangeIsRemovePlusAdd(t *testing.T) {
	result := Diff(`<app><db port="5432"/></app>`, `<app><cache port="5432"/></app>`)

	app := result.Changes[0]
	require.Len(t, app.Children, 2)
	removed, added := app.Children[0], app.Children[1]
	assert.Equal(t, types.ChangeRemoved, removed.Kind)
	assert.Equal(t, "db", removed.Tag)
	assert.Equal(t, map[string]string{"port": "5432"}, removed.OldAttrs)
	assert.Equal(t, types.ChangeAdded, added.Kind)
	assert.Equal(t, "cache", added.Tag)
	assert.Equal(t, map[string]string{"port": "5432"}, added.NewAttrs)
}

func TestDiff_AddedSubtreeUniformlyAdded(t *testing.T) {
	result := Diff(`<app/>`, `<app><svc><db port="1"/><cache/></svc></app>`)

	app := result.Changes[0]
	require.Len(t, app.Children, 1)
	svc := app.Children[0]
	assert.Equal(t, types.ChangeAdded, svc.Kind)
	require.Len(t, svc.Children, 2)
	for _, c := range svc.Children {
		assert.Equal(t, types.ChangeAdded, c.Kind)
	}
	assert.Equal(t, "app > svc > db", svc.Children[0].Path)
}

func TestDiff_StructuralSymmetry(t *testing.T) {
	a := `<app><svc><db/></svc></app>`
	b := `<app><svc><db/><cache/></svc></app>`

	forward := Diff(a, b)
	backward := Diff(b, a)

	addedPaths := collectPaths(forward.Changes, types.ChangeAdded)
	removedPaths := collectPaths(backward.Changes, types.ChangeRemoved)
	assert.Empty(t, cmp.Diff(addedPaths, removedPaths))
	assert.Equal(t, forward.Summary.Added, backward.Summary.Removed)
}

func TestChangedElements_TopDownDocumentOrder(t *testing.T) {
	result := Diff(
		`<app><svc><db port="1"/></svc><note>x</note></app>`,
		`<app><svc><db port="2"/></svc><note>y</note></app>`,
	)

	changed := ChangedElements(result)
	paths := make([]string, 0, len(changed))
	for _, c := range changed {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"app", "app > svc", "app > svc > db", "app > note"}, paths)
}

func TestRenderTextDelta(t *testing.T) {
	out := RenderTextDelta("retry twice on failure", "retry five times on failure")
	assert.Contains(t, out, "on failure")
	assert.Contains(t, out, "[-")
	assert.Contains(t, out, "[+")

	assert.Equal(t, "same", RenderTextDelta("same", "same"))
}

func assertAllUnchanged(t *testing.T, changes []*types.ElementChange) {
	t.Helper()
	for _, c := range changes {
		assert.Equal(t, types.ChangeUnchanged, c.Kind, "path %s", c.Path)
		assertAllUnchanged(t, c.Children)
	}
}

func collectPaths(changes []*types.ElementChange, kind types.ChangeKind) []string {
	var out []string
	for _, c := range changes {
		if c.Kind == kind {
			out = append(out, c.Path)
		}
		out = append(out, collectPaths(c.Children, kind)...)
	}
	return out
}
