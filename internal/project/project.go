// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package project discovers a project's components and builds the registry
// that FQN resolution runs against. A project is rooted by a project.cdml
// file naming the project and declaring where component files live.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/cdml-coder/internal/cdml"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// ProjectFileName is the marker file that roots a project.
const ProjectFileName = "project.cdml"

// ErrNoProject is returned when the root directory has no project.cdml.
var ErrNoProject = errors.New("no project.cdml found")

// componentParseWorkers bounds concurrent component file parsing.
const componentParseWorkers = 8

// Project is a loaded component registry. It implements types.Registry.
type Project struct {
	Name string
	Root string

	mu         sync.RWMutex
	components map[string]*types.ComponentDefinition
}

var _ types.Registry = (*Project)(nil)

// componentsDecl is one <components dir= pattern=> declaration.
type componentsDecl struct {
	Dir     string
	Pattern string
}

// Load reads project.cdml under root, discovers the declared component
// files, and parses them concurrently into a registry. Component files
// that fail to parse are skipped with a debug log; a missing or unnamed
// project.cdml is a loud error.
func Load(ctx context.Context, root string, logger *zap.Logger) (*Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, err := os.ReadFile(filepath.Join(root, ProjectFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProject
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectFileName, err)
	}

	doc := cdml.Parse(string(raw))
	projEl := doc.FindChild("project")
	if projEl == nil {
		return nil, fmt.Errorf("%s has no project element", ProjectFileName)
	}
	name := projEl.AttrOr("name", "")
	if name == "" {
		return nil, fmt.Errorf("%s: project element has no name", ProjectFileName)
	}

	p := &Project{
		Name:       name,
		Root:       root,
		components: make(map[string]*types.ComponentDefinition),
	}

	decls := parseDecls(projEl)
	files, aspects := discoverFiles(root, decls, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(componentParseWorkers)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				logger.Debug("skipping unreadable component file",
					zap.String("file", file), zap.Error(err))
				return nil
			}
			p.registerFile(file, string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, file := range aspects {
		p.linkAspectFile(file, logger)
	}

	logger.Debug("project loaded",
		zap.String("project", name),
		zap.Int("components", len(p.components)))
	return p, nil
}

func parseDecls(projEl *types.Element) []componentsDecl {
	var decls []componentsDecl
	for _, el := range projEl.FindChildren("components") {
		decls = append(decls, componentsDecl{
			Dir:     el.AttrOr("dir", "."),
			Pattern: el.AttrOr("pattern", "*.cdml"),
		})
	}
	if len(decls) == 0 {
		decls = append(decls, componentsDecl{Dir: ".", Pattern: "*.cdml"})
	}
	return decls
}

// discoverFiles walks the declared directories and splits matches into
// component files and aspect files. A filename whose stem contains a dot
// (gateway.infra.cdml) is an aspect file.
func discoverFiles(root string, decls []componentsDecl, logger *zap.Logger) (components, aspects []string) {
	seen := make(map[string]bool)
	for _, decl := range decls {
		dir := filepath.Join(root, decl.Dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug("skipping unreadable components dir",
				zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if name == ProjectFileName {
				continue
			}
			matched, err := path.Match(decl.Pattern, name)
			if err != nil || !matched {
				continue
			}
			full := filepath.Join(dir, name)
			if seen[full] {
				continue
			}
			seen[full] = true
			if isAspectFile(name) {
				aspects = append(aspects, full)
			} else {
				components = append(components, full)
			}
		}
	}
	return components, aspects
}

func isAspectFile(name string) bool {
	stem := strings.TrimSuffix(name, ".cdml")
	return strings.Contains(stem, ".")
}

// registerFile parses one component file and registers every component
// element in it, nested components under colon-joined keys.
func (p *Project) registerFile(file, content string) {
	doc := cdml.Parse(content)
	for _, el := range doc.FindChildren("component") {
		p.registerComponent(el, nil, file)
	}
}

func (p *Project) registerComponent(el *types.Element, ancestors []string, file string) {
	name := el.AttrOr("name", "")
	if name == "" {
		return
	}
	chain := append(append([]string(nil), ancestors...), name)
	key := strings.Join(chain, ":")

	comp := &types.ComponentDefinition{
		FQN:         key,
		Name:        name,
		DisplayName: el.AttrOr("display-name", name),
		SourceFile:  file,
	}
	if ifaceEl := el.FindChild("interface"); ifaceEl != nil {
		comp.Interface = parseInterface(ifaceEl)
	}
	if consEl := el.FindChild("constraints"); consEl != nil {
		comp.Constraints = &types.ConstraintDefinition{
			OS:        consEl.AttrOr("os", ""),
			Arch:      consEl.AttrOr("arch", ""),
			Distro:    consEl.AttrOr("distro", ""),
			Resources: consEl.AttrOr("resources", ""),
			Ports:     consEl.AttrOr("ports", ""),
			Services:  consEl.AttrOr("services", ""),
		}
	}
	for _, depEl := range el.FindChildren("dependency") {
		comp.Dependencies = append(comp.Dependencies, types.DependencyDefinition{
			Target: depEl.AttrOr("target", depEl.DirectText()),
			Facets: splitList(depEl.AttrOr("facets", "")),
			Usage:  depEl.AttrOr("usage", ""),
		})
	}
	if implEl := el.FindChild("implementation"); implEl != nil {
		comp.Implementation = implementationPayload(implEl)
	}

	p.mu.Lock()
	p.components[key] = comp
	p.components[p.Name+":"+key] = comp
	p.mu.Unlock()

	for _, child := range el.FindChildren("component") {
		p.registerComponent(child, chain, file)
	}
}

// parseInterface reads an interface element. Every child that is not a
// structural keyword becomes a facet: its tag is the facet type, its
// content the facet body.
func parseInterface(el *types.Element) *types.InterfaceDefinition {
	iface := &types.InterfaceDefinition{
		Implements: splitList(el.AttrOr("implements", "")),
		Extends:    splitList(el.AttrOr("extends", "")),
	}
	for _, c := range el.Children {
		iface.Facets = append(iface.Facets, types.InterfaceFacet{
			Type:    c.Tag,
			Content: facetContent(c),
		})
	}
	return iface
}

func facetContent(el *types.Element) string {
	if len(el.Children) == 0 {
		return el.DirectText()
	}
	var parts []string
	if t := el.DirectText(); t != "" {
		parts = append(parts, t)
	}
	for _, c := range el.Children {
		parts = append(parts, cdml.Serialize(c))
	}
	return strings.Join(parts, "\n")
}

// implementationPayload keeps the implementation subtree as an opaque
// serialized string. Nothing downstream interprets it; dependents never
// see it at all.
func implementationPayload(el *types.Element) string {
	if len(el.Children) == 0 {
		return el.DirectText()
	}
	var parts []string
	for _, c := range el.Children {
		parts = append(parts, cdml.Serialize(c))
	}
	return strings.Join(parts, "\n")
}

// linkAspectFile attaches an aspect file to its owning component. The
// owner comes from the root element's component attribute, falling back
// to the first filename segment; the aspect type from the type attribute,
// falling back to a filename segment that names a known aspect kind.
func (p *Project) linkAspectFile(file string, logger *zap.Logger) {
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Debug("skipping unreadable aspect file",
			zap.String("file", file), zap.Error(err))
		return
	}
	doc := cdml.Parse(string(data))
	var root *types.Element
	if len(doc.Children) > 0 {
		root = doc.Children[0]
	}

	stem := strings.TrimSuffix(filepath.Base(file), ".cdml")
	segments := strings.Split(stem, ".")

	owner := ""
	aspectType := ""
	if root != nil {
		owner = root.AttrOr("component", "")
		aspectType = root.AttrOr("type", "")
	}
	if owner == "" {
		owner = segments[0]
	}
	if aspectType == "" {
		for _, seg := range segments[1:] {
			if types.AspectKinds[seg] {
				aspectType = seg
				break
			}
		}
	}
	if aspectType == "" || !types.AspectKinds[aspectType] {
		logger.Debug("skipping aspect file with no recognized type",
			zap.String("file", file))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	comp, ok := p.components[owner]
	if !ok {
		logger.Debug("skipping aspect for unknown component",
			zap.String("file", file), zap.String("component", owner))
		return
	}
	comp.Aspects = append(comp.Aspects, types.AspectDefinition{
		Type:      aspectType,
		File:      file,
		Component: comp.FQN,
	})
}

// ProjectName returns the project's name.
func (p *Project) ProjectName() string { return p.Name }

// IsProject reports whether name names this project. Cross-project
// resolution is out of scope; only the current project is known.
func (p *Project) IsProject(name string) bool { return name == p.Name }

// Lookup returns the component registered under key.
func (p *Project) Lookup(key string) (*types.ComponentDefinition, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.components[key]
	return c, ok
}

// Components returns all registered components keyed by their unprefixed
// FQN, for listing and debugging.
func (p *Project) Components() map[string]*types.ComponentDefinition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]*types.ComponentDefinition, len(p.components))
	for key, c := range p.components {
		if !strings.HasPrefix(key, p.Name+":") {
			out[key] = c
		}
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
