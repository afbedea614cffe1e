// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// AssembledPrompt is the complete payload handed to the generation backend
// for one element change. It is constructed fresh per assembly call and is
// not persisted.
type AssembledPrompt struct {
	TargetState   string               // Text rendering of the diff change
	CurrentFiles  map[string]string    // File path → current content snapshot
	Contracts     []ProjectedInterface // Interfaces the generated code must fulfill
	Dependencies  []ProjectedInterface // Facet-filtered interfaces the code may rely on
	Constraints   []string             // Locked-element descriptions supplied by the caller
	Facts         []string             // Architectural facts in resolution order
	ModifyTargets []CodeRef            // Files the generated code is expected to modify
	Prompt        string               // Fully rendered prompt text
}
