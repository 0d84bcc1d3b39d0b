package document

import (
	"os"

	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/paths"
)

// ResolvedSet is the flattened result of walking a root document's link
// graph: every reachable document exactly once, their entries in
// deterministic discovery order, and the effective configuration.
type ResolvedSet struct {
	// RootPath is the canonical path of the root document.
	RootPath string

	// Config is the root document's [config] table merged over defaults,
	// or pure defaults when the root carries none.
	Config GlobalConfig

	// Documents maps canonical path to the parsed document.
	Documents map[string]*Document

	// Order lists canonical paths in breadth-first discovery order,
	// root first. Files, Vars and Hooks follow this order.
	Order []string

	Files []FileEntry
	Vars  []VarDecl
	Hooks []HookDecl

	// Warnings collects non-fatal findings, such as an ignored [config]
	// table in a non-root document.
	Warnings []string
}

// Resolve walks the link graph from rootPath. The traversal is an
// iterative work queue keyed by canonical path: a document reached twice,
// through a cycle or through a different relative spelling, parses once
// and contributes its entries once. Any unreadable or malformed linked
// document is fatal.
func Resolve(rootPath string) (*ResolvedSet, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "determining working directory")
	}

	canonicalRoot, err := paths.Canonical(rootPath, cwd)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkResolve, "locating root document %s", rootPath)
	}

	set := &ResolvedSet{
		RootPath:  canonicalRoot,
		Config:    DefaultConfig(),
		Documents: make(map[string]*Document),
	}

	queue := []string{canonicalRoot}
	queued := map[string]bool{canonicalRoot: true}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		if _, seen := set.Documents[path]; seen {
			continue
		}

		doc, err := Parse(path)
		if err != nil {
			return nil, err
		}
		set.Documents[path] = doc
		set.Order = append(set.Order, path)

		if doc.Config != nil {
			if path == canonicalRoot {
				set.Config = *doc.Config
			} else {
				warning := "ignoring [config] in " + path + ": only the root document's config is honored"
				set.Warnings = append(set.Warnings, warning)
				log.Warn().Str("path", path).Msg("Ignoring [config] table in non-root document")
			}
		}

		for _, link := range doc.Links {
			linked, err := paths.Canonical(link.File, doc.Dir)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrLinkResolve,
					"resolving link %q in document %s", link.File, path)
			}
			if _, seen := set.Documents[linked]; !seen && !queued[linked] {
				queue = append(queue, linked)
				queued[linked] = true
			}
		}
	}

	for _, path := range set.Order {
		doc := set.Documents[path]
		set.Files = append(set.Files, doc.Files...)
		set.Vars = append(set.Vars, doc.Vars...)
		set.Hooks = append(set.Hooks, doc.Hooks...)
	}

	log.Info().
		Str("root", canonicalRoot).
		Int("documents", len(set.Order)).
		Int("files", len(set.Files)).
		Int("vars", len(set.Vars)).
		Int("hooks", len(set.Hooks)).
		Msg("Link graph resolved")

	return set, nil
}
