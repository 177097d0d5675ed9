package meta

import (
	"fmt"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/versioning"
)

// CheckDeps verifies that every depends record in the tree is satisfied
// by some provides record. Unsatisfied dependencies are reported
// per-node; the result is true only when all are satisfied.
func CheckDeps(coll *collection.Collection, rep Reporter) bool {
	packages := map[string]map[string]bool{}
	collectProvides(coll.RootNode, packages)
	return checkDepends(coll.RootNode, packages, rep)
}

// collectProvides indexes package name to its declared version set. An
// empty version marks a versionless provide.
func collectProvides(node *collection.Node, packages map[string]map[string]bool) {
	for _, rec := range node.GetMeta(collection.TypeProvides) {
		if rec.Name == "" {
			continue
		}
		versions, ok := packages[rec.Name]
		if !ok {
			versions = map[string]bool{}
			packages[rec.Name] = versions
		}
		versions[rec.Version] = true
	}

	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			collectProvides(node.Children[name], packages)
		}
	}
}

func checkDepends(node *collection.Node, packages map[string]map[string]bool, rep Reporter) bool {
	ok := true

	for _, rec := range node.GetMeta(collection.TypeDepends) {
		if rec.Name == "" {
			continue
		}
		if !satisfied(rec, packages) {
			ok = false
			rep.Status(node.PrettyPath(), "DEPENDS", formatDepends(rec))
		}
	}

	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			if !checkDepends(node.Children[name], packages, rep) {
				ok = false
			}
		}
	}

	return ok
}

// satisfied resolves one dependency. A versionless provide satisfies
// only an unbounded dependency; within bounds, a non-numeric version
// component fails closed.
func satisfied(dep collection.Record, packages map[string]map[string]bool) bool {
	versions, known := packages[dep.Name]
	if !known {
		return false
	}
	if dep.MinVersion == "" && dep.MaxVersion == "" {
		return true
	}

	for version := range versions {
		if version == "" {
			continue
		}
		if versioning.InRange(version, dep.MinVersion, dep.MaxVersion) {
			return true
		}
	}
	return false
}

func formatDepends(dep collection.Record) string {
	switch {
	case dep.MaxVersion != "":
		return fmt.Sprintf("%s:%s:%s", dep.Name, dep.MinVersion, dep.MaxVersion)
	case dep.MinVersion != "":
		return fmt.Sprintf("%s:%s", dep.Name, dep.MinVersion)
	default:
		return dep.Name
	}
}
