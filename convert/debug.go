package convert

import (
	"path"
	"sort"

	"github.com/maruel/natural"

	"wmlconv/opc"
	"wmlconv/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// packageTree returns a readable listing of package parts and relationships,
// used by parts command and stored in debug reports.
func packageTree(pkg *opc.Package) string {
	tw := treeWriter{debug.NewTreeWriter()}

	tw.Line(0, "Package kind: %s", pkg.Detect())
	if main, err := pkg.MainDocument(); err == nil {
		tw.Line(0, "Main document: %q", main)
	}

	names := pkg.Parts()
	sort.Sort(natural.StringSlice(names))
	tw.Line(0, "Parts: %d", len(names))
	for _, name := range names {
		data, _ := pkg.Part(name)
		tw.Fields(1, name, "size", len(data), "type", pkg.ContentType(name))
	}

	tw.rels(pkg, "")
	for _, name := range names {
		if path.Ext(name) != ".rels" {
			tw.rels(pkg, name)
		}
	}
	return tw.String()
}

func (tw treeWriter) rels(pkg *opc.Package, source string) {
	rels, err := pkg.Relationships(source)
	if err != nil {
		tw.Line(0, "Relationships of %q: %v", source, err)
		return
	}
	if rels.Len() == 0 {
		return
	}
	label := source
	if label == "" {
		label = "package"
	}
	tw.Line(0, "Relationships of %s: %d", label, rels.Len())

	byID := make(map[string]opc.Relationship, rels.Len())
	ids := make([]string, 0, rels.Len())
	for _, rel := range rels.List() {
		byID[rel.ID] = rel
		ids = append(ids, rel.ID)
	}
	sort.Sort(natural.StringSlice(ids))
	for _, id := range ids {
		rel := byID[id]
		if rel.External {
			tw.Fields(1, id, "type", path.Base(rel.Type), "target", rel.Target, "external")
			continue
		}
		target := rels.TargetPart(rel)
		if !pkg.Has(target) {
			tw.Fields(1, id, "type", path.Base(rel.Type), "target", target, "missing")
			continue
		}
		tw.Fields(1, id, "type", path.Base(rel.Type), "target", target)
	}
}
