package export

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/quality"
)

// maxMembers caps the properties and the methods listed per class.
const maxMembers = 5

var (
	pythonBases  = regexp.MustCompile(`^\s*class\s+\w+\s*\(([^)]*)\)`)
	extendsBase  = regexp.MustCompile(`\bextends\s+([A-Za-z_$][\w$.]*)`)
	goReceiver   = regexp.MustCompile(`^func\s*\(\s*(?:\w+\s+)?\*?\s*([A-Za-z_]\w*)`)
	identifierRe = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

type classInfo struct {
	name    string
	bases   []string
	props   []string
	methods []string
}

// ClassDiagram renders the class and function symbols of records as a
// Mermaid classDiagram. A function is a method of the innermost class whose
// line range encloses it; Go methods attach to their receiver type. Bases
// come from class signatures (Python bases, extends clauses) and are drawn
// as inheritance arrows. Classes are listed by name; when two files define
// the same name, the first file in path order wins. Returns "" when there
// are no classes.
func ClassDiagram(records []graph.FileRecord) string {
	sorted := append([]graph.FileRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	classes := make(map[string]*classInfo)
	for _, rec := range sorted {
		for name, c := range fileClasses(rec) {
			if _, ok := classes[name]; !ok {
				classes[name] = c
			}
		}
	}
	if len(classes) == 0 {
		return ""
	}

	type relation struct{ base, derived string }
	var relations []relation
	for _, c := range classes {
		for _, b := range c.bases {
			if _, ok := classes[b]; !ok {
				classes[b] = &classInfo{name: b}
			}
			relations = append(relations, relation{b, c.name})
		}
	}
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].base != relations[j].base {
			return relations[i].base < relations[j].base
		}
		return relations[i].derived < relations[j].derived
	})

	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("classDiagram\n")
	for _, name := range names {
		c := classes[name]
		fmt.Fprintf(&sb, "  class %s {\n", name)
		for _, p := range firstN(c.props, maxMembers) {
			fmt.Fprintf(&sb, "    %s\n", p)
		}
		for _, m := range firstN(c.methods, maxMembers) {
			fmt.Fprintf(&sb, "    %s\n", m)
		}
		sb.WriteString("  }\n")
	}
	for _, r := range relations {
		fmt.Fprintf(&sb, "  %s <|-- %s\n", r.base, r.derived)
	}
	return sb.String()
}

// fileClasses collects the classes of one file with their members.
func fileClasses(rec graph.FileRecord) map[string]*classInfo {
	var defs []lang.Symbol
	for _, sym := range rec.Symbols {
		if sym.Kind == lang.SymbolKindClass && identifierRe.MatchString(sym.Name) {
			defs = append(defs, sym)
		}
	}
	if len(defs) == 0 {
		return nil
	}

	out := make(map[string]*classInfo, len(defs))
	for _, d := range defs {
		if _, ok := out[d.Name]; !ok {
			out[d.Name] = &classInfo{name: d.Name, bases: baseClasses(d.Signature, d.Name)}
		}
	}

	symbols := append([]lang.Symbol(nil), rec.Symbols...)
	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	for _, sym := range symbols {
		if sym.Kind == lang.SymbolKindClass {
			continue
		}
		owner := ""
		if rec.Language == lang.LangGo && sym.Kind == lang.SymbolKindFunction {
			if m := goReceiver.FindStringSubmatch(sym.Signature); m != nil {
				owner = m[1]
			}
		}
		if owner == "" {
			owner = enclosingClass(defs, sym)
		}
		c, ok := out[owner]
		if !ok {
			continue
		}
		member := visibility(sym.Name, rec.Language) + sym.Name
		if sym.Kind == lang.SymbolKindFunction {
			c.methods = append(c.methods, member+"()")
		} else {
			c.props = append(c.props, member)
		}
	}
	return out
}

// enclosingClass returns the innermost class whose range strictly contains
// sym, or "".
func enclosingClass(defs []lang.Symbol, sym lang.Symbol) string {
	best, span := "", -1
	for _, d := range defs {
		if sym.StartLine <= d.StartLine || sym.EndLine > d.EndLine {
			continue
		}
		if s := d.EndLine - d.StartLine; span < 0 || s < span {
			best, span = d.Name, s
		}
	}
	return best
}

// baseClasses extracts simple base names from a class signature line.
func baseClasses(signature, self string) []string {
	var candidates []string
	if m := pythonBases.FindStringSubmatch(signature); m != nil {
		candidates = strings.Split(m[1], ",")
	} else if m := extendsBase.FindStringSubmatch(signature); m != nil {
		candidates = []string{m[1]}
	}

	var bases []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if !identifierRe.MatchString(c) || c == self || c == "object" {
			continue
		}
		bases = append(bases, c)
	}
	return bases
}

func visibility(name string, l lang.Language) string {
	if quality.Exported(name, l) {
		return "+"
	}
	return "-"
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
