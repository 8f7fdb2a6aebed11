package quality

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dusk-indust/depmap/internal/lang"
)

// ChangeKind classifies a breaking change.
type ChangeKind string

const (
	ChangeRemoved   ChangeKind = "removed"
	ChangeSignature ChangeKind = "signature_change"
)

// Change is one exported symbol that was removed or whose signature changed.
type Change struct {
	Kind       ChangeKind      `json:"kind"`
	Symbol     string          `json:"symbol"`
	SymbolKind lang.SymbolKind `json:"symbolKind"`
	Old        string          `json:"old,omitempty"`
	New        string          `json:"new,omitempty"`
}

// BreakingChanges compares two versions of one file's symbols. Symbols are
// matched by kind, name, and occurrence: the second "run" function in prev
// pairs with the second "run" function in next, so removing one of two
// same-named methods is still reported. Only exported symbols can break
// callers. Changes are sorted by symbol name, then by position in prev.
func BreakingChanges(prev, next []lang.Symbol, l lang.Language) []Change {
	before, order := keyed(prev)
	after, _ := keyed(next)

	var changes []Change
	for _, k := range order {
		if !Exported(k.name, l) {
			continue
		}
		o := before[k]
		n, ok := after[k]
		switch {
		case !ok:
			changes = append(changes, Change{
				Kind:       ChangeRemoved,
				Symbol:     k.name,
				SymbolKind: o.Kind,
				Old:        o.Signature,
			})
		case o.Signature != n.Signature:
			changes = append(changes, Change{
				Kind:       ChangeSignature,
				Symbol:     k.name,
				SymbolKind: o.Kind,
				Old:        o.Signature,
				New:        n.Signature,
			})
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Symbol < changes[j].Symbol })
	return changes
}

// symbolKey identifies the n-th symbol of a kind and name within a file.
type symbolKey struct {
	kind lang.SymbolKind
	name string
	n    int
}

func keyed(symbols []lang.Symbol) (map[symbolKey]lang.Symbol, []symbolKey) {
	out := make(map[symbolKey]lang.Symbol, len(symbols))
	order := make([]symbolKey, 0, len(symbols))
	seen := make(map[symbolKey]int)
	for _, s := range symbols {
		base := symbolKey{kind: s.Kind, name: s.Name}
		k := symbolKey{kind: s.Kind, name: s.Name, n: seen[base]}
		seen[base]++
		out[k] = s
		order = append(order, k)
	}
	return out, order
}

// Exported applies the language's visibility convention to a symbol name:
// Go exports upper-case names; elsewhere a leading underscore or # marks a
// private name.
func Exported(name string, l lang.Language) bool {
	if name == "" {
		return false
	}
	if l == lang.LangGo {
		r, _ := utf8.DecodeRuneInString(name)
		return unicode.IsUpper(r)
	}
	return !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "#")
}
