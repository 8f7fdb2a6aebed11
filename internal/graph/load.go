package graph

import (
	"context"
	"fmt"
)

// Load writes a scanned workspace into store: one FileNode per record, one
// SymbolNode per symbol, and one IMPORTS edge per resolved link. The store's
// schema is initialized first. Load does not compute clusters.
func Load(ctx context.Context, store Store, files *FileMap, dg *DependencyGraph) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	for _, rec := range files.Records() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.AddFile(ctx, fileNode(rec)); err != nil {
			return fmt.Errorf("add file %s: %w", rec.Path, err)
		}
		for _, sym := range rec.Symbols {
			err := store.AddSymbol(ctx, SymbolNode{
				Name:      sym.Name,
				Kind:      sym.Kind,
				FilePath:  rec.Path,
				StartLine: sym.StartLine,
				EndLine:   sym.EndLine,
				Signature: sym.Signature,
			})
			if err != nil {
				return fmt.Errorf("add symbol %s in %s: %w", sym.Name, rec.Path, err)
			}
		}
	}

	if dg == nil {
		return nil
	}
	for _, l := range dg.Links {
		edge := Edge{
			SourceID: l.Source,
			TargetID: l.Target,
			Kind:     EdgeKindImports,
			Import:   l.Import,
			Method:   l.Method,
		}
		if err := store.AddEdge(ctx, edge); err != nil {
			return fmt.Errorf("add import %s -> %s: %w", l.Source, l.Target, err)
		}
	}
	return nil
}

// FileNodes returns the FileNode view of every record, in key order.
func FileNodes(files *FileMap) []FileNode {
	out := make([]FileNode, 0, files.Len())
	for _, rec := range files.Records() {
		out = append(out, fileNode(rec))
	}
	return out
}

func fileNode(rec FileRecord) FileNode {
	return FileNode{
		Path:     rec.Path,
		Language: rec.Language,
		Symbols:  len(rec.Symbols),
		Imports:  len(rec.Imports),
	}
}
