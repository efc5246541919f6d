// internal/catalog/resolver.go
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/table"
)

// Resolver answers which catalog entries are legal at each level. It holds
// no state of its own.
type Resolver struct {
	store  Store
	logger logger.Logger
}

func NewResolver(store Store, log logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// ListAuthors returns the known authors present in the catalog, sorted by name.
func (r *Resolver) ListAuthors(ctx context.Context) ([]Author, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	authors := make([]Author, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		a, ok := ParseAuthor(e.Name)
		if !ok {
			r.logger.Debug("Skipping unknown author directory", map[string]interface{}{"name": e.Name})
			continue
		}
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i] < authors[j] })
	return authors, nil
}

// ListYears returns the author's year directories, most recent first.
func (r *Resolver) ListYears(ctx context.Context, author Author) ([]string, error) {
	entries, err := r.store.List(ctx, string(author))
	if err != nil {
		return nil, err
	}

	type year struct {
		name string
		n    int
	}
	years := make([]year, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		n, err := strconv.Atoi(e.Name)
		if err != nil {
			continue
		}
		years = append(years, year{name: e.Name, n: n})
	}
	sort.SliceStable(years, func(i, j int) bool { return years[i].n > years[j].n })

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = y.name
	}
	return out, nil
}

// documents parses the year directory in store order.
func (r *Resolver) documents(ctx context.Context, author Author, year string) ([]Document, error) {
	entries, err := r.store.List(ctx, string(author), year)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		doc, ok := ParseDocument(author, e)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListDocuments returns the documents of one author and year in display order.
func (r *Resolver) ListDocuments(ctx context.Context, author Author, year string) ([]Document, error) {
	docs, err := r.documents(ctx, author, year)
	if err != nil {
		return nil, err
	}

	switch author {
	case AuthorBankOfRussia:
		var periodic, baselines, shortTerms []Document
		for _, d := range docs {
			switch d.Kind {
			case KindPeriodic:
				periodic = append(periodic, d)
			case KindBaseline:
				baselines = append(baselines, d)
			case KindShortTerm:
				shortTerms = append(shortTerms, d)
			}
		}
		sortBySeq(baselines)
		sortBySeq(shortTerms)
		out := append(periodic, baselines...)
		return append(out, shortTerms...), nil

	case AuthorMinEcon:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
		return docs, nil

	case AuthorAnalysts:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Month < docs[j].Month })
		return docs, nil

	case AuthorMinFin:
		return docs, nil
	}
	return nil, apperrors.NewCatalogNotFoundError(fmt.Sprintf("author %q", author))
}

// sortBySeq orders by sequence number ascending; unparsable numbers go last
// and equal keys keep store order.
func sortBySeq(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if a.SeqValid != b.SeqValid {
			return a.SeqValid
		}
		if !a.SeqValid {
			return false
		}
		return a.Seq < b.Seq
	})
}

// FindDocument looks a document up by its display name.
func (r *Resolver) FindDocument(ctx context.Context, author Author, year, name string) (Document, bool, error) {
	docs, err := r.ListDocuments(ctx, author, year)
	if err != nil {
		return Document{}, false, err
	}
	for _, d := range docs {
		if d.Name == name {
			return d, true, nil
		}
	}
	return Document{}, false, nil
}

// ListScenarios returns the scenarios of the periodic document, sorted.
func (r *Resolver) ListScenarios(ctx context.Context, author Author, year string) ([]string, error) {
	entries, err := r.store.List(ctx, string(author), year, PeriodicEntry)
	if err != nil {
		return nil, err
	}
	scenarios := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			scenarios = append(scenarios, e.Name)
		}
	}
	sort.Strings(scenarios)
	return scenarios, nil
}

// ListVariableGroups returns the tables available at loc, sorted descending
// by name. Single-table documents yield one NoGroup entry for the document
// file itself.
func (r *Resolver) ListVariableGroups(ctx context.Context, loc Location) ([]Group, error) {
	if loc.Document.Kind.SingleTable() {
		return []Group{{Name: NoGroup, Entry: loc.Document.Entry}}, nil
	}

	entries, err := r.store.List(ctx, loc.GroupDir()...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	groups := make([]Group, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		name := trimTableExt(e.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		groups = append(groups, Group{Name: name, Entry: e.Name})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name > groups[j].Name })
	return groups, nil
}

// FindGroup looks a variable group up by name.
func (r *Resolver) FindGroup(ctx context.Context, loc Location, name string) (Group, bool, error) {
	groups, err := r.ListVariableGroups(ctx, loc)
	if err != nil {
		return Group{}, false, err
	}
	for _, g := range groups {
		if g.Name == name {
			return g, true, nil
		}
	}
	return Group{}, false, nil
}

// ResolveLatestBaseline finds the most recent year holding baseline forecasts
// and returns the baseline with the highest sequence number there. Equal
// sequence numbers resolve to the one listed last.
func (r *Resolver) ResolveLatestBaseline(ctx context.Context, author Author) (string, Document, error) {
	if !author.SupportsLatestBaseline() {
		return "", Document{}, apperrors.NewInvalidSelectionError("latest baseline for " + string(author))
	}

	years, err := r.ListYears(ctx, author)
	if err != nil {
		return "", Document{}, err
	}

	for _, year := range years {
		docs, err := r.documents(ctx, author, year)
		if err != nil {
			return "", Document{}, err
		}

		var best *Document
		for i := range docs {
			d := docs[i]
			if d.Kind != KindBaseline || !d.SeqValid {
				continue
			}
			if best == nil || d.Seq >= best.Seq {
				best = &docs[i]
			}
		}
		if best != nil {
			r.logger.Debug("Resolved latest baseline", map[string]interface{}{
				"author": string(author), "year": year, "document": best.Entry,
			})
			return year, *best, nil
		}
	}
	return "", Document{}, apperrors.NewCatalogNotFoundError("no baseline forecasts for " + string(author))
}

// ReadGroupTable reads the table loc resolves to. An empty sheet selects the
// first sheet of the workbook.
func (r *Resolver) ReadGroupTable(ctx context.Context, loc Location, sheet string) (*table.Table, error) {
	return r.store.ReadTable(ctx, sheet, loc.TableSegments()...)
}
