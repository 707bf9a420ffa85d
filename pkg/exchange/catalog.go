package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/personakit/personakit/pkg/core"
)

// NotAvailable replaces missing or blank catalog cells.
const NotAvailable = "N/A"

// Conventional catalog columns. Headers are matched case-insensitively.
const (
	CatalogCode        = "code"
	CatalogName        = "name"
	CatalogCategory    = "category"
	CatalogSubcategory = "subcategory"
	CatalogBrand       = "brand"
	CatalogPrice       = "price"
	CatalogStock       = "stock"
	CatalogDescription = "description"
)

// Names of the generated documents.
const (
	CatalogSummaryDoc = "Catalog summary"
	CatalogIndexDoc   = "Catalog index"
)

// CatalogOptions configure ImportCatalogCSV.
type CatalogOptions struct {
	// ProfileName defaults to "Product Catalog".
	ProfileName string
	Description string
	// GroupBy is the column the summary document groups by. Defaults to category.
	GroupBy string
	// IndexBy are the two columns of the cross index. Defaults to
	// subcategory then brand.
	IndexBy [2]string
}

func (o CatalogOptions) withDefaults() CatalogOptions {
	if o.ProfileName == "" {
		o.ProfileName = "Product Catalog"
	}
	if o.GroupBy == "" {
		o.GroupBy = CatalogCategory
	}
	if o.IndexBy[0] == "" {
		o.IndexBy[0] = CatalogSubcategory
	}
	if o.IndexBy[1] == "" {
		o.IndexBy[1] = CatalogBrand
	}
	o.GroupBy = strings.ToLower(o.GroupBy)
	o.IndexBy[0] = strings.ToLower(o.IndexBy[0])
	o.IndexBy[1] = strings.ToLower(o.IndexBy[1])
	return o
}

const catalogPrompt = `You are a sales assistant for the product catalog in your knowledge base.
Recommend products that match what the customer asks for, quote codes, prices and stock exactly as listed, and say so when a product is not in the catalog.`

var catalogInstructions = []string{
	"Identify products by their code and name.",
	"Quote prices and stock exactly as they appear in the knowledge base.",
	"Suggest alternatives from the same category or brand when a product is unavailable.",
	"Ask which category the customer is interested in when the request is vague.",
}

var catalogExamples = []string{
	"Customer: Do you have running shoes? Assistant: Yes, RS-100 - Trail Runner is available for 59.90, with 12 units in stock.",
	"Customer: What brands do you carry for backpacks? Assistant: For backpacks we carry the brands listed in the catalog index; tell me your budget and I will narrow it down.",
}

var catalogRestrictions = []string{
	"Never invent products, prices or stock levels.",
	"Do not promise delivery dates or discounts that are not in the catalog.",
}

type catalogRow map[string]string

func (r catalogRow) get(col string) string {
	if v := strings.TrimSpace(r[col]); v != "" {
		return v
	}
	return NotAvailable
}

func (r catalogRow) key() string {
	return r.get(CatalogCode) + " - " + r.get(CatalogName)
}

// ImportCatalogCSV builds one sales profile from a product sheet: one
// knowledge entry per row, a summary grouped by opts.GroupBy and a cross
// index grouped by opts.IndexBy. Missing cells become N/A. An empty sheet
// creates nothing.
func ImportCatalogCSV(ctx context.Context, store Store, r io.Reader, opts CatalogOptions) (string, bool) {
	opts = opts.withDefaults()
	log := store.Logger()

	rows, err := readCatalog(r)
	if err != nil {
		log.Warn("catalog import failed", "error", err)
		return "", false
	}
	if len(rows) == 0 {
		log.Warn("catalog import skipped, no product rows")
		return "", false
	}

	now := time.Now()
	v := core.NewVersion(1, now)
	v.SystemPrompt = catalogPrompt
	v.Context = fmt.Sprintf("Product catalog with %d items across %d groups.", len(rows), len(groupRows(rows, opts.GroupBy)))
	v.Instructions = append([]string{}, catalogInstructions...)
	v.Examples = append([]string{}, catalogExamples...)
	v.Restrictions = append([]string{}, catalogRestrictions...)
	v.Tone = core.ToneFriendly

	for _, row := range rows {
		key := row.key()
		if _, dup := v.KnowledgeBase[key]; dup {
			log.Warn("duplicate catalog entry overwritten", "key", key)
		}
		v.KnowledgeBase[key] = core.KnowledgeEntry{Value: describeRow(row), AddedAt: core.Stamp(now)}
	}

	v.Documents = []core.DocumentEntry{
		{Name: CatalogSummaryDoc, Content: catalogSummary(rows, opts.GroupBy), Type: "summary", AddedAt: core.Stamp(now)},
		{Name: CatalogIndexDoc, Content: catalogIndex(rows, opts.IndexBy), Type: "index", AddedAt: core.Stamp(now)},
	}

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Sales assistant generated from a catalog of %d products", len(rows))
	}
	p := &core.Profile{
		Name:          opts.ProfileName,
		Description:   description,
		Type:          core.TypeSales,
		CreatedAt:     core.Stamp(now),
		LastModified:  core.Stamp(now),
		ActiveVersion: 1,
		Versions:      map[int]*core.Version{1: v},
		Tags:          []string{"catalog", "imported"},
	}

	name, ok := insert(ctx, store, p, "catalog")
	if ok {
		log.Info("catalog imported", "profile", name, "products", len(rows))
	}
	return name, ok
}

func readCatalog(r io.Reader) ([]catalogRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid catalog csv: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var rows []catalogRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid catalog csv: %w", err)
		}
		row := make(catalogRow, len(header))
		blank := true
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
				if strings.TrimSpace(rec[i]) != "" {
					blank = false
				}
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// describeRow avoids "|" and "=" so the profile survives a CSV export.
func describeRow(row catalogRow) string {
	return fmt.Sprintf("Category: %s; Subcategory: %s; Brand: %s; Price: %s; Stock: %s; Description: %s",
		row.get(CatalogCategory), row.get(CatalogSubcategory), row.get(CatalogBrand),
		row.get(CatalogPrice), row.get(CatalogStock), row.get(CatalogDescription))
}

func groupRows(rows []catalogRow, col string) map[string][]catalogRow {
	groups := make(map[string][]catalogRow)
	for _, row := range rows {
		g := row.get(col)
		groups[g] = append(groups[g], row)
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func catalogSummary(rows []catalogRow, groupBy string) string {
	groups := groupRows(rows, groupBy)

	var b strings.Builder
	fmt.Fprintf(&b, "%d products in %d groups by %s.\n", len(rows), len(groups), groupBy)
	for _, g := range sortedKeys(groups) {
		members := groups[g]
		fmt.Fprintf(&b, "\n%s (%d):\n", strings.ToUpper(g), len(members))
		for _, row := range members {
			fmt.Fprintf(&b, "- %s: %s\n", row.key(), row.get(CatalogPrice))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func catalogIndex(rows []catalogRow, by [2]string) string {
	outer := make(map[string]map[string][]string)
	for _, row := range rows {
		a, c := row.get(by[0]), row.get(by[1])
		if outer[a] == nil {
			outer[a] = make(map[string][]string)
		}
		outer[a][c] = append(outer[a][c], row.get(CatalogCode))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Index by %s and %s.\n", by[0], by[1])
	for _, a := range sortedKeys(outer) {
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(a))
		inner := outer[a]
		for _, c := range sortedKeys(inner) {
			fmt.Fprintf(&b, "  %s: %s\n", c, strings.Join(inner[c], ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
