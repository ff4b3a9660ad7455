package markets

import (
	"marketdata-backend/lib/htmlutil"
	"marketdata-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Field length bounds keep a hostile page from inflating the snapshot.
const (
	maxNameLen    = 50
	maxNumericLen = 20
)

// Field binds one cell ordinal to a record field name. Optional fields may
// be missing or empty without discarding the record; required ones may not.
type Field struct {
	Cell     int
	Name     string
	MaxLen   int
	Optional bool
}

// ColumnContract describes how to turn a matched row into a Record for one
// data type.
type ColumnContract struct {
	// CellSelector defaults to "td". Sources that render rows out of divs
	// override it.
	CellSelector string
	// CompactCells drops empty cells before ordinals are applied, for pages
	// that pad rows with presentational cells.
	CompactCells bool
	// MinCells is the minimum usable cell count to attempt extraction at
	// all. Shorter rows yield no record, not an error.
	MinCells int
	Fields   []Field
}

// ContractSet maps data-type keys to their column contracts.
type ContractSet map[string]ColumnContract

// ExtractRecord maps one matched row into a typed record. The second return
// is false when the row is too short, a required field is empty, or the row
// turns out to be a header that slipped past the probe filter.
func (c ContractSet) ExtractRecord(row *goquery.Selection, dataType string) (Record, bool) {
	contract, ok := c[dataType]
	if !ok {
		return nil, false
	}

	selector := contract.CellSelector
	if selector == "" {
		selector = "td"
	}

	texts := htmlutil.CellTexts(row.Find(selector))
	for i, text := range texts {
		texts[i] = textutil.CollapseSpace(text)
	}
	if contract.CompactCells {
		compacted := texts[:0]
		for _, text := range texts {
			if text != "" {
				compacted = append(compacted, text)
			}
		}
		texts = compacted
	}

	if len(texts) < contract.MinCells {
		return nil, false
	}

	record := Record{}
	for _, field := range contract.Fields {
		var value string
		if field.Cell < len(texts) {
			value = textutil.Truncate(texts[field.Cell], field.MaxLen)
		}
		if value == "" {
			if field.Optional {
				continue
			}
			return nil, false
		}
		if isHeaderValue(value) {
			return nil, false
		}
		record[field.Name] = value
	}

	return record, true
}

// isHeaderValue catches rows whose cells are literal column titles, the
// telltale of a header row extracted as data.
func isHeaderValue(value string) bool {
	_, known := boilerplateTokens[textutil.NormalizeToken(value)]
	return known
}
