package markets

import (
	"marketdata-backend/lib/htmlutil"
	"marketdata-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ProbeSet maps a data-type key to its ordered list of structural probes,
// most specific first. Probes are plain CSS selectors so that fixing a broken
// source page means editing one table, not a code path.
type ProbeSet map[string][]string

// A probe must yield more rows than this to be accepted, so that a stray
// match on a lone header row never wins.
const probeRowThreshold = 1

// Tokens whose presence as the entire content of a row mark it as a header
// or navigation artifact rather than data. All entries are pre-normalized
// (lowercase, no whitespace).
var boilerplateTokens = map[string]struct{}{
	// column headers
	"no.": {}, "ticker": {}, "symbol": {}, "name": {}, "price": {},
	"change": {}, "change%": {}, "%change": {}, "chg": {}, "chg%": {},
	"volume": {}, "avgvolume": {}, "marketcap": {}, "p/e": {}, "pe": {},
	"last": {}, "high": {}, "low": {}, "rating": {}, "sector": {},
	"industry": {}, "country": {}, "spread": {}, "signal": {},
	"nombre": {}, "precio": {}, "cambio": {}, "cambio%": {}, "volumen": {},
	"capitalizacion": {}, "maximo": {}, "minimo": {},
	// navigation chrome
	"home": {}, "news": {}, "markets": {}, "screener": {}, "maps": {},
	"groups": {}, "portfolio": {}, "insider": {}, "watchlist": {},
	"login": {}, "register": {}, "signin": {}, "search": {},
}

// FindRows locates the data rows for a data type by trying each probe in
// priority order and keeping the first one that yields a usable row set.
// Rows whose flattened text is nothing but header/navigation tokens are
// discarded before the threshold check. An empty return is a normal outcome:
// source pages change markup without notice.
func (p ProbeSet) FindRows(doc *goquery.Document, dataType string) []*goquery.Selection {
	for _, selector := range p[dataType] {
		candidates := doc.Find(selector)
		if candidates.Length() == 0 {
			continue
		}

		rows := make([]*goquery.Selection, 0, candidates.Length())
		candidates.Each(func(_ int, row *goquery.Selection) {
			if isBoilerplateRow(row) {
				return
			}
			rows = append(rows, row)
		})

		if len(rows) > probeRowThreshold {
			return rows
		}
	}
	return nil
}

// isBoilerplateRow reports whether every non-empty cell of the row is a known
// header or navigation token. Real data rows always carry at least one value
// (a symbol, a price) outside that vocabulary.
func isBoilerplateRow(row *goquery.Selection) bool {
	texts := htmlutil.CellTexts(row.Find("td, th"))
	if len(texts) == 0 {
		// not a cell-structured row, judge its whole text
		texts = []string{row.Text()}
	}

	for _, text := range texts {
		token := textutil.NormalizeToken(text)
		if token == "" {
			continue
		}
		if _, known := boilerplateTokens[token]; !known {
			return false
		}
	}
	// all cells empty or boilerplate
	return true
}
