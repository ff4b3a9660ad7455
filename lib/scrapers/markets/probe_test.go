package markets

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFindRowsSkipsHeaderRow(t *testing.T) {
	doc := docFromString(t, `
		<table class="table-light">
			<tr><th>Ticker</th><th>Price</th><th>Change</th><th>Volume</th></tr>
			<tr><td>AAPL</td><td>184.20</td><td>+1.2%</td><td>52M</td></tr>
			<tr><td>MSFT</td><td>412.10</td><td>-0.4%</td><td>31M</td></tr>
			<tr><td>NVDA</td><td>905.55</td><td>+3.1%</td><td>64M</td></tr>
		</table>`)

	probes := ProbeSet{"acciones": {
		"table.table-light tr",
		"table tr",
	}}
	rows := probes.FindRows(doc, "acciones")
	require.Len(t, rows, 3)
}

func TestFindRowsPrefersEarlierProbe(t *testing.T) {
	doc := docFromString(t, `
		<table class="wanted">
			<tr><td>EUR/USD</td><td>1.0841</td></tr>
			<tr><td>USD/JPY</td><td>148.02</td></tr>
		</table>
		<table class="decoy">
			<tr><td>a</td></tr><tr><td>b</td></tr><tr><td>c</td></tr>
		</table>`)

	probes := ProbeSet{"forex": {
		"table.wanted tr",
		"table tr",
	}}
	rows := probes.FindRows(doc, "forex")
	require.Len(t, rows, 2)
}

func TestFindRowsRejectsSingleRowMatch(t *testing.T) {
	// one usable row is below the acceptance threshold, so the probe set
	// falls through and yields nothing
	doc := docFromString(t, `
		<table><tr><td>AAPL</td><td>184.20</td></tr></table>`)

	probes := ProbeSet{"acciones": {"table tr"}}
	require.Empty(t, probes.FindRows(doc, "acciones"))
}

func TestFindRowsGarbledDocument(t *testing.T) {
	doc := docFromString(t, `<html><body><p>503 service unavailable</p></body></html>`)

	probes := ProbeSet{"indices": {
		"table tbody tr",
		"tr[class*='row']",
		"table tr",
	}}
	require.Empty(t, probes.FindRows(doc, "indices"))
}

func TestIsBoilerplateRow(t *testing.T) {
	doc := docFromString(t, `
		<table>
			<tr id="header"><th>Nombre</th><th>Precio</th><th>Cambio</th></tr>
			<tr id="nav"><td>Home</td><td>News</td><td>Screener</td></tr>
			<tr id="data"><td>Bitcoin</td><td>64,210</td><td>+2.4%</td></tr>
			<tr id="empty"><td></td><td></td></tr>
		</table>`)

	require.True(t, isBoilerplateRow(doc.Find("#header")))
	require.True(t, isBoilerplateRow(doc.Find("#nav")))
	require.False(t, isBoilerplateRow(doc.Find("#data")))
	require.True(t, isBoilerplateRow(doc.Find("#empty")))
}
