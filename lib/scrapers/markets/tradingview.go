package markets

// TradingViewSpec declares the es.tradingview.com source. TradingView is the
// most markup-hostile of the three: rows may be real table rows or stacks of
// divs depending on the revision being served, so its probe lists run deep
// and cells are gathered from td/th/div alike with empties compacted away.
// The pages hydrate through javascript, which is why the source is flagged
// browser-required and excluded in constrained deployments.
func TradingViewSpec() Spec {
	return Spec{
		Name:            "tradingview",
		RequiresBrowser: true,
		DataTypes: []string{
			"indices",
			"acciones",
			"cripto",
			"forex",
		},
		URLs: map[string]string{
			"indices":  "https://es.tradingview.com/markets/indices/quotes-all/",
			"acciones": "https://es.tradingview.com/markets/stocks-usa/",
			"cripto":   "https://es.tradingview.com/markets/cryptocurrencies/",
			"forex":    "https://es.tradingview.com/markets/currencies/",
		},
		Probes: ProbeSet{
			"indices": {
				"table tbody tr",
				"div[class*='row']",
				"tr[class*='row']",
				"table tr",
				"tbody tr",
				"tr",
			},
			"acciones": {
				"table:nth-of-type(2) tbody tr",
				"table:nth-of-type(2) tr",
				"tbody tr",
				"table tbody tr",
			},
			"cripto": {
				"table.tv-data-table > tbody > tr",
				"table[class*='table'] > tbody > tr",
				"div[class*='table'] table > tbody > tr",
				"table > tbody > tr",
				".tv-data-table__row",
				".tv-screener__content-row",
				"tr[class*='row']",
				"tbody > tr",
				"table tr",
				"tr",
			},
			"forex": {
				"tbody tr",
				"table tbody tr",
				"tr[class*='row']",
				"table tr",
			},
		},
		Contracts: ContractSet{
			"indices": {
				CellSelector: "td, th, div",
				CompactCells: true,
				MinCells:     2,
				Fields: []Field{
					{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
					{Cell: 3, Name: "maximo", MaxLen: maxNumericLen, Optional: true},
					{Cell: 4, Name: "minimo", MaxLen: maxNumericLen, Optional: true},
					{Cell: 5, Name: "calificacion", MaxLen: maxNumericLen, Optional: true},
				},
			},
			"acciones": {
				CellSelector: "td, th, div",
				CompactCells: true,
				MinCells:     2,
				Fields: []Field{
					{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
					{Cell: 3, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
					{Cell: 4, Name: "capitalizacion", MaxLen: maxNumericLen, Optional: true},
				},
			},
			"cripto": {
				CellSelector: "td, th, div",
				CompactCells: true,
				MinCells:     2,
				Fields: []Field{
					{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
					{Cell: 3, Name: "volumen_24h", MaxLen: maxNumericLen, Optional: true},
					{Cell: 4, Name: "capitalizacion", MaxLen: maxNumericLen, Optional: true},
					{Cell: 5, Name: "dominancia", MaxLen: maxNumericLen, Optional: true},
				},
			},
			"forex": {
				CellSelector: "td, th, div",
				CompactCells: true,
				MinCells:     2,
				Fields: []Field{
					{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
					{Cell: 3, Name: "spread", MaxLen: maxNumericLen, Optional: true},
					{Cell: 4, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
				},
			},
		},
		RowCaps: map[string]int{
			"indices":  50,
			"acciones": 50,
			"cripto":   50,
			"forex":    50,
		},
	}
}
