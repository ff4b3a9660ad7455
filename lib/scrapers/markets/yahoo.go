package markets

// YahooSpec declares the finance.yahoo.com source.
func YahooSpec() Spec {
	quoteTableProbes := []string{
		"table[data-test='quote-table'] tbody tr",
		"div[data-test='fin-table'] tbody tr",
		"table[class*='table'] tbody tr",
		"div[class*='table'] tbody tr",
		"tr[class*='simpTblRow']",
		"table tbody tr",
		"tbody tr",
	}

	quoteContract := ColumnContract{
		MinCells: 4,
		Fields: []Field{
			{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
			{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
			{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
			{Cell: 3, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
		},
	}
	stocksContract := ColumnContract{
		MinCells: 6,
		Fields: []Field{
			{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
			{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
			{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
			{Cell: 3, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
			{Cell: 4, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
			{Cell: 5, Name: "capitalizacion", MaxLen: maxNumericLen, Optional: true},
		},
	}
	etfsContract := ColumnContract{
		MinCells: 5,
		Fields: []Field{
			{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
			{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
			{Cell: 2, Name: "cambio", MaxLen: maxNumericLen, Optional: true},
			{Cell: 3, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
			{Cell: 4, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
		},
	}

	return Spec{
		Name: "yahoo",
		DataTypes: []string{
			"forex",
			"gainers",
			"losers",
			"most_active_stocks",
			"most_active_etfs",
			"undervalued_growth",
			"materias_primas",
			"indices",
		},
		URLs: map[string]string{
			"forex":              "https://finance.yahoo.com/currencies",
			"gainers":            "https://finance.yahoo.com/markets/stocks/gainers/",
			"losers":             "https://finance.yahoo.com/markets/stocks/losers/",
			"most_active_stocks": "https://finance.yahoo.com/markets/stocks/most-active/",
			"most_active_etfs":   "https://finance.yahoo.com/markets/etfs/most-active/",
			"undervalued_growth": "https://finance.yahoo.com/screener/predefined/undervalued_growth_stocks/",
			"materias_primas":    "https://finance.yahoo.com/commodities",
			"indices":            "https://finance.yahoo.com/world-indices",
		},
		Probes: ProbeSet{
			"forex":              quoteTableProbes,
			"gainers":            quoteTableProbes,
			"losers":             quoteTableProbes,
			"most_active_stocks": quoteTableProbes,
			"most_active_etfs":   quoteTableProbes,
			"undervalued_growth": quoteTableProbes,
			"materias_primas":    quoteTableProbes,
			"indices":            quoteTableProbes,
		},
		Contracts: ContractSet{
			"forex":              quoteContract,
			"gainers":            stocksContract,
			"losers":             stocksContract,
			"most_active_stocks": stocksContract,
			"most_active_etfs":   etfsContract,
			"undervalued_growth": stocksContract,
			"materias_primas":    quoteContract,
			"indices":            quoteContract,
		},
		RowCaps: map[string]int{
			"forex":              30,
			"gainers":            50,
			"losers":             50,
			"most_active_stocks": 50,
			"most_active_etfs":   50,
			"undervalued_growth": 50,
			"materias_primas":    30,
			"indices":            30,
		},
	}
}

// DefaultSpecs returns every built-in source in configuration order. The
// order is load-bearing: RunScrape reports errors in this order.
func DefaultSpecs() []Spec {
	return []Spec{
		TradingViewSpec(),
		FinvizSpec(),
		YahooSpec(),
	}
}
