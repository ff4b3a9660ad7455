package markets

// FinvizSpec declares the finviz.com source. Finviz renders everything into
// `table.table-light`; the screener tables prefix each row with a row-number
// cell, hence the ordinal offsets in acciones/indices.
func FinvizSpec() Spec {
	tableProbes := []string{
		"table.table-light tbody tr",
		"table.table-light tr",
		"table tbody tr",
		"tr[class*='table']",
		"table tr",
	}

	return Spec{
		Name: "finviz",
		DataTypes: []string{
			"forex",
			"acciones",
			"indices",
		},
		URLs: map[string]string{
			"forex":    "https://finviz.com/forex.ashx",
			"acciones": "https://finviz.com/screener.ashx?v=111&s=ta_topgainers&f=cap_large",
			"indices":  "https://finviz.com/screener.ashx?v=111&s=ta_topgainers&f=idx_sp500",
		},
		Probes: ProbeSet{
			"forex":    tableProbes,
			"acciones": tableProbes,
			"indices":  tableProbes,
		},
		Contracts: ContractSet{
			"forex": {
				MinCells: 6,
				Fields: []Field{
					{Cell: 0, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 1, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 2, Name: "cambio", MaxLen: maxNumericLen},
					{Cell: 3, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
					{Cell: 4, Name: "maximo", MaxLen: maxNumericLen, Optional: true},
					{Cell: 5, Name: "minimo", MaxLen: maxNumericLen, Optional: true},
				},
			},
			"acciones": {
				MinCells: 8,
				Fields: []Field{
					{Cell: 1, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 2, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 3, Name: "cambio", MaxLen: maxNumericLen},
					{Cell: 4, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
					{Cell: 5, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
					{Cell: 6, Name: "capitalizacion", MaxLen: maxNumericLen, Optional: true},
					{Cell: 7, Name: "pe_ratio", MaxLen: maxNumericLen, Optional: true},
				},
			},
			"indices": {
				MinCells: 6,
				Fields: []Field{
					{Cell: 1, Name: "nombre", MaxLen: maxNameLen},
					{Cell: 2, Name: "precio", MaxLen: maxNumericLen},
					{Cell: 3, Name: "cambio", MaxLen: maxNumericLen},
					{Cell: 4, Name: "cambio_porcentual", MaxLen: maxNumericLen, Optional: true},
					{Cell: 5, Name: "volumen", MaxLen: maxNumericLen, Optional: true},
				},
			},
		},
		RowCaps: map[string]int{
			"forex":    50,
			"acciones": 50,
			"indices":  30,
		},
	}
}
