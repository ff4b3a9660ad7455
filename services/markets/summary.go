package markets

import (
	"sort"

	scrapers "marketdata-backend/lib/scrapers/markets"
)

// Folding limits: each source contributes at most perSourceLimit records per
// data type, and no category grows past perCategoryCap regardless of how many
// sources feed it.
const (
	perSourceLimit = 10
	perCategoryCap = 20
)

// categoryFor folds a data-type key into its summary category. Stock-screen
// variants collapse into acciones; unmapped keys pass through unchanged so a
// new data type shows up in the summary without a code change here.
func categoryFor(dataType string) string {
	switch dataType {
	case "gainers", "losers", "most_active_stocks", "undervalued_growth":
		return "acciones"
	case "most_active_etfs":
		return "etfs"
	}
	return dataType
}

// BuildCategorySummary derives the cross-source, top-N view from a snapshot.
// Sources are visited in name order so the same snapshot always folds into
// the same summary.
func BuildCategorySummary(snapshot scrapers.Snapshot) scrapers.CategorySummary {
	summary := scrapers.CategorySummary{
		Categories:  map[string]scrapers.DataTypeResult{},
		Sources:     map[string]scrapers.SourceMeta{},
		LastUpdated: snapshot.LastUpdated,
	}

	sourceNames := make([]string, 0, len(snapshot.Data))
	for name := range snapshot.Data {
		sourceNames = append(sourceNames, name)
	}
	sort.Strings(sourceNames)

	for _, name := range sourceNames {
		result := snapshot.Data[name]
		meta := scrapers.SourceMeta{DataTypes: map[string]int{}}

		dataTypes := make([]string, 0, len(result))
		for dataType := range result {
			dataTypes = append(dataTypes, dataType)
		}
		sort.Strings(dataTypes)

		for _, dataType := range dataTypes {
			records := result[dataType]
			meta.DataTypes[dataType] = len(records)
			if len(records) == 0 {
				continue
			}
			meta.HasData = true

			if len(records) > perSourceLimit {
				records = records[:perSourceLimit]
			}
			category := categoryFor(dataType)
			merged := append(summary.Categories[category], records...)
			if len(merged) > perCategoryCap {
				merged = merged[:perCategoryCap]
			}
			summary.Categories[category] = merged
		}

		summary.Sources[name] = meta
	}

	return summary
}
