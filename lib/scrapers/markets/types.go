package markets

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record maps field names to raw cell text for one table row. Records are
// write-once: nothing mutates them after extraction.
type Record map[string]string

// DataTypeResult is the ordered row set extracted for one (source, data type)
// pair. Extraction failure is represented as an empty result, not an error.
type DataTypeResult []Record

// SourceResult maps data-type keys to their extracted rows for one source.
// A partially failed source still produces a SourceResult, failed data types
// just map to empty results.
type SourceResult map[string]DataTypeResult

type ScrapeError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// RawScrapeOutput is what one orchestrator run produces. Ownership transfers
// to the snapshot service on commit.
type RawScrapeOutput struct {
	Data      map[string]SourceResult `json:"data"`
	Errors    []ScrapeError           `json:"errors"`
	Timestamp time.Time               `json:"timestamp"`
}

// Snapshot is the canonical full scrape result. A new scrape run replaces the
// current snapshot wholesale, it is never mutated in place.
type Snapshot struct {
	Data        map[string]SourceResult
	LastUpdated time.Time
}

const lastUpdatedKey = "last_updated"

// The wire shape is flat: source names at the top level next to
// last_updated. Other processes read this from disk, so it is a contract.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Data)+1)
	for source, result := range s.Data {
		out[source] = result
	}
	out[lastUpdatedKey] = s.LastUpdated.Format(time.RFC3339)
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	s.Data = make(map[string]SourceResult, len(raw))
	for key, value := range raw {
		if key == lastUpdatedKey {
			var stamp string
			err := json.Unmarshal(value, &stamp)
			if err != nil {
				return fmt.Errorf("parse %s: %w", lastUpdatedKey, err)
			}
			s.LastUpdated, err = time.Parse(time.RFC3339, stamp)
			if err != nil {
				return fmt.Errorf("parse %s: %w", lastUpdatedKey, err)
			}
			continue
		}

		var result SourceResult
		err := json.Unmarshal(value, &result)
		if err != nil {
			return fmt.Errorf("parse source %q: %w", key, err)
		}
		s.Data[key] = result
	}
	return nil
}

// SourceMeta describes one source's contribution to a CategorySummary.
type SourceMeta struct {
	HasData   bool           `json:"has_data"`
	DataTypes map[string]int `json:"data_types"`
}

// CategorySummary is the cross-source, top-N view derived from a Snapshot.
type CategorySummary struct {
	Categories  map[string]DataTypeResult
	Sources     map[string]SourceMeta
	LastUpdated time.Time
}

const sourcesKey = "sources"

func (s CategorySummary) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Categories)+2)
	for category, records := range s.Categories {
		out[category] = records
	}
	out[sourcesKey] = s.Sources
	out[lastUpdatedKey] = s.LastUpdated.Format(time.RFC3339)
	return json.Marshal(out)
}

func (s *CategorySummary) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	s.Categories = make(map[string]DataTypeResult, len(raw))
	for key, value := range raw {
		switch key {
		case lastUpdatedKey:
			var stamp string
			err := json.Unmarshal(value, &stamp)
			if err != nil {
				return fmt.Errorf("parse %s: %w", lastUpdatedKey, err)
			}
			s.LastUpdated, err = time.Parse(time.RFC3339, stamp)
			if err != nil {
				return fmt.Errorf("parse %s: %w", lastUpdatedKey, err)
			}
		case sourcesKey:
			err := json.Unmarshal(value, &s.Sources)
			if err != nil {
				return fmt.Errorf("parse %s: %w", sourcesKey, err)
			}
		default:
			var records DataTypeResult
			err := json.Unmarshal(value, &records)
			if err != nil {
				return fmt.Errorf("parse category %q: %w", key, err)
			}
			s.Categories[key] = records
		}
	}
	return nil
}
