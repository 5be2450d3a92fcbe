// Package models contains domain types for the MDT generator.
package models

// CastEvent is a single ability use as delivered by the combat-log API.
type CastEvent struct {
	Timestamp     int64  `json:"timestamp"` // ms from report start
	Type          string `json:"type,omitempty"`
	SourceID      int    `json:"sourceID,omitempty"`
	AbilityGameID int    `json:"abilityGameID"`
	AbilityName   string `json:"abilityName,omitempty"`
}

// Fight is one encounter segment within a report.
type Fight struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	EncounterID int    `json:"encounterID,omitempty"`
}

// Duration returns the fight length in milliseconds.
func (f Fight) Duration() int64 {
	return f.EndTime - f.StartTime
}

// CastData is the combined result of a paginated cast fetch.
type CastData struct {
	ReportTitle     string      `json:"reportTitle"`
	ReportStartTime int64       `json:"reportStartTime"`
	Fight           Fight       `json:"fight"`
	CastEvents      []CastEvent `json:"castEvents"`
	HasMoreEvents   bool        `json:"hasMoreEvents"` // page cap reached
	PagesRetrieved  int         `json:"pagesRetrieved"`
}
