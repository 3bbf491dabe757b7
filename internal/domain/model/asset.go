// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// Asset statuses requested from the annotation platform.
const (
	AssetStatusLabeled  = "LABELED"
	AssetStatusOngoing  = "ONGOING"
	AssetStatusReviewed = "REVIEWED"
	AssetStatusToReview = "TO_REVIEW"
)

// Label event types requested from the annotation platform.
const (
	LabelTypeDefault = "DEFAULT"
	LabelTypeReview  = "REVIEW"
)

// StatusFinished is the classification status that marks a finished asset.
const StatusFinished = "FINISHED"

// FetchedAssetStatuses lists the asset statuses the fetcher asks for.
func FetchedAssetStatuses() []string {
	return []string{AssetStatusLabeled, AssetStatusOngoing, AssetStatusReviewed, AssetStatusToReview}
}

// FetchedLabelTypes lists the label types the fetcher asks for.
func FetchedLabelTypes() []string {
	return []string{LabelTypeDefault, LabelTypeReview}
}

// Author identifies the person behind a label event.
type Author struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// LabelEvent is one labeling or review action recorded against an asset.
type LabelEvent struct {
	AssetID        string          `json:"asset_id"`
	Author         Author          `json:"author"`
	SecondsToLabel float64         `json:"seconds_to_label"`
	Response       json.RawMessage `json:"json_response,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Type           string          `json:"type"`
}

// Asset is one unit of labeling work plus everything derived for it.
// Empty strings and nil pointers mean the value is missing.
type Asset struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	Metadata   json.RawMessage `json:"json_metadata,omitempty"`

	// Response is the representative classification response (last fetched label).
	Response json.RawMessage `json:"json_response,omitempty"`
	// Attribution is the author of the attribution event, consumed by derivation.
	Attribution *Author `json:"-"`

	Status         string     `json:"status,omitempty"`
	Source         string     `json:"source,omitempty"`
	Domain         string     `json:"domain,omitempty"`
	Author         string     `json:"author,omitempty"`
	Email          string     `json:"email,omitempty"`
	CreatedAt      *time.Time `json:"created_at"`
	SecondsToLabel float64    `json:"seconds_to_label"`
	HoursToLabel   float64    `json:"duration_hours"`
	Points         *float64   `json:"points"`
}

// Attributed reports whether the asset can take part in author- and time-keyed aggregations.
func (a *Asset) Attributed() bool {
	return a.Author != "" && a.CreatedAt != nil
}

// Finished reports whether the asset's derived status is FINISHED.
func (a *Asset) Finished() bool {
	return a.Status == StatusFinished
}

// PointsValue returns the points or 0 when missing.
func (a *Asset) PointsValue() float64 {
	if a.Points == nil {
		return 0
	}
	return *a.Points
}

// Datasets is the read-only result of one fetch cycle.
type Datasets struct {
	CycleID   string    `json:"cycle_id"`
	ProjectID string    `json:"project_id"`
	FetchedAt time.Time `json:"fetched_at"`
	All       []Asset   `json:"all_assets"`
	Finished  []Asset   `json:"finished_assets"`
}

// Partition returns the finished subset of all, keeping the input order.
func Partition(all []Asset) []Asset {
	finished := make([]Asset, 0, len(all))
	for i := range all {
		if all[i].Finished() {
			finished = append(finished, all[i])
		}
	}
	return finished
}
