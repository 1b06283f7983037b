package model

import "time"

// LineItem is one row of the cost-detail table.
type LineItem struct {
	ID          string        `json:"id"`
	ModelNumber string        `json:"modelNumber"`
	Name        string        `json:"name"`
	PartType    string        `json:"partType"`
	Material    string        `json:"material"`
	Dimensions  DimensionData `json:"dimensions"`
	Quantity    float64       `json:"quantity"`
	Weight      float64       `json:"weight"`
	UnitPrice   float64       `json:"unitPrice"`
	Price       float64       `json:"price"`
	AutoDisplay bool          `json:"autoDisplay"`
	IsAuto      bool          `json:"isAuto"`

	// Provenance flags. They never take part in calculation.
	IsAutoInput    bool `json:"isAutoInput"`
	IsTemplateDiff bool `json:"isTemplateDiff"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// MergeKey identifies rows describing the same part across source files.
type MergeKey struct {
	ModelNumber string
	Name        string
}

// Key returns the composite merge key of the row.
func (li LineItem) Key() MergeKey {
	return MergeKey{ModelNumber: li.ModelNumber, Name: li.Name}
}

// Clone returns a copy of the row that shares no pointers with the receiver.
func (li LineItem) Clone() LineItem {
	li.Dimensions = li.Dimensions.Clone()
	return li
}

// CloneRows deep-copies a slice of rows. A nil input yields an empty slice.
func CloneRows(rows []LineItem) []LineItem {
	out := make([]LineItem, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}
