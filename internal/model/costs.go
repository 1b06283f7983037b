package model

// AutomaticCosts are recomputed from the line items on every pass.
type AutomaticCosts struct {
	MaterialCost   float64 `json:"materialCost"`
	ProcessingCost float64 `json:"processingCost"`
	PaintingCost   float64 `json:"paintingCost"`
	PaintingArea   float64 `json:"paintingArea"`
}

// ManualCosts are entered by a person and carried over verbatim.
type ManualCosts struct {
	ExternalInspectionCost float64 `json:"externalInspectionCost"`
	TransportationCost     float64 `json:"transportationCost"`
	FactoryInspectionCost  float64 `json:"factoryInspectionCost"`
	DesignCost             float64 `json:"designCost"`
}

// CostSummary is the composed cost calculation of an estimate. It serializes
// flat, so the embedded cost groups appear as top-level JSON fields.
type CostSummary struct {
	AutomaticCosts
	ManualCosts

	DirectCost        float64 `json:"directCost"`
	ManufacturingCost float64 `json:"manufacturingCost"`
	TotalCost         float64 `json:"totalCost"`
}

// Manual field names as they appear on the wire.
var ManualCostFields = []string{
	"externalInspectionCost",
	"transportationCost",
	"factoryInspectionCost",
	"designCost",
}

// Automatic field names as they appear on the wire.
var AutomaticCostFields = []string{
	"materialCost",
	"processingCost",
	"paintingCost",
	"paintingArea",
}

// ManualCostsPatch is a partial manual-cost update; nil fields are left as is.
type ManualCostsPatch struct {
	ExternalInspectionCost *float64 `json:"externalInspectionCost,omitempty"`
	TransportationCost     *float64 `json:"transportationCost,omitempty"`
	FactoryInspectionCost  *float64 `json:"factoryInspectionCost,omitempty"`
	DesignCost             *float64 `json:"designCost,omitempty"`
}

// Apply returns m with every non-nil field of p replaced.
func (p ManualCostsPatch) Apply(m ManualCosts) ManualCosts {
	if p.ExternalInspectionCost != nil {
		m.ExternalInspectionCost = *p.ExternalInspectionCost
	}
	if p.TransportationCost != nil {
		m.TransportationCost = *p.TransportationCost
	}
	if p.FactoryInspectionCost != nil {
		m.FactoryInspectionCost = *p.FactoryInspectionCost
	}
	if p.DesignCost != nil {
		m.DesignCost = *p.DesignCost
	}
	return m
}
