package model

import "time"

// Production units accepted on ProjectInfo.
const (
	UnitSet   = "台"
	UnitPiece = "個"
	UnitLot   = "式"
)

// ProjectInfo is the descriptive header of an estimate.
type ProjectInfo struct {
	EstimateNumber      string  `json:"estimateNumber" validate:"required"`
	Customer            string  `json:"customer" validate:"required"`
	DeliveryDestination string  `json:"deliveryDestination" validate:"required"`
	EquipmentName       string  `json:"equipmentName" validate:"required"`
	ProductionQuantity  float64 `json:"productionQuantity" validate:"gte=0"`
	ProductionUnit      string  `json:"productionUnit" validate:"required,oneof=台 個 式"`
	DeliveryDate        string  `json:"deliveryDate" validate:"required,deliverydate"`
	Model               string  `json:"model" validate:"required"`
	EquipmentShape      string  `json:"equipmentShape" validate:"required"`
	Weight              float64 `json:"weight" validate:"gte=0"`
}

// RemarksData holds the free-form notes printed on the last sheet.
type RemarksData struct {
	Remarks                 []string `json:"remarks"`
	MaterialCostNotes       []string `json:"materialCostNotes"`
	InternalProcessingNotes []string `json:"internalProcessingNotes"`
	ExternalProcessingNotes []string `json:"externalProcessingNotes"`
}

// ApprovalInfo records who assessed and approved an estimate.
type ApprovalInfo struct {
	Assessor       string `json:"assessor"`
	AssessmentDate string `json:"assessmentDate"`
	Approver       string `json:"approver"`
	ApprovalDate   string `json:"approvalDate"`
	FinalApprover  string `json:"finalApprover"`
	Seal1          string `json:"seal1"`
	Seal2          string `json:"seal2"`
	Seal3          string `json:"seal3"`
	Seal4          string `json:"seal4"`
	PersonInCharge string `json:"personInCharge"`
}

// Estimate is the root aggregate persisted by the estimate store.
type Estimate struct {
	ID              string       `json:"id"`
	TemplateID      string       `json:"templateId,omitempty"`
	ProjectInfo     ProjectInfo  `json:"projectInfo"`
	TableData       []LineItem   `json:"tableData"`
	CostCalculation CostSummary  `json:"costCalculation"`
	RemarksData     RemarksData  `json:"remarksData"`
	ApprovalInfo    ApprovalInfo `json:"approvalInfo"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Template is a reusable set of line items.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TableData   []LineItem `json:"tableData"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Material is a density table entry in kg/m³.
type Material struct {
	Name    string  `json:"name"`
	Density float64 `json:"density"`
}
