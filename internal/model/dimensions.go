package model

import (
	"math"
	"strings"
)

// Recognized part types. Japanese labels from imported spreadsheets are
// accepted as aliases.
const (
	PartTypeSheetMetal = "sheet_metal"
	PartTypeCylinder   = "cylinder"

	partTypeSheetMetalJA = "板金"
	partTypeCylinderJA   = "円筒"
)

// PartKind is the formula family a part type selects.
type PartKind int

const (
	KindOther PartKind = iota
	KindSheetMetal
	KindCylinder
)

// KindOf maps a free-text part type to its formula family.
func KindOf(partType string) PartKind {
	switch strings.TrimSpace(partType) {
	case PartTypeSheetMetal, partTypeSheetMetalJA:
		return KindSheetMetal
	case PartTypeCylinder, partTypeCylinderJA:
		return KindCylinder
	default:
		return KindOther
	}
}

// DimensionData is the wire form of a row's dimensions: every numeric field
// is optional and measured in millimeters.
type DimensionData struct {
	PartType  string   `json:"partType"`
	Length    *float64 `json:"length,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Thickness *float64 `json:"thickness,omitempty"`
	Diameter  *float64 `json:"diameter,omitempty"`
	Radius    *float64 `json:"radius,omitempty"`
	Custom    string   `json:"custom,omitempty"`
}

// Shape is the closed set of per-part-type dimension variants.
type Shape interface {
	shape()
}

// SheetMetal carries the dimensions used by the plate weight and painting
// area formulas. A zero field means the value was not supplied.
type SheetMetal struct {
	Length    float64
	Width     float64
	Thickness float64
	Height    float64
}

// Cylinder carries the dimensions used by the cylinder weight formula.
type Cylinder struct {
	Diameter float64
	Height   float64
}

// Other is any part whose weight is entered by hand.
type Other struct {
	Custom string
}

func (SheetMetal) shape() {}
func (Cylinder) shape()   {}
func (Other) shape()      {}

// Shape projects the sparse bag into the variant selected by partType.
// Missing, non-finite and non-positive numbers project to 0.
func (d DimensionData) Shape(partType string) Shape {
	switch KindOf(partType) {
	case KindSheetMetal:
		return SheetMetal{
			Length:    Positive(d.Length),
			Width:     Positive(d.Width),
			Thickness: Positive(d.Thickness),
			Height:    Positive(d.Height),
		}
	case KindCylinder:
		return Cylinder{Diameter: Positive(d.Diameter), Height: Positive(d.Height)}
	default:
		return Other{Custom: d.Custom}
	}
}

// Clone copies every pointer field.
func (d DimensionData) Clone() DimensionData {
	d.Length = clonePtr(d.Length)
	d.Width = clonePtr(d.Width)
	d.Height = clonePtr(d.Height)
	d.Thickness = clonePtr(d.Thickness)
	d.Diameter = clonePtr(d.Diameter)
	d.Radius = clonePtr(d.Radius)
	return d
}

// Equal reports whether both bags hold the same values. Nil and set fields
// are never equal.
func (d DimensionData) Equal(o DimensionData) bool {
	return d.PartType == o.PartType &&
		d.Custom == o.Custom &&
		ptrEqual(d.Length, o.Length) &&
		ptrEqual(d.Width, o.Width) &&
		ptrEqual(d.Height, o.Height) &&
		ptrEqual(d.Thickness, o.Thickness) &&
		ptrEqual(d.Diameter, o.Diameter) &&
		ptrEqual(d.Radius, o.Radius)
}

// Positive dereferences v, returning 0 for nil, NaN, ±Inf and values <= 0.
func Positive(v *float64) float64 {
	if v == nil {
		return 0
	}
	return PositiveValue(*v)
}

// PositiveValue returns v when it is finite and > 0, otherwise 0.
func PositiveValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// Float returns a pointer to v. Handy for building dimension literals.
func Float(v float64) *float64 {
	return &v
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func ptrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
