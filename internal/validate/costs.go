package validate

import (
	"encoding/json"
	"fmt"
	"math"
)

var costFieldLabels = map[string]string{
	"externalInspectionCost": "外注検査費",
	"transportationCost":     "輸送費",
	"factoryInspectionCost":  "工場検査費",
	"designCost":             "設計費",
}

// Fields checked in order: manual fields first, then every derived field.
var costFields = []string{
	"externalInspectionCost",
	"transportationCost",
	"factoryInspectionCost",
	"designCost",
	"materialCost",
	"processingCost",
	"paintingCost",
	"directCost",
	"manufacturingCost",
	"totalCost",
	"paintingArea",
}

// CostFields checks every cost field present in a decoded update payload.
// Each must be a finite number >= 0. Absent fields are not checked.
func CostFields(payload map[string]any) Result {
	var res Result
	for _, field := range costFields {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		label := field
		if l, ok := costFieldLabels[field]; ok {
			label = l
		}

		v, ok := toFloat(raw)
		switch {
		case !ok || math.IsNaN(v) || math.IsInf(v, 0):
			res.add(field, fmt.Sprintf("%sは数値である必要があります", label))
		case v < 0:
			res.add(field, fmt.Sprintf("%sは0以上である必要があります", label))
		}
	}
	return res
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
