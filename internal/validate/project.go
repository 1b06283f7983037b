package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
)

// DateLayouts are the accepted delivery date formats.
var DateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	err := v.RegisterValidation("deliverydate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	if err != nil {
		panic(fmt.Sprintf("register deliverydate validation: %v", err))
	}
	return v
}

var projectInfoMessages = map[string]string{
	"estimateNumber":      "見積番号は必須です",
	"customer":            "客先は必須です",
	"deliveryDestination": "向先は必須です",
	"equipmentName":       "機器名は必須です",
	"productionQuantity":  "製作数量は0以上の数値で入力してください",
	"productionUnit":      "単位を選択してください",
	"model":               "機種は必須です",
	"equipmentShape":      "機器形状は必須です",
	"weight":              "重量は0以上の数値で入力してください",
}

// ProjectInfo checks the estimate header. Text fields are trimmed before the
// required checks.
func ProjectInfo(info model.ProjectInfo) Result {
	info = trimProjectInfo(info)

	var res Result
	err := structValidator.Struct(info)
	if err == nil {
		return res
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.add("projectInfo", err.Error())
		return res
	}
	for _, fe := range errs {
		res.add(fe.Field(), projectInfoMessage(fe))
	}
	return res
}

func projectInfoMessage(fe validator.FieldError) string {
	if fe.Field() == "deliveryDate" {
		if fe.Tag() == "required" {
			return "納期は必須です"
		}
		return "有効な日付を入力してください"
	}
	if msg, ok := projectInfoMessages[fe.Field()]; ok {
		return msg
	}
	return fe.Field() + "が不正です"
}

// NormalizeProjectInfo trims text fields, defaults the unit to 台 and the
// delivery date to today, and rewrites parseable dates as YYYY-MM-DD.
func NormalizeProjectInfo(info model.ProjectInfo, now time.Time) model.ProjectInfo {
	info = trimProjectInfo(info)
	if info.ProductionUnit == "" {
		info.ProductionUnit = model.UnitSet
	}
	if info.DeliveryDate == "" {
		info.DeliveryDate = now.Format("2006-01-02")
	} else if d, ok := ParseDate(info.DeliveryDate); ok {
		info.DeliveryDate = d.Format("2006-01-02")
	}
	return info
}

// ParseDate parses s with any of DateLayouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Struct validates a request DTO with its `validate` tags.
func Struct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	var res Result
	for _, fe := range errs {
		res.add(fe.Field(), fe.Field()+" "+tagMessage(fe))
	}
	return res.Err("validation failed")
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "は必須です"
	case "gte":
		return "は" + fe.Param() + "以上である必要があります"
	case "oneof":
		return "は " + fe.Param() + " のいずれかである必要があります"
	}
	return "が不正です"
}

func trimProjectInfo(info model.ProjectInfo) model.ProjectInfo {
	info.EstimateNumber = strings.TrimSpace(info.EstimateNumber)
	info.Customer = strings.TrimSpace(info.Customer)
	info.DeliveryDestination = strings.TrimSpace(info.DeliveryDestination)
	info.EquipmentName = strings.TrimSpace(info.EquipmentName)
	info.ProductionUnit = strings.TrimSpace(info.ProductionUnit)
	info.DeliveryDate = strings.TrimSpace(info.DeliveryDate)
	info.Model = strings.TrimSpace(info.Model)
	info.EquipmentShape = strings.TrimSpace(info.EquipmentShape)
	return info
}
