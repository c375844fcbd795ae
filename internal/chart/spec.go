// Package chart turns backend-chosen chart configurations into rendered charts.
package chart

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

type Kind string

const (
	KindBar      Kind = "bar"
	KindLine     Kind = "line"
	KindArea     Kind = "area"
	KindPie      Kind = "pie"
	KindComposed Kind = "composed"
	KindRadar    Kind = "radar"
	KindRadial   Kind = "radial"
)

const (
	defaultCategoryKey = "label"
	fallbackCategory   = "name"
	defaultValueKey    = "value"
)

// Spec is a chart configuration as sent by the summarization service.
type Spec struct {
	ChartType string           `json:"chart_type"`
	Data      []map[string]any `json:"data"`
	XAxisKey  string           `json:"x_axis_key"`
	DataKey   string           `json:"data_key"`
	DataKey2  string           `json:"data_key_2"`
	XLabel    string           `json:"x_label"`
	YLabel    string           `json:"y_label"`
	Title     string           `json:"title"`
}

// Plan is a resolved Spec: the rendering path, the keys actually used and the
// extracted series.
type Plan struct {
	Kind         Kind
	Title        string
	XLabel       string
	YLabel       string
	CategoryKey  string
	ValueKey     string
	SecondaryKey string
	Categories   []string
	Values       []float64
	Secondary    []float64
}

func ParseKind(chartType string) Kind {
	switch strings.ToLower(strings.TrimSpace(chartType)) {
	case "line":
		return KindLine
	case "area":
		return KindArea
	case "pie", "donut", "doughnut":
		return KindPie
	case "composed":
		return KindComposed
	case "radar":
		return KindRadar
	case "radial", "radialbar", "radial_bar":
		return KindRadial
	default:
		return KindBar
	}
}

// Resolve selects the rendering path for spec and fills in missing keys.
// It reports false when there is nothing to draw.
func Resolve(spec Spec) (Plan, bool) {
	if len(spec.Data) == 0 {
		return Plan{}, false
	}

	p := Plan{
		Kind:   ParseKind(spec.ChartType),
		Title:  strings.TrimSpace(spec.Title),
		XLabel: strings.TrimSpace(spec.XLabel),
		YLabel: strings.TrimSpace(spec.YLabel),
	}

	first := spec.Data[0]
	p.CategoryKey = strings.TrimSpace(spec.XAxisKey)
	if p.CategoryKey == "" {
		p.CategoryKey = categoryKey(first)
	}
	p.ValueKey = strings.TrimSpace(spec.DataKey)
	if p.ValueKey == "" {
		p.ValueKey = valueKey(first, p.CategoryKey)
	}
	if p.Kind == KindComposed {
		p.SecondaryKey = strings.TrimSpace(spec.DataKey2)
		if p.SecondaryKey == "" {
			p.SecondaryKey = valueKey(first, p.CategoryKey, p.ValueKey)
		}
	}

	for i, rec := range spec.Data {
		p.Categories = append(p.Categories, category(rec, p.CategoryKey, i))
		p.Values = append(p.Values, number(rec[p.ValueKey]))
		if p.Kind == KindComposed {
			p.Secondary = append(p.Secondary, number(rec[p.SecondaryKey]))
		}
	}
	return p, true
}

func categoryKey(rec map[string]any) string {
	if _, ok := rec[defaultCategoryKey]; ok {
		return defaultCategoryKey
	}
	if _, ok := rec[fallbackCategory]; ok {
		return fallbackCategory
	}
	for _, k := range sortedKeys(rec) {
		if _, ok := rec[k].(string); ok {
			return k
		}
	}
	return defaultCategoryKey
}

// valueKey picks "value" when present, otherwise the first numeric key not in
// exclude. With more than one excluded key the last one is the fallback.
func valueKey(rec map[string]any, exclude ...string) string {
	if _, ok := rec[defaultValueKey]; ok && !contains(exclude, defaultValueKey) {
		return defaultValueKey
	}
	for _, k := range sortedKeys(rec) {
		if contains(exclude, k) {
			continue
		}
		if isNumeric(rec[k]) {
			return k
		}
	}
	if len(exclude) > 1 {
		return exclude[len(exclude)-1]
	}
	return defaultValueKey
}

func category(rec map[string]any, key string, index int) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return cast.ToString(index + 1)
	}
	return cast.ToString(v)
}

func number(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return true
	}
	return false
}

func sortedKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
