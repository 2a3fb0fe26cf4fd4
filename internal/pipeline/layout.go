package pipeline

import "strings"

// Layout styles understood by the renderer.
const (
	LayoutStandardBullet = "Standard Bullet"
	LayoutFlowchart      = "Flowchart"
	LayoutArchitecture   = "Architecture"
	LayoutKeyMetric      = "Key Metric"
	LayoutROI            = "ROI"
	LayoutSplitData      = "Split Data"
)

// Layouts is the controlled layout vocabulary in display order.
var Layouts = []string{
	LayoutStandardBullet,
	LayoutFlowchart,
	LayoutArchitecture,
	LayoutKeyMetric,
	LayoutROI,
	LayoutSplitData,
}

var layoutAliases = map[string]string{
	"standardbullet": LayoutStandardBullet,
	"bullet":         LayoutStandardBullet,
	"bullets":        LayoutStandardBullet,
	"flowchart":      LayoutFlowchart,
	"flow":           LayoutFlowchart,
	"process":        LayoutFlowchart,
	"architecture":   LayoutArchitecture,
	"keymetric":      LayoutKeyMetric,
	"keymetrics":     LayoutKeyMetric,
	"metric":         LayoutKeyMetric,
	"metrics":        LayoutKeyMetric,
	"roi":            LayoutROI,
	"splitdata":      LayoutSplitData,
	"split":          LayoutSplitData,
}

// NormalizeLayout maps a model-chosen layout name onto the vocabulary,
// ignoring case, spaces, hyphens, and underscores. Unknown names become
// Standard Bullet.
func NormalizeLayout(style string) string {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(style))

	if v, ok := layoutAliases[key]; ok {
		return v
	}
	return LayoutStandardBullet
}
