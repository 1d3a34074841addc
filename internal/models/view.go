package models

import "strings"

// AdvancedFragment is the location fragment that marks the advanced view.
const AdvancedFragment = "advanced"

// ViewMode selects whether the advanced region of the task page is shown.
type ViewMode int

const (
	SimpleView ViewMode = iota
	AdvancedView
)

// ViewFromFragment reads the view mode from a location fragment, with or without the leading '#'.
func ViewFromFragment(fragment string) ViewMode {
	if strings.TrimPrefix(fragment, "#") == AdvancedFragment {
		return AdvancedView
	}
	return SimpleView
}

// ToggleFromFragment returns the view a toggle switches to from a location fragment.
//
// Any fragment is cleared back to the simple view; only an empty fragment opens the advanced view.
func ToggleFromFragment(fragment string) ViewMode {
	if strings.TrimPrefix(fragment, "#") != "" {
		return SimpleView
	}
	return AdvancedView
}

// Fragment returns the location fragment that persists v.
func (v ViewMode) Fragment() string {
	if v == AdvancedView {
		return AdvancedFragment
	}
	return ""
}

// Toggle returns the other view mode.
func (v ViewMode) Toggle() ViewMode {
	if v == AdvancedView {
		return SimpleView
	}
	return AdvancedView
}

// ShowAdvanced reports whether the advanced region is visible.
func (v ViewMode) ShowAdvanced() bool { return v == AdvancedView }

// ToggleLabel is the caption of the control that switches away from v.
func (v ViewMode) ToggleLabel() string {
	if v == AdvancedView {
		return "Simple View"
	}
	return "Advanced View"
}

func (v ViewMode) String() string {
	if v == AdvancedView {
		return "advanced"
	}
	return "simple"
}
