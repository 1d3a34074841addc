// Package ui implements the task page as an interactive terminal interface using bubbletea's Elm architecture.
//
// The page shows the URL selector and content selector regions of the form, a notification line,
// the poll status and, in the advanced view, the selector details and the results-properties list.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Remote operations run
// as commands; the controller's notifications, navigation and prompts flow back through a [Bridge] so a
// poller goroutine never blocks on rendering.
//
// Keyboard bindings (ctrl+s, x, t, D, X, a, n, r, +/-, ]/[, q) are listed with contextual help via
// charmbracelet/bubbles/help.
package ui
