// Package models defines the client-side entities of a webscraper task page.
//
// Nothing here is persisted by the server on our behalf; these types mirror what the page holds in memory:
//   - [TaskForm] : the task definition being edited, serialized as the task form body
//   - [RowGroup] : a repeatable group of selector rows that never drops below one row
//   - [Status] : the observed execution status of a task, distinguishing finished from unknown
//   - [ViewMode] : simple/advanced view, persisted in the page location fragment
//   - [Activity] : the locally recorded outcome of one task operation
package models
