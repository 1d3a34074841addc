// Package tasks drives the webscraper task page from the terminal.
//
// # Controller
//
// [Controller] binds user actions to the remote operations of one task page:
//
//  1. [Controller.Save] : posts the serialized form and flashes "Successfully Saved"
//  2. [Controller.Schedule] : save, schedule, reload, then poll the task status
//  3. [Controller.Test] : save, run once, flash the result text
//  4. [Controller.DeleteResults] : delete stored results, reload
//  5. [Controller.DeleteTask] : delete the task, navigate to "/"
//
// Save completes before a dependent request is issued and a failed save aborts the
// dependent request. Every failure is flashed as an error through the [Notifier].
//
// The page-local operations (selector rows, the advanced view fragment, the result-property
// options and the new-task prompt) act on controller state only, except for the navigation
// performed by [Controller.PromptNewTask].
//
// # Status Poll
//
// [Poller] is a two-state machine ([PollIdle], [Polling]). Starting a poll cancels the previous
// session. A tick that observes an empty status hides the flash and ends the session; a failed
// request is never read as finished and counts against the failure budget.
//
// # Progress Reporting
//
// Poll transitions ([PollUpdate]) and batch progress ([ProgressUpdate]) are delivered on optional
// channels with select and default so reporting never blocks.
//
// # Batch Runs
//
// [RunBatch] applies status, test or delete-results to many tasks with a worker pool and a
// shared [rate.Limiter].
package tasks
