// package formatter renders activity history and task definitions in various formats (CSV, Markdown, plain text, JSON, TOML)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
)

// Format is an output format name.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
)

const timeLayout = "2006-01-02 15:04:05"

// ParseFormat validates a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// ActivityToCSV converts activity entries to CSV with columns: ID, Time, Task, Action, Outcome, Message
func ActivityToCSV(entries []*models.Activity) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Time", "Task", "Action", "Outcome", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range entries {
		record := []string{
			a.ID,
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.Task,
			string(a.Action),
			a.Outcome(),
			a.Message,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ActivityToMarkdown renders the history of task as a Markdown table
func ActivityToMarkdown(task string, entries []*models.Activity) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", task))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(entries)))

	if len(entries) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Time | Action | Outcome | Message |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, a := range entries {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			a.CreatedAt.Local().Format(timeLayout), a.Action, a.Outcome(), escapeCell(a.Message)))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ActivityToText renders activity entries one per line
func ActivityToText(task string, entries []*models.Activity) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Task: %s\n", task))
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(entries)))

	for i, a := range entries {
		mark := "✓"
		if !a.OK {
			mark = "✗"
		}
		line := fmt.Sprintf("%d. %s %s %s", i+1, a.CreatedAt.Local().Format(timeLayout), mark, a.Action)
		if a.Message != "" {
			line += ": " + firstLine(a.Message)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// WriteActivity renders entries in format f to w.
func WriteActivity(w io.Writer, f Format, task string, entries []*models.Activity) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = ActivityToCSV(entries)
	case FormatMarkdown:
		data, err = ActivityToMarkdown(task, entries)
	case FormatJSON:
		data, err = shared.MarshalJSON(entries, true)
		data = append(data, '\n')
	case FormatText:
		data, err = ActivityToText(task, entries)
	default:
		return fmt.Errorf("%w: format %q is not supported for history", shared.ErrInvalidFlag, f)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// TaskToTOML encodes the form as a task definition file that [models.LoadTaskFile] reads back.
func TaskToTOML(form *models.TaskForm) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(form.Definition()); err != nil {
		return nil, fmt.Errorf("failed to encode task definition: %w", err)
	}
	return buf.Bytes(), nil
}

// TaskToText renders the form as a readable definition listing every selector.
func TaskToText(form *models.TaskForm) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Task(\n    name=%s,\n", strconv.Quote(form.Name)))
	if form.ResultsID != "" {
		buf.WriteString(fmt.Sprintf("    results_id=%s,\n", strconv.Quote(form.ResultsID)))
	}

	buf.WriteString("    url_selectors=[")
	for i, s := range form.UrlSelectors.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(fmt.Sprintf("\n      UrlSelector(url=%s, task_key=%s, selector_name=%s, selector_name2=%s)",
			strconv.Quote(s.URL), strconv.Quote(s.TaskKey), strconv.Quote(s.SelectorName), strconv.Quote(s.SelectorName2)))
	}
	buf.WriteString("\n    ],\n")

	buf.WriteString("    selectors=[")
	for i, s := range form.ContentSelectors.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(fmt.Sprintf("\n      Selector(name=%s, is_key=%t, xpath=%s, type=%s, regex=%s)",
			strconv.Quote(s.Name), s.IsKey, strconv.Quote(s.XPath), strings.ToUpper(s.Type.String()), strconv.Quote(s.Regex)))
	}
	buf.WriteString("\n    ]\n)\n")

	return buf.Bytes(), nil
}

// WriteTask renders form in format f to w.
func WriteTask(w io.Writer, f Format, form *models.TaskForm) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatTOML:
		data, err = TaskToTOML(form)
	case FormatJSON:
		data, err = shared.MarshalJSON(form.Definition(), true)
		data = append(data, '\n')
	case FormatText:
		data, err = TaskToText(form)
	default:
		return fmt.Errorf("%w: format %q is not supported for task export", shared.ErrInvalidFlag, f)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write task: %w", err)
	}
	return nil
}

// WriteTaskFile writes the TOML definition of form to path.
func WriteTaskFile(form *models.TaskForm, path string) error {
	data, err := TaskToTOML(form)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	return nil
}
