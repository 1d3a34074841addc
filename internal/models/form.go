package models

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// SelectorType is the value type a content selector extracts.
type SelectorType int

const (
	SelectorString SelectorType = iota
	SelectorInteger
	SelectorFloat
	SelectorDatetime
)

func (t SelectorType) String() string {
	switch t {
	case SelectorString:
		return "string"
	case SelectorInteger:
		return "integer"
	case SelectorFloat:
		return "float"
	case SelectorDatetime:
		return "datetime"
	default:
		return ""
	}
}

// ParseSelectorType parses a selector type name; the empty name is [SelectorString].
func ParseSelectorType(s string) (SelectorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "str":
		return SelectorString, nil
	case "integer", "int":
		return SelectorInteger, nil
	case "float":
		return SelectorFloat, nil
	case "datetime":
		return SelectorDatetime, nil
	default:
		return 0, fmt.Errorf("unknown selector type %q", s)
	}
}

func (t SelectorType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *SelectorType) UnmarshalText(b []byte) error {
	v, err := ParseSelectorType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UrlSelector produces the URLs a task visits, either a fixed URL or one built from another task's results.
type UrlSelector struct {
	URL           string `toml:"url" json:"url"`
	TaskKey       string `toml:"task_key" json:"task_key"`
	SelectorName  string `toml:"selector_name" json:"selector_name"`
	SelectorName2 string `toml:"selector_name2" json:"selector_name2"`
}

// ContentSelector extracts one named value from each visited page.
type ContentSelector struct {
	Name  string       `toml:"name" json:"name"`
	IsKey bool         `toml:"is_key" json:"is_key"`
	XPath string       `toml:"xpath" json:"xpath"`
	Type  SelectorType `toml:"type" json:"type"`
	Regex string       `toml:"regex" json:"regex"`
}

// Form field names, in the order they appear in the task form.
const (
	FieldName             = "name"
	FieldResultsID        = "results_id"
	FieldURL              = "url"
	FieldURLTaskKey       = "url_task_key"
	FieldURLSelectorName  = "url_selector_name"
	FieldURLSelectorName2 = "url_selector_name2"
	FieldSelectorName     = "selector_name"
	FieldSelectorIsKey    = "selector_is_key"
	FieldSelectorXPath    = "selector_xpath"
	FieldSelectorType     = "selector_type"
	FieldSelectorRegex    = "selector_regex"
)

// TaskDefinition is the file representation of a task form.
type TaskDefinition struct {
	Name             string            `toml:"name" json:"name"`
	ResultsID        string            `toml:"results_id" json:"results_id"`
	UrlSelectors     []UrlSelector     `toml:"url_selectors" json:"url_selectors"`
	ContentSelectors []ContentSelector `toml:"content_selectors" json:"content_selectors"`
}

// TaskForm is the task definition currently being edited.
type TaskForm struct {
	Name             string
	ResultsID        string
	UrlSelectors     *RowGroup[UrlSelector]
	ContentSelectors *RowGroup[ContentSelector]
}

// NewTaskForm returns an empty form for the named task with one row in each selector group.
func NewTaskForm(name string) *TaskForm {
	return &TaskForm{
		Name:             name,
		UrlSelectors:     NewRowGroup[UrlSelector](),
		ContentSelectors: NewRowGroup[ContentSelector](),
	}
}

// FormFromDefinition builds a form from a [TaskDefinition].
func FormFromDefinition(def TaskDefinition) *TaskForm {
	return &TaskForm{
		Name:             def.Name,
		ResultsID:        def.ResultsID,
		UrlSelectors:     NewRowGroup(def.UrlSelectors...),
		ContentSelectors: NewRowGroup(def.ContentSelectors...),
	}
}

// Normalize gives a form built without [NewTaskForm] its single-row selector groups.
func (f *TaskForm) Normalize() {
	if f.UrlSelectors == nil {
		f.UrlSelectors = NewRowGroup[UrlSelector]()
	}
	if f.ContentSelectors == nil {
		f.ContentSelectors = NewRowGroup[ContentSelector]()
	}
}

// Definition returns the file representation of the form.
func (f *TaskForm) Definition() TaskDefinition {
	return TaskDefinition{
		Name:             f.Name,
		ResultsID:        f.ResultsID,
		UrlSelectors:     f.UrlSelectors.Rows(),
		ContentSelectors: f.ContentSelectors.Rows(),
	}
}

// LoadTaskFile reads a TOML task definition.
func LoadTaskFile(path string) (*TaskForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var def TaskDefinition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}

	if strings.TrimSpace(def.Name) == "" {
		return nil, fmt.Errorf("task file %s: name is required", path)
	}

	return FormFromDefinition(def), nil
}

// Encode serializes the form as an application/x-www-form-urlencoded body.
//
// Fields keep document order: name, results id, then every URL selector row, then every content selector row.
func (f *TaskForm) Encode() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add(FieldName, f.Name)
	add(FieldResultsID, f.ResultsID)

	for _, row := range f.UrlSelectors.Rows() {
		add(FieldURL, row.URL)
		add(FieldURLTaskKey, row.TaskKey)
		add(FieldURLSelectorName, row.SelectorName)
		add(FieldURLSelectorName2, row.SelectorName2)
	}

	for _, row := range f.ContentSelectors.Rows() {
		add(FieldSelectorName, row.Name)
		add(FieldSelectorIsKey, strconv.FormatBool(row.IsKey))
		add(FieldSelectorXPath, row.XPath)
		add(FieldSelectorType, row.Type.String())
		add(FieldSelectorRegex, row.Regex)
	}

	return b.String()
}

// DecodeTaskForm rebuilds a form from a parsed form body. Row fields are aligned by position.
func DecodeTaskForm(values url.Values) (*TaskForm, error) {
	form := &TaskForm{Name: values.Get(FieldName), ResultsID: values.Get(FieldResultsID)}

	urls := values[FieldURL]
	urlRows := make([]UrlSelector, len(urls))
	for i := range urls {
		urlRows[i] = UrlSelector{
			URL:           urls[i],
			TaskKey:       nth(values[FieldURLTaskKey], i),
			SelectorName:  nth(values[FieldURLSelectorName], i),
			SelectorName2: nth(values[FieldURLSelectorName2], i),
		}
	}

	names := values[FieldSelectorName]
	contentRows := make([]ContentSelector, len(names))
	for i := range names {
		typ, err := ParseSelectorType(nth(values[FieldSelectorType], i))
		if err != nil {
			return nil, fmt.Errorf("content selector %d: %w", i, err)
		}
		isKey, _ := strconv.ParseBool(nth(values[FieldSelectorIsKey], i))
		contentRows[i] = ContentSelector{
			Name:  names[i],
			IsKey: isKey,
			XPath: nth(values[FieldSelectorXPath], i),
			Type:  typ,
			Regex: nth(values[FieldSelectorRegex], i),
		}
	}

	form.UrlSelectors = NewRowGroup(urlRows...)
	form.ContentSelectors = NewRowGroup(contentRows...)
	return form, nil
}

func nth(vs []string, i int) string {
	if i < len(vs) {
		return vs[i]
	}
	return ""
}

// SelectorNames lists the content selector names in order, skipping blanks.
func (f *TaskForm) SelectorNames() []string {
	var names []string
	for _, row := range f.ContentSelectors.Rows() {
		if row.Name != "" {
			names = append(names, row.Name)
		}
	}
	return names
}

// KeySelectors returns the content selectors flagged as keys.
func (f *TaskForm) KeySelectors() []ContentSelector {
	var keys []ContentSelector
	for _, row := range f.ContentSelectors.Rows() {
		if row.IsKey {
			keys = append(keys, row)
		}
	}
	return keys
}
