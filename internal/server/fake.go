package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/services"
)

// TaskPagePath is where the development server sends the browser after creating a task.
const TaskPagePath = "/webscraper/task"

// Webscraper is an in-memory implementation of the webscraper task endpoints.
//
// Scheduling a task queues one progress message per URL selector row followed by the empty status,
// and each status request consumes one message. It does not scrape anything.
type Webscraper struct {
	mu      sync.Mutex
	tasks   map[string]*models.TaskForm
	queue   map[string][]string
	results map[string][]string
}

var _ Handler = (*Webscraper)(nil)

// NewWebscraper returns an empty store.
func NewWebscraper() *Webscraper {
	return &Webscraper{
		tasks:   map[string]*models.TaskForm{},
		queue:   map[string][]string{},
		results: map[string][]string{},
	}
}

// Put stores form, replacing a task of the same name.
func (ws *Webscraper) Put(form *models.TaskForm) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.tasks[form.Name] = form
}

// Task returns the stored form of name.
func (ws *Webscraper) Task(name string) (*models.TaskForm, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	form, ok := ws.tasks[name]
	return form, ok
}

// Names lists the stored task names in sorted order.
func (ws *Webscraper) Names() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	names := make([]string, 0, len(ws.tasks))
	for name := range ws.tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Results returns the stored result rows of name.
func (ws *Webscraper) Results(name string) []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]string(nil), ws.results[name]...)
}

// SeedExample stores the sample injury-history task.
func (ws *Webscraper) SeedExample() {
	ws.Put(models.FormFromDefinition(models.TaskDefinition{
		Name: "test",
		UrlSelectors: []models.UrlSelector{
			{URL: "http://www.transfermarkt.de/spieler/verletzungen/spieler/10"},
		},
		ContentSelectors: []models.ContentSelector{
			{Name: "spieler_id", IsKey: true, Type: models.SelectorInteger, XPath: `(//a[@class="megamenu"])[1]/@href`},
			{Name: "injury", Type: models.SelectorString, XPath: `//table[@class="items"]//tr/td[2]/text()`},
			{Name: "from", IsKey: true, Type: models.SelectorDatetime, XPath: `//table[@class="items"]//tr/td[3]/text()`},
		},
	}))
}

// Routes returns the HTTP routes this handler serves.
func (ws *Webscraper) Routes() []string {
	return []string{
		services.SaveTaskPath,
		services.TaskStatusPath,
		services.SchedulePath,
		services.TestTaskPath,
		services.DeleteResultsPath,
		services.DeleteTaskPath,
		services.SelectorNamesPath,
		services.NewTaskPath,
	}
}

// ServeHTTP dispatches on the request path.
func (ws *Webscraper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type route struct {
		method  string
		handler func(http.ResponseWriter, *http.Request, string)
	}
	routes := map[string]route{
		services.SaveTaskPath:      {http.MethodPost, ws.saveTask},
		services.TaskStatusPath:    {http.MethodGet, ws.taskStatus},
		services.SchedulePath:      {http.MethodPost, ws.schedule},
		services.TestTaskPath:      {http.MethodPost, ws.testTask},
		services.DeleteResultsPath: {http.MethodPost, ws.deleteResults},
		services.DeleteTaskPath:    {http.MethodPost, ws.deleteTask},
		services.SelectorNamesPath: {http.MethodGet, ws.selectorNames},
		services.NewTaskPath:       {http.MethodGet, ws.newTask},
	}

	rt, ok := routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method != rt.method {
		w.Header().Set("Allow", rt.method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	rt.handler(w, r, r.Form.Get("name"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// lookup answers 400 for a missing name and 404 for an unknown task.
func (ws *Webscraper) lookup(w http.ResponseWriter, name string) (*models.TaskForm, bool) {
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return nil, false
	}
	form, ok := ws.tasks[name]
	if !ok {
		http.Error(w, fmt.Sprintf("task %q not found", name), http.StatusNotFound)
		return nil, false
	}
	return form, true
}

func (ws *Webscraper) saveTask(w http.ResponseWriter, r *http.Request, name string) {
	form, err := models.DecodeTaskForm(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(form.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	ws.Put(form)
	w.WriteHeader(http.StatusOK)
}

func (ws *Webscraper) taskStatus(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if _, ok := ws.lookup(w, name); !ok {
		return
	}

	status := ""
	if q := ws.queue[name]; len(q) > 0 {
		status, ws.queue[name] = q[0], q[1:]
	}
	writeJSON(w, map[string]string{"status": status})
}

func (ws *Webscraper) schedule(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	form, ok := ws.lookup(w, name)
	if !ok {
		return
	}

	urls := form.UrlSelectors.Rows()
	queue := make([]string, 0, len(urls))
	for i := range urls {
		queue = append(queue, fmt.Sprintf("Task %s: %d of %d urls left", name, len(urls)-i, len(urls)))
	}
	ws.queue[name] = queue
	ws.results[name] = append(ws.results[name], resultRows(form)...)
	w.WriteHeader(http.StatusOK)
}

func (ws *Webscraper) testTask(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	form, ok := ws.lookup(w, name)
	if !ok {
		return
	}

	rows := resultRows(form)
	if len(rows) > 1 {
		rows = rows[:1]
	}
	writeJSON(w, map[string]string{"results": strings.Join(rows, "\n")})
}

func (ws *Webscraper) deleteResults(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if _, ok := ws.lookup(w, name); !ok {
		return
	}
	delete(ws.results, name)
	w.WriteHeader(http.StatusOK)
}

func (ws *Webscraper) deleteTask(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if _, ok := ws.lookup(w, name); !ok {
		return
	}
	delete(ws.tasks, name)
	delete(ws.queue, name)
	delete(ws.results, name)
	w.WriteHeader(http.StatusOK)
}

func (ws *Webscraper) selectorNames(w http.ResponseWriter, r *http.Request, name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	form, ok := ws.lookup(w, name)
	if !ok {
		return
	}

	names := form.SelectorNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (ws *Webscraper) newTask(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	ws.mu.Lock()
	if _, exists := ws.tasks[name]; !exists {
		ws.tasks[name] = models.NewTaskForm(name)
	}
	ws.mu.Unlock()

	http.Redirect(w, r, TaskPagePath+"?"+url.Values{"name": {name}}.Encode(), http.StatusSeeOther)
}

// resultRows fabricates one result row per URL selector row from the content selector names.
func resultRows(form *models.TaskForm) []string {
	selectors := form.ContentSelectors.Rows()
	urls := form.UrlSelectors.Rows()
	rows := make([]string, 0, len(urls))

	for i := range urls {
		fields := make([]string, 0, len(selectors))
		for _, s := range selectors {
			if s.Name == "" {
				continue
			}
			fields = append(fields, fmt.Sprintf("%s=<%s %d>", s.Name, s.Type, i+1))
		}
		rows = append(rows, strings.Join(fields, " "))
	}
	return rows
}
