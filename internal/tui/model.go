package tui

import (
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Tab is a top-level page.
type Tab int

const (
	TabInstances Tab = iota
	TabExecutions
	TabStatistics
)

var tabNames = []string{"Job Instances", "Job Executions", "Statistics"}

var tabPaths = []string{dashboard.PathJobInstances, dashboard.PathJobExecutions, dashboard.PathStatistics}

// TabFor returns the tab shown at path. Unknown paths show the job instances.
func TabFor(path string) Tab {
	for i, p := range tabPaths {
		if p == path {
			return Tab(i)
		}
	}
	return TabInstances
}

// recentDays is the window of the recent executions panel.
const recentDays = 7

// Model is the root Bubble Tea model.
type Model struct {
	app      *dashboard.App
	boundary *dashboard.Boundary
	notify   chan struct{}
	logger   zerolog.Logger

	tab        Tab
	instances  *dashboard.ListView[batch.JobInstance]
	executions *dashboard.ListView[batch.JobExecution]
	stats      *dashboard.StatisticsView
	details    []*detailPage

	filter    textinput.Model
	filtering bool
	spinner   spinner.Model
	cursor    int
	width     int
	height    int
	err       error
}

// New creates the model and opens the page of the app's current location.
func New(app *dashboard.App) (Model, error) {
	ti := textinput.New()
	ti.Prompt = FilterBarPrompt.Render("job name: ")
	ti.CharLimit = 128

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		app:      app,
		boundary: dashboard.NewBoundary(),
		notify:   make(chan struct{}, 1),
		logger:   logging.NewLogger("tui"),
		filter:   ti,
		spinner:  s,
	}

	if err := m.open(TabFor(app.History().Location().Path)); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init starts the spinner and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listen(m.notify))
}

func listen(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return StateChanged{}
	}
}

// relay forwards a view's change signals into the model's notify channel
// until the view is closed.
func (m Model) relay(changes <-chan struct{}) {
	go func() {
		for range changes {
			select {
			case m.notify <- struct{}{}:
			default:
			}
		}
	}()
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		n := m.app.Focus()
		m.logger.Debug().Int("keys", n).Msg("Terminal focused")
		return m, nil

	case StateChanged:
		m.clampCursor()
		return m, listen(m.notify)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit

	case "1", "2", "3":
		t := Tab(msg.String()[0] - '1')
		if t != m.tab || len(m.details) > 0 {
			m.closeDetails()
			m.err = m.navigate(t)
		}
		return m, nil

	case "j", "down":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "n", "right":
		m.err = m.page(+1)
		return m, nil

	case "p", "left":
		m.err = m.page(-1)
		return m, nil

	case "r":
		m.boundary.Reset()
		m.revalidate()
		return m, nil

	case "/":
		m.filtering = true
		m.filter.SetValue(m.jobName())
		m.filter.CursorEnd()
		return m, tea.Batch(m.filter.Focus(), textinput.Blink)

	case "s":
		if m.tab == TabExecutions && len(m.details) == 0 {
			f := m.executions.Filter()
			f.Status = nextStatus(f.Status)
			m.err = m.executions.ApplyFilter(f)
			m.cursor = 0
		}
		return m, nil

	case "x":
		m.err = m.resetFilters()
		return m, nil

	case "enter":
		m.drill()
		return m, nil

	case "esc":
		m.popDetail()
		return m, nil

	case "[":
		if m.app.History().Back() {
			m.err = m.locationChanged()
		}
		return m, nil

	case "]":
		if m.app.History().Forward() {
			m.err = m.locationChanged()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		m.err = m.applyJobName(m.filter.Value())
		m.cursor = 0
		return m, nil

	case "esc":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// Close releases every open view.
func (m *Model) Close() {
	m.closeDetails()
	m.closeTab()
}

// open opens the view of tab t without touching the history.
func (m *Model) open(t Tab) error {
	m.closeTab()
	m.tab = t
	m.cursor = 0

	switch t {
	case TabInstances:
		lv, err := m.app.OpenJobInstances()
		if err != nil {
			return err
		}
		m.instances = lv
		m.relay(lv.Changes())

	case TabExecutions:
		lv, err := m.app.OpenJobExecutions()
		if err != nil {
			return err
		}
		m.executions = lv
		m.relay(lv.Changes())

	case TabStatistics:
		m.openStatistics(m.app.History().Location().Query().Get("jobName"))
	}
	return nil
}

// navigate pushes the path of tab t and opens it.
func (m *Model) navigate(t Tab) error {
	if err := m.app.Navigate(tabPaths[t]); err != nil {
		return err
	}
	return m.open(t)
}

func (m *Model) openStatistics(jobName string) {
	if m.stats != nil {
		m.stats.Close()
	}
	m.stats = m.app.OpenStatistics(jobName, recentDays)
	m.relay(m.stats.Global.Changes())
	m.relay(m.stats.Recent.Changes())
	m.relay(m.stats.Job.Changes())
}

func (m *Model) closeTab() {
	if m.instances != nil {
		m.instances.Close()
		m.instances = nil
	}
	if m.executions != nil {
		m.executions.Close()
		m.executions = nil
	}
	if m.stats != nil {
		m.stats.Close()
		m.stats = nil
	}
}

func (m *Model) closeDetails() {
	for _, d := range m.details {
		d.close()
	}
	m.details = nil
}

func (m *Model) popDetail() {
	n := len(m.details)
	if n == 0 {
		return
	}
	m.details[n-1].close()
	m.details = m.details[:n-1]
	m.cursor = 0
}

func (m *Model) pushDetail(d *detailPage) {
	if d == nil {
		return
	}
	m.details = append(m.details, d)
	m.relay(d.changes)
	m.cursor = 0
}

func (m *Model) drill() {
	if n := len(m.details); n > 0 {
		if top := m.details[n-1]; top.drill != nil {
			m.pushDetail(top.drill(m.cursor))
		}
		return
	}

	switch m.tab {
	case TabInstances:
		if page, ok := m.instances.Page(); ok && m.cursor < len(page.Content) {
			m.pushDetail(openJobInstance(m.app, page.Content[m.cursor].JobInstanceID))
		}
	case TabExecutions:
		if page, ok := m.executions.Page(); ok && m.cursor < len(page.Content) {
			m.pushDetail(openJobExecution(m.app, page.Content[m.cursor].JobExecutionID))
		}
	}
}

// locationChanged follows a back or forward navigation.
func (m *Model) locationChanged() error {
	t := TabFor(m.app.History().Location().Path)
	m.closeDetails()
	if t != m.tab {
		return m.open(t)
	}

	switch t {
	case TabInstances:
		_, err := m.instances.LocationChanged()
		return err
	case TabExecutions:
		_, err := m.executions.LocationChanged()
		return err
	case TabStatistics:
		if name := m.app.History().Location().Query().Get("jobName"); name != m.stats.JobName() {
			m.openStatistics(name)
		}
	}
	return nil
}

func (m *Model) page(delta int) error {
	if len(m.details) > 0 {
		return nil
	}
	m.cursor = 0
	switch m.tab {
	case TabInstances:
		if delta > 0 {
			return m.instances.NextPage()
		}
		return m.instances.PreviousPage()
	case TabExecutions:
		if delta > 0 {
			return m.executions.NextPage()
		}
		return m.executions.PreviousPage()
	}
	return nil
}

func (m *Model) revalidate() {
	if n := len(m.details); n > 0 {
		m.details[n-1].revalidate()
		return
	}
	switch m.tab {
	case TabInstances:
		m.instances.Revalidate()
	case TabExecutions:
		m.executions.Revalidate()
	case TabStatistics:
		m.stats.Revalidate()
	}
}

func (m *Model) jobName() string {
	switch m.tab {
	case TabInstances:
		return m.instances.Filter().JobName
	case TabExecutions:
		return m.executions.Filter().JobName
	case TabStatistics:
		return m.stats.JobName()
	}
	return ""
}

func (m *Model) applyJobName(name string) error {
	m.closeDetails()
	switch m.tab {
	case TabInstances:
		f := m.instances.Filter()
		f.JobName = name
		return m.instances.ApplyFilter(f)
	case TabExecutions:
		f := m.executions.Filter()
		f.JobName = name
		return m.executions.ApplyFilter(f)
	case TabStatistics:
		if name != m.stats.JobName() {
			m.openStatistics(name)
		}
	}
	return nil
}

func (m *Model) resetFilters() error {
	if len(m.details) > 0 {
		return nil
	}
	m.cursor = 0
	switch m.tab {
	case TabInstances:
		return m.instances.ResetFilters()
	case TabExecutions:
		return m.executions.ResetFilters()
	case TabStatistics:
		if m.stats.JobName() != "" {
			m.openStatistics("")
		}
	}
	return nil
}

// snapshot returns the state of the page in front.
func (m *Model) snapshot() fetch.Snapshot {
	if n := len(m.details); n > 0 {
		return m.details[n-1].snapshot()
	}
	switch m.tab {
	case TabInstances:
		return m.instances.Snapshot()
	case TabExecutions:
		return m.executions.Snapshot()
	case TabStatistics:
		return m.stats.Global.Snapshot()
	}
	return fetch.Snapshot{}
}

func (m *Model) rows() int {
	if n := len(m.details); n > 0 {
		return m.details[n-1].rows()
	}
	switch m.tab {
	case TabInstances:
		if page, ok := m.instances.Page(); ok {
			return len(page.Content)
		}
	case TabExecutions:
		if page, ok := m.executions.Page(); ok {
			return len(page.Content)
		}
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := m.rows(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// nextStatus cycles the status filter through all statuses and back to none.
func nextStatus(cur string) string {
	if cur == "" {
		return string(batch.Statuses[0])
	}
	for i, s := range batch.Statuses {
		if string(s) == cur && i+1 < len(batch.Statuses) {
			return string(batch.Statuses[i+1])
		}
	}
	return ""
}

// CurrentTab returns the tab in front (for testing).
func (m Model) CurrentTab() Tab {
	return m.tab
}

// Cursor returns the current cursor position (for testing).
func (m Model) Cursor() int {
	return m.cursor
}

// Depth returns the number of open detail pages (for testing).
func (m Model) Depth() int {
	return len(m.details)
}

// Err returns the error of the last key action (for testing).
func (m Model) Err() error {
	return m.err
}
