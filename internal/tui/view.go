package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/pagination"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	body, failed := m.renderBody()
	if failed != nil {
		b.WriteString(renderFallback(*failed))
	} else {
		b.WriteString(body)
	}
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(m.filter.View() + "\n")
	}
	if m.err != nil {
		b.WriteString(ErrorStyle.Render("Error: "+dashboard.Describe(m.err)) + "\n")
	}
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = ActiveTab.Render(label)
		} else {
			tabs[i] = InactiveTab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "  " + Muted.Render(m.app.History().Location().String())
}

// renderBody renders the page in front inside the error boundary. An
// authentication error from any loaded resource fails the whole page.
func (m Model) renderBody() (string, *dashboard.Fallback) {
	var body string
	fb, failed := m.boundary.Render(func() error {
		var err error
		body, err = m.renderPage()
		return err
	})
	if failed {
		return "", &fb
	}
	return body, nil
}

func (m Model) renderPage() (string, error) {
	if n := len(m.details); n > 0 {
		top := m.details[n-1]
		return m.renderResource(top.title, top.snapshot(), func() string { return top.render(m.cursor) })
	}

	switch m.tab {
	case TabInstances:
		return m.renderInstances()
	case TabExecutions:
		return m.renderExecutions()
	case TabStatistics:
		return m.renderStatistics()
	}
	return "", nil
}

// renderResource renders the loading, error and data states of one resource.
func (m Model) renderResource(title string, snap fetch.Snapshot, content func() string) (string, error) {
	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n")

	switch dashboard.StateOf(snap) {
	case dashboard.StateIdle:
		b.WriteString(Muted.Render("Nothing selected.") + "\n")
	case dashboard.StateLoading:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case dashboard.StateError:
		if client.IsAuthentication(snap.Err) {
			return "", snap.Err
		}
		b.WriteString(ErrorStyle.Render("Error: "+dashboard.Describe(snap.Err)) + "\n")
	case dashboard.StateReadyWithError:
		if client.IsAuthentication(snap.Err) {
			return "", snap.Err
		}
		b.WriteString(ErrorStyle.Render("Refresh failed: "+dashboard.Describe(snap.Err)) + "\n")
		b.WriteString(content())
	case dashboard.StateReady:
		b.WriteString(content())
	}
	return b.String(), nil
}

func (m Model) renderInstances() (string, error) {
	lv := m.instances
	return m.renderResource("Job Instances"+filterSummary(lv.Filter()), lv.Snapshot(), func() string {
		page, _ := lv.Page()
		var b strings.Builder
		b.WriteString(HeaderRow.Render(fmt.Sprintf("%-8s %-30s %-12s %-20s", "ID", "JOB NAME", "LATEST", "STARTED")) + "\n")
		if len(page.Content) == 0 {
			b.WriteString(Muted.Render("No job instances found.") + "\n")
		}
		for i, ji := range page.Content {
			status, started := "-", "-"
			if le := ji.LatestExecution; le != nil {
				status = renderStatus(le.Status)
				started = le.StartTime.String()
			}
			line := fmt.Sprintf("%-8d %-30s %-12s %-20s", ji.JobInstanceID, truncate(ji.JobName, 30), status, started)
			b.WriteString(row(line, i == m.cursor) + "\n")
		}
		b.WriteString(renderPager(page.Page, page.TotalPages, page.TotalElements))
		return b.String()
	})
}

func (m Model) renderExecutions() (string, error) {
	lv := m.executions
	return m.renderResource("Job Executions"+filterSummary(lv.Filter()), lv.Snapshot(), func() string {
		page, _ := lv.Page()
		var b strings.Builder
		if len(page.Content) == 0 {
			b.WriteString(HeaderRow.Render(fmt.Sprintf("%-8s %-24s %-10s %-20s %-20s", "ID", "JOB NAME", "STATUS", "STARTED", "ENDED")) + "\n")
			b.WriteString(Muted.Render("No job executions found.") + "\n")
		} else {
			b.WriteString(renderExecutions(page.Content, m.cursor))
		}
		b.WriteString(renderPager(page.Page, page.TotalPages, page.TotalElements))
		return b.String()
	})
}

func renderExecutions(rows []batch.JobExecution, cursor int) string {
	var b strings.Builder
	b.WriteString(HeaderRow.Render(fmt.Sprintf("%-8s %-24s %-10s %-20s %-20s", "ID", "JOB NAME", "STATUS", "STARTED", "ENDED")) + "\n")
	for i, je := range rows {
		line := fmt.Sprintf("%-8d %-24s %-10s %-20s %-20s",
			je.JobExecutionID, truncate(je.JobName, 24), je.Status.Label(), je.StartTime, je.EndTime)
		b.WriteString(row(line, i == cursor) + "\n")
	}
	return b.String()
}

func (m Model) renderStatistics() (string, error) {
	v := m.stats
	var b strings.Builder

	global, err := m.renderResource("Overview", v.Global.Snapshot(), func() string {
		s, _ := v.Global.Data()
		var b strings.Builder
		fmt.Fprintf(&b, "Total jobs: %d\n", s.TotalJobs)
		statuses := make([]string, 0, len(s.JobsByStatus))
		for st := range s.JobsByStatus {
			statuses = append(statuses, string(st))
		}
		sort.Strings(statuses)
		for _, st := range statuses {
			fmt.Fprintf(&b, "  %-12s %d\n", renderStatus(batch.Status(st)), s.JobsByStatus[batch.Status(st)])
		}
		if len(s.RecentJobStatuses) > 0 {
			b.WriteString(HeaderRow.Render(fmt.Sprintf("%-12s %10s %10s %10s", "DATE", "COMPLETED", "FAILED", "ABANDONED")) + "\n")
			for _, d := range s.RecentJobStatuses {
				fmt.Fprintf(&b, "%-12s %10d %10d %10d\n", d.Date, d.Completed, d.Failed, d.Abandoned)
			}
		}
		return b.String()
	})
	if err != nil {
		return "", err
	}
	b.WriteString(global)

	recent, err := m.renderResource(fmt.Sprintf("Executions in the last %d days", recentDays), v.Recent.Snapshot(), func() string {
		rows, _ := v.Recent.Data()
		var b strings.Builder
		if len(rows) == 0 {
			b.WriteString(Muted.Render("No recent executions.") + "\n")
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "%-30s %d\n", truncate(r.JobName, 30), r.Executions)
		}
		return b.String()
	})
	if err != nil {
		return "", err
	}
	b.WriteString(recent)

	if v.Job.Enabled() {
		job, err := m.renderResource("Job "+v.JobName(), v.Job.Snapshot(), func() string {
			s, _ := v.Job.Data()
			var b strings.Builder
			fmt.Fprintf(&b, "Executions:       %d\n", s.TotalExecutions)
			fmt.Fprintf(&b, "Success rate:     %.1f%%\n", s.SuccessRate)
			fmt.Fprintf(&b, "Average duration: %.1fs\n", s.AverageDuration)
			fmt.Fprintf(&b, "Last execution:   %s\n", s.LastExecutionTime)
			return b.String()
		})
		if err != nil {
			return "", err
		}
		b.WriteString(job)
	} else {
		b.WriteString(Muted.Render("\nPress / to select a job.") + "\n")
	}
	return b.String(), nil
}

func renderFallback(fb dashboard.Fallback) string {
	var b strings.Builder
	b.WriteString(Title.Render(fb.Title) + "\n\n")
	b.WriteString(fb.Message + "\n")
	if fb.Detail != "" {
		b.WriteString("\n" + Muted.Render(fb.Detail) + "\n")
	}
	b.WriteString("\n" + StatusBarKey.Render("r") + " " + fb.Action)
	if fb.Kind == dashboard.FallbackLogin {
		b.WriteString(Muted.Render("  (set a session cookie with --cookie)"))
	}
	return Panel.Render(b.String())
}

func renderPager(current, totalPages int, total int64) string {
	var parts []string
	prev := "‹ prev"
	if !pagination.CanPrevious(current) {
		prev = Muted.Render(prev)
	}
	parts = append(parts, prev)
	for _, btn := range pagination.Window(current, totalPages) {
		if btn.GapBefore {
			parts = append(parts, Muted.Render("…"))
		}
		label := fmt.Sprintf("%d", btn.Label())
		if btn.Current {
			label = CurrentPage.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}
	next := "next ›"
	if !pagination.CanNext(current, totalPages) {
		next = Muted.Render(next)
	}
	parts = append(parts, next)
	return "\n" + strings.Join(parts, " ") + Muted.Render(fmt.Sprintf("  %d total", total)) + "\n"
}

func (m Model) renderStatusBar() string {
	hints := []struct{ key, text string }{
		{"1-3", "tabs"},
		{"n/p", "page"},
		{"/", "job"},
		{"s", "status"},
		{"x", "reset"},
		{"enter", "open"},
		{"esc", "close"},
		{"[ ]", "history"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		parts = append(parts, StatusBarKey.Render(h.key)+" "+h.text)
	}

	snap := m.snapshot()
	if snap.IsValidating {
		parts = append(parts, m.spinner.View())
	}
	return StatusBar.Width(max(m.width, 0)).Render(strings.Join(parts, "  "))
}

func filterSummary(f dashboard.Filter) string {
	var parts []string
	if f.JobName != "" {
		parts = append(parts, "job="+f.JobName)
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status)
	}
	if f.StartDateFrom != "" || f.StartDateTo != "" {
		parts = append(parts, "started="+f.StartDateFrom+".."+f.StartDateTo)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func renderStatus(s batch.Status) string {
	badge := dashboard.BadgeFor(s)
	return StatusStyle(badge.Tone).Render(badge.Label)
}

func row(line string, selected bool) string {
	if selected {
		return SelectedRow.Render(line)
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
