package tui

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
)

// detailPage is one level of the drill-down stack.
type detailPage struct {
	title      string
	snapshot   func() fetch.Snapshot
	rows       func() int
	render     func(cursor int) string
	drill      func(cursor int) *detailPage
	revalidate func() bool
	changes    <-chan struct{}
	close      func()
}

func newDetailPage[T any](title string, r *dashboard.Resource[T]) *detailPage {
	return &detailPage{
		title:      title,
		snapshot:   r.Snapshot,
		rows:       func() int { return 0 },
		revalidate: r.Revalidate,
		changes:    r.Changes(),
		close:      r.Close,
	}
}

func openJobInstance(app *dashboard.App, id int64) *detailPage {
	r := app.OpenJobInstance(id)
	p := newDetailPage(fmt.Sprintf("Job Instance #%d", id), r)
	p.rows = func() int {
		d, _ := r.Data()
		return len(d.Executions)
	}
	p.render = func(cursor int) string {
		d, ok := r.Data()
		if !ok {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Job name:  %s\n", d.JobName)
		fmt.Fprintf(&b, "Job key:   %s\n", d.JobKey)
		fmt.Fprintf(&b, "Version:   %d\n", d.Version)
		b.WriteString(Title.Render("Executions") + "\n")
		b.WriteString(renderExecutions(d.Executions, cursor))
		return b.String()
	}
	p.drill = func(cursor int) *detailPage {
		d, ok := r.Data()
		if !ok || cursor < 0 || cursor >= len(d.Executions) {
			return nil
		}
		return openJobExecution(app, d.Executions[cursor].JobExecutionID)
	}
	return p
}

func openJobExecution(app *dashboard.App, id int64) *detailPage {
	r := app.OpenJobExecution(id)
	p := newDetailPage(fmt.Sprintf("Job Execution #%d", id), r)
	p.rows = func() int {
		d, _ := r.Data()
		return len(d.Steps)
	}
	p.render = func(cursor int) string {
		d, ok := r.Data()
		if !ok {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Job:       %s (instance #%d)\n", d.JobName, d.JobInstanceID)
		fmt.Fprintf(&b, "Status:    %s\n", renderStatus(d.Status))
		fmt.Fprintf(&b, "Started:   %s\n", d.StartTime)
		fmt.Fprintf(&b, "Ended:     %s\n", d.EndTime)
		fmt.Fprintf(&b, "Exit code: %s\n", d.ExitCode)
		if d.ExitMessage != "" {
			fmt.Fprintf(&b, "Exit:      %s\n", d.ExitMessage)
		}
		if len(d.Parameters) > 0 {
			b.WriteString(Title.Render("Parameters") + "\n")
			for _, jp := range d.Parameters {
				fmt.Fprintf(&b, "  %s (%s) = %s\n", jp.Name, jp.Type, jp.Value)
			}
		}
		b.WriteString(Title.Render("Steps") + "\n")
		b.WriteString(HeaderRow.Render(fmt.Sprintf("%-8s %-24s %-10s %8s %8s %8s", "ID", "STEP", "STATUS", "READ", "WRITE", "FILTER")) + "\n")
		for i, s := range d.Steps {
			line := fmt.Sprintf("%-8d %-24s %-10s %8d %8d %8d",
				s.StepExecutionID, truncate(s.StepName, 24), s.Status.Label(), s.ReadCount, s.WriteCount, s.FilterCount)
			b.WriteString(row(line, i == cursor) + "\n")
		}
		renderContext(&b, d.ExecutionContext)
		return b.String()
	}
	p.drill = func(cursor int) *detailPage {
		d, ok := r.Data()
		if !ok || cursor < 0 || cursor >= len(d.Steps) {
			return nil
		}
		return openStepExecution(app, d.Steps[cursor].StepExecutionID)
	}
	return p
}

func openStepExecution(app *dashboard.App, id int64) *detailPage {
	r := app.OpenStepExecution(id)
	p := newDetailPage(fmt.Sprintf("Step Execution #%d", id), r)
	p.render = func(int) string {
		d, ok := r.Data()
		if !ok {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Step:      %s (job execution #%d)\n", d.StepName, d.JobExecutionID)
		fmt.Fprintf(&b, "Status:    %s\n", renderStatus(d.Status))
		fmt.Fprintf(&b, "Started:   %s\n", d.StartTime)
		fmt.Fprintf(&b, "Ended:     %s\n", d.EndTime)
		fmt.Fprintf(&b, "Exit code: %s\n", d.ExitCode)
		b.WriteString(Title.Render("Counters") + "\n")
		counters := []struct {
			name  string
			value int64
		}{
			{"read", d.ReadCount},
			{"write", d.WriteCount},
			{"filter", d.FilterCount},
			{"commit", d.CommitCount},
			{"rollback", d.RollbackCount},
			{"read skip", d.ReadSkipCount},
			{"write skip", d.WriteSkipCount},
			{"process skip", d.ProcessSkipCount},
		}
		for _, c := range counters {
			fmt.Fprintf(&b, "  %-14s %d\n", c.name, c.value)
		}
		renderContext(&b, d.ExecutionContext)
		return b.String()
	}
	return p
}

func renderContext(b *strings.Builder, items []batch.ExecutionContextItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString(Title.Render("Execution Context") + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "  %s (%s) = %s\n", it.Name, it.Type, it.Value)
	}
}
