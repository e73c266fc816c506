package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/searchstate"
	"github.com/spf13/cobra"
)

// listFlags are the filter and paging flags of the list resources.
type listFlags struct {
	jobName string
	status  string
	from    string
	to      string
	page    int
	size    int
	sort    string
	days    int
}

// params returns the list parameters for view, starting from its defaults.
func (f listFlags) params(view searchstate.View) (endpoint.Params, error) {
	p, err := searchstate.Defaults(view)
	if err != nil {
		return nil, err
	}
	p = p.Set(endpoint.ParamPage, f.page)
	if f.size > 0 {
		p = p.Set(endpoint.ParamSize, f.size)
	}
	if f.sort != "" {
		p = p.Set(endpoint.ParamSort, f.sort)
	}
	if f.jobName != "" {
		p = p.Set(endpoint.ParamJobName, f.jobName)
	}
	if view == searchstate.ViewJobExecutions {
		if f.status != "" {
			p = p.Set(endpoint.ParamStatus, strings.ToUpper(f.status))
		}
		if f.from != "" {
			p = p.Set(endpoint.ParamStartDateFrom, f.from)
		}
		if f.to != "" {
			p = p.Set(endpoint.ParamStartDateTo, f.to)
		}
	}
	if err := searchstate.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// resource resolves the arguments of `get <resource>` to a request.
type resource struct {
	usage string
	args  cobra.PositionalArgs
	req   func(args []string, f listFlags) (endpoint.Request, error)
}

var resources = map[string]resource{
	"instances": {
		usage: "instances [--job-name NAME] [--page N] [--size N]",
		args:  cobra.NoArgs,
		req: func(_ []string, f listFlags) (endpoint.Request, error) {
			p, err := f.params(searchstate.ViewJobInstances)
			return endpoint.JobInstances(p), err
		},
	},
	"instance": {
		usage: "instance ID",
		args:  cobra.ExactArgs(1),
		req: func(args []string, _ listFlags) (endpoint.Request, error) {
			id, err := parseID(args[0])
			return endpoint.JobInstanceDetail(id), err
		},
	},
	"executions": {
		usage: "executions [--job-name NAME] [--status STATUS] [--from DATE] [--to DATE] [--page N] [--size N]",
		args:  cobra.NoArgs,
		req: func(_ []string, f listFlags) (endpoint.Request, error) {
			p, err := f.params(searchstate.ViewJobExecutions)
			return endpoint.JobExecutions(p), err
		},
	},
	"execution": {
		usage: "execution ID",
		args:  cobra.ExactArgs(1),
		req: func(args []string, _ listFlags) (endpoint.Request, error) {
			id, err := parseID(args[0])
			return endpoint.JobExecutionDetail(id), err
		},
	},
	"step": {
		usage: "step ID",
		args:  cobra.ExactArgs(1),
		req: func(args []string, _ listFlags) (endpoint.Request, error) {
			id, err := parseID(args[0])
			return endpoint.StepExecutionDetail(id), err
		},
	},
	"stats": {
		usage: "stats [JOB_NAME]",
		args:  cobra.MaximumNArgs(1),
		req: func(args []string, _ listFlags) (endpoint.Request, error) {
			if len(args) == 1 {
				return endpoint.JobSpecificStatistics(args[0]), nil
			}
			return endpoint.JobStatistics(), nil
		},
	},
	"recent": {
		usage: "recent [--days N]",
		args:  cobra.NoArgs,
		req: func(_ []string, f listFlags) (endpoint.Request, error) {
			return endpoint.RecentExecutions(f.days), nil
		},
	},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

func getCmd(rt *runtime) *cobra.Command {
	var f listFlags

	usages := make([]string, 0, len(resources))
	for _, name := range resourceNames() {
		usages = append(usages, "  batchdash get "+resources[name].usage)
	}

	cmd := &cobra.Command{
		Use:       "get RESOURCE [ARG]",
		Short:     "Print a backend resource as JSON",
		Long:      "Print a backend resource as JSON.\n\nResources:\n" + strings.Join(usages, "\n"),
		ValidArgs: resourceNames(),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("resource required, one of: %s", strings.Join(resourceNames(), ", "))
			}
			r, ok := resources[args[0]]
			if !ok {
				return fmt.Errorf("unknown resource %q, one of: %s", args[0], strings.Join(resourceNames(), ", "))
			}
			return r.args(cmd, args[1:])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := resources[args[0]].req(args[1:], f)
			if err != nil {
				return err
			}
			return rt.get(cmd.Context(), cmd.OutOrStdout(), req)
		},
	}

	cmd.Flags().StringVar(&f.jobName, "job-name", "", "filter by job name")
	cmd.Flags().StringVar(&f.status, "status", "", "filter executions by status")
	cmd.Flags().StringVar(&f.from, "from", "", "executions started at or after this date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&f.to, "to", "", "executions started at or before this date (yyyy-MM-dd)")
	cmd.Flags().IntVar(&f.page, "page", 0, "zero-based page")
	cmd.Flags().IntVar(&f.size, "size", 0, "page size (default: backend default of the view)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort order, e.g. startTime,asc")
	cmd.Flags().IntVar(&f.days, "days", 0, "window of the recent executions (0 = backend default)")

	return cmd
}

// get loads req through the resource cache and prints it.
func (rt *runtime) get(ctx context.Context, out io.Writer, req endpoint.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, stop, err := rt.newApp(ctx)
	if err != nil {
		return err
	}
	defer stop()

	url, _ := app.Builder().URL(req)
	rt.logger.Debug().Str("url", url).Msg("Loading resource")

	data, err := app.Coordinator().Get(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(out, data)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
