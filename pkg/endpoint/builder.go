package endpoint

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/batch-dashboard/pkg/cache"
)

// DefaultBase is the path prefix of every backend resource.
const DefaultBase = "/api"

// Kind identifies a backend resource.
type Kind string

const (
	KindJobInstances          Kind = "job_instances"
	KindJobInstanceDetail     Kind = "job_instance_detail"
	KindJobExecutions         Kind = "job_executions"
	KindJobExecutionDetail    Kind = "job_execution_detail"
	KindStepExecutionDetail   Kind = "step_execution_detail"
	KindJobStatistics         Kind = "job_statistics"
	KindJobSpecificStatistics Kind = "job_specific_statistics"
	KindRecentExecutions      Kind = "recent_executions"
)

// HasID reports whether the kind addresses a single resource by path id.
func (k Kind) HasID() bool {
	switch k {
	case KindJobInstanceDetail, KindJobExecutionDetail, KindStepExecutionDetail, KindJobSpecificStatistics:
		return true
	}
	return false
}

func (k Kind) collection() (string, bool) {
	switch k {
	case KindJobInstances, KindJobInstanceDetail:
		return "/job_instances", true
	case KindJobExecutions, KindJobExecutionDetail:
		return "/job_executions", true
	case KindStepExecutionDetail:
		return "/step_executions", true
	case KindJobStatistics, KindJobSpecificStatistics:
		return "/statistics/jobs", true
	case KindRecentExecutions:
		return "/statistics/recent_executions", true
	}
	return "", false
}

// Request is a logical resource request.
type Request struct {
	Kind   Kind
	ID     string
	Params Params
}

// JobInstances requests a page of job instances.
func JobInstances(params Params) Request {
	return Request{Kind: KindJobInstances, Params: params.Clone()}
}

// JobInstanceDetail requests one job instance with its executions.
func JobInstanceDetail(jobInstanceID int64) Request {
	return Request{Kind: KindJobInstanceDetail, ID: strconv.FormatInt(jobInstanceID, 10)}
}

// JobExecutions requests a page of job executions.
func JobExecutions(params Params) Request {
	return Request{Kind: KindJobExecutions, Params: params.Clone()}
}

// JobExecutionDetail requests one job execution with its steps.
func JobExecutionDetail(jobExecutionID int64) Request {
	return Request{Kind: KindJobExecutionDetail, ID: strconv.FormatInt(jobExecutionID, 10)}
}

// StepExecutionDetail requests one step execution.
func StepExecutionDetail(stepExecutionID int64) Request {
	return Request{Kind: KindStepExecutionDetail, ID: strconv.FormatInt(stepExecutionID, 10)}
}

// JobStatistics requests the global statistics.
func JobStatistics() Request {
	return Request{Kind: KindJobStatistics}
}

// JobSpecificStatistics requests the statistics of one job name.
func JobSpecificStatistics(jobName string) Request {
	return Request{Kind: KindJobSpecificStatistics, ID: jobName}
}

// RecentExecutions requests per-job execution counts. days <= 0 leaves the
// window to the backend default.
func RecentExecutions(days int) Request {
	r := Request{Kind: KindRecentExecutions}
	if days > 0 {
		r.Params = NewParams(ParamDays, days)
	}
	return r
}

// Path returns the resource path relative to the base, with the id escaped.
func (r Request) Path() (string, error) {
	collection, ok := r.Kind.collection()
	if !ok {
		return "", fmt.Errorf("unknown resource kind %q", r.Kind)
	}
	if !r.Kind.HasID() {
		return collection, nil
	}
	if r.ID == "" {
		return "", fmt.Errorf("resource kind %q requires an id", r.Kind)
	}
	return collection + "/" + url.PathEscape(r.ID), nil
}

// QueryString serializes the applied parameters in their supplied order.
// Undefined values are dropped; keys and values are percent-encoded. It returns
// "" when nothing is applied, otherwise a string starting with "?".
func QueryString(params Params) string {
	compact := params.Compact()
	if len(compact) == 0 {
		return ""
	}

	var b strings.Builder
	for i, kv := range compact {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(kv.Key))
		b.WriteByte('=')
		b.WriteString(encodeComponent(FormatValue(kv.Value)))
	}
	return b.String()
}

// encodeComponent escapes like encodeURIComponent: spaces become %20, not "+".
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Builder resolves requests against a base path.
type Builder struct {
	Base string
}

// NewBuilder returns a builder for base. An empty base means DefaultBase.
func NewBuilder(base string) Builder {
	if base == "" {
		base = DefaultBase
	}
	return Builder{Base: "/" + strings.Trim(base, "/")}
}

func (b Builder) base() string {
	if b.Base == "" {
		return DefaultBase
	}
	return b.Base
}

// URL returns the request URL (path plus query string).
func (b Builder) URL(r Request) (string, error) {
	path, err := r.Path()
	if err != nil {
		return "", err
	}
	return b.base() + path + QueryString(r.Params), nil
}

// Key returns the canonical cache key of the request.
func (b Builder) Key(r Request) (cache.Key, error) {
	path, err := r.Path()
	if err != nil {
		return cache.Key{}, err
	}
	return cache.Key{
		Endpoint:    b.base() + path,
		QueryParams: r.Params.Values(),
	}, nil
}

// BuildURL returns the default-base URL of a collection or statistics kind.
// Kinds addressed by id need a Request with ID set and return an error here.
func BuildURL(kind Kind, params Params) (string, error) {
	return Builder{}.URL(Request{Kind: kind, Params: params})
}
