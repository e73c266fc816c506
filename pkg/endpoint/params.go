// Package endpoint maps logical dashboard resource requests to backend URLs and
// canonical cache keys.
package endpoint

import (
	"fmt"
	"net/url"
	"strconv"
)

// Well-known parameter names.
const (
	ParamJobName       = "jobName"
	ParamStatus        = "status"
	ParamStartDateFrom = "startDateFrom"
	ParamStartDateTo   = "startDateTo"
	ParamPage          = "page"
	ParamSize          = "size"
	ParamSort          = "sort"
	ParamDays          = "days"
)

// Param is a single filter, paging or sort value. A nil Value means the
// parameter is not applied.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter record. Order only affects the generated query
// string; cache keys are order independent.
type Params []Param

// NewParams builds a record from alternating key/value pairs.
// It panics on an odd number of arguments or a non-string key.
func NewParams(kv ...any) Params {
	if len(kv)%2 != 0 {
		panic("endpoint: NewParams requires key/value pairs")
	}
	p := make(Params, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("endpoint: NewParams key %v is not a string", kv[i]))
		}
		p = p.Set(key, kv[i+1])
	}
	return p
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Set returns a copy with key set to value. An existing key keeps its position,
// a new key is appended.
func (p Params) Set(key string, value any) Params {
	out := p.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// Unset returns a copy where key is undefined. The key keeps its position.
func (p Params) Unset(key string) Params {
	if _, ok := p.Get(key); !ok {
		return p.Clone()
	}
	return p.Set(key, nil)
}

// Get returns the applied value of key. Undefined and absent keys report false.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, kv.Value != nil
		}
	}
	return nil, false
}

// String returns the formatted value of key, "" when not applied.
func (p Params) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Int returns the integer value of key. String values are parsed.
func (p Params) Int(key string) (int, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// Compact returns the applied parameters only, preserving order.
func (p Params) Compact() Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if kv.Value != nil {
			out = append(out, kv)
		}
	}
	return out
}

// Values converts the applied parameters to url.Values.
func (p Params) Values() url.Values {
	v := url.Values{}
	for _, kv := range p.Compact() {
		v.Set(kv.Key, FormatValue(kv.Value))
	}
	return v
}

// Equal reports whether both records apply the same values, ignoring order and
// undefined entries.
func (p Params) Equal(other Params) bool {
	a, b := p.Compact(), other.Compact()
	if len(a) != len(b) {
		return false
	}
	for _, kv := range a {
		v, ok := other.Get(kv.Key)
		if !ok || FormatValue(v) != FormatValue(kv.Value) {
			return false
		}
	}
	return true
}

// FormatValue renders a parameter value the way it is sent on the wire.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
