package telemetry

import (
	"fmt"
)

// API is the reporting surface every component logs and counts through.
// Components receive it in their constructor so tests can assert on what
// was reported.
type API interface {
	// ReportBroken reports a component that failed in a way an operator
	// needs to act on.
	//
	// The id names the component, not the line that failed. Use the
	// `<type>.<method>` form (ex. `store.append-observation`) in lowercase
	// with dashes separating words, and let ScopedAPI supply the package
	// prefix. Extra detail belongs in params, not in the id.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not broken but may be worth
	// a look. Ids follow the same rules as ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information only useful while developing.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the value of a counter at the current moment.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every report with a namespace before forwarding it.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
