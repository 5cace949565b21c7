package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it is meant for
// tests that need to assert a component reported (or did not report)
// something.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) push(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push("count", id, []any{count})
}

func (r *Recorder) Reports() []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Broken returns the ids of every ReportBroken call containing substr.
func (r *Recorder) Broken(substr string) []string {
	var ids []string
	for _, rep := range r.Reports() {
		if rep.Kind == "broken" && strings.Contains(rep.ID, substr) {
			ids = append(ids, rep.ID)
		}
	}
	return ids
}

func (r Report) String() string {
	return fmt.Sprintf("[%s] %s %v", r.Kind, r.ID, r.Params)
}
