package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type restyHooks struct {
	tel     API
	counter *uint64
}

// InstrumentResty reports every request a resty client makes, along with
// how long it took and how it ended.
func InstrumentResty(client *resty.Client, tel API) {
	var counter uint64
	hooks := restyHooks{tel: tel, counter: &counter}

	client.OnBeforeRequest(hooks.before)
	client.OnAfterResponse(hooks.after)
	client.OnError(hooks.failed)
}

type requestKeyType int

var requestKey requestKeyType

type requestInfo struct {
	id    uint64
	start time.Time
}

func lookupRequest(ctx context.Context) (requestInfo, bool) {
	if ctx == nil {
		return requestInfo{}, false
	}
	info, ok := ctx.Value(requestKey).(requestInfo)
	return info, ok
}

func (h restyHooks) before(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(h.counter, 1)
	ctx := context.WithValue(req.Context(), requestKey, requestInfo{
		id:    id,
		start: time.Now(),
	})
	h.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)
	req.SetContext(ctx)
	return nil
}

func (h restyHooks) after(_ *resty.Client, res *resty.Response) error {
	info, ok := lookupRequest(res.Request.Context())
	if !ok {
		h.tel.ReportWarning(report_resty_response, "missing request info", res.Request.URL)
		return nil
	}
	h.tel.ReportDebug(
		report_resty_response,
		info.id,
		time.Since(info.start).String(),
		res.Status(),
	)
	return nil
}

func (h restyHooks) failed(req *resty.Request, err error) {
	var elapsed time.Duration
	if info, ok := lookupRequest(req.Context()); ok {
		elapsed = time.Since(info.start)
	}
	h.tel.ReportBroken(
		report_resty_response,
		err,
		req.Method,
		req.URL,
		elapsed,
	)
}
