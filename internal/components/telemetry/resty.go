package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

const redacted = "<redacted>"

// exchangeIds numbers the http exchanges of one client, the number is the
// name of the dump.
type exchangeIds struct {
	last atomic.Uint64
}

func (e *exchangeIds) next() uint64 {
	return e.last.Add(1)
}

type restyHooks struct {
	tel    API
	output MessageOutput
	ids    *exchangeIds
	// lower-cased header names and form fields whose values never reach the output
	secrets map[string]struct{}
}

// InstrumentResty reports every request made by client to tel. When output is
// not nil each exchange is also dumped to it, with the values of the headers
// and form fields named in secrets replaced.
func InstrumentResty(client *resty.Client, tel API, output MessageOutput, secrets ...string) {
	hooks := restyHooks{
		tel:     tel,
		output:  output,
		ids:     &exchangeIds{},
		secrets: make(map[string]struct{}, len(secrets)),
	}
	for _, name := range secrets {
		hooks.secrets[strings.ToLower(name)] = struct{}{}
	}

	client.OnBeforeRequest(hooks.before)
	client.OnAfterResponse(hooks.after)
	client.OnError(hooks.failed)
}

type exchangeKeyType int

const exchangeKey exchangeKeyType = 0

type exchange struct {
	id uint64
	// monotonic clock only, calendar time is irrelevant here
	start time.Time
}

func exchangeFrom(ctx context.Context) (exchange, bool) {
	value, ok := ctx.Value(exchangeKey).(exchange)
	return value, ok
}

func (h restyHooks) before(_ *resty.Client, req *resty.Request) error {
	current := exchange{id: h.ids.next(), start: time.Now()}
	req.SetContext(context.WithValue(req.Context(), exchangeKey, current))
	h.tel.ReportDebug(report_resty_request, current.id, req.Method, req.URL)
	return nil
}

func (h restyHooks) after(_ *resty.Client, res *resty.Response) error {
	current, ok := exchangeFrom(res.Request.Context())
	if !ok {
		h.tel.ReportWarning(report_resty_response, "request was not instrumented", res.Request.URL)
		return nil
	}

	h.tel.ReportDebug(report_resty_response, current.id, time.Since(current.start).String(), res.Status())
	if h.output != nil {
		h.output.Write(strconv.FormatUint(current.id, 10), h.dumpExchange(res))
	}
	return nil
}

func (h restyHooks) failed(req *resty.Request, err error) {
	current, ok := exchangeFrom(req.Context())

	var elapsed time.Duration
	if ok {
		elapsed = time.Since(current.start)
	}
	h.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, elapsed)

	if h.output != nil && ok {
		h.output.Write(strconv.FormatUint(current.id, 10), h.dumpRequest(req.Method, req.URL, req.Header, req.RawRequest))
	}
}

func (h restyHooks) secret(name string) bool {
	_, ok := h.secrets[strings.ToLower(name)]
	return ok
}

func (h restyHooks) headers(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	slices.Sort(names)

	var out strings.Builder
	for _, name := range names {
		for _, value := range headers[name] {
			if h.secret(name) {
				value = redacted
			}
			fmt.Fprintf(&out, "%s: %s\n", name, value)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func (h restyHooks) body(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return "<NO BODY AVAILABLE>"
	}
	reader, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if reader == nil {
		return "<NO BODY AVAILABLE>"
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}

	if !strings.HasPrefix(req.Header.Get("content-type"), "application/x-www-form-urlencoded") {
		return string(raw)
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return string(raw)
	}
	for field := range form {
		if h.secret(field) {
			form[field] = []string{redacted}
		}
	}
	return form.Encode()
}

func (h restyHooks) dumpRequest(method, link string, headers http.Header, raw *http.Request) string {
	if raw != nil {
		headers = raw.Header
	}
	var out strings.Builder
	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", method, link)
	out.WriteString(h.headers(headers))
	out.WriteString("\n\n")
	out.WriteString(h.body(raw))
	return out.String()
}

func (h restyHooks) dumpExchange(res *resty.Response) string {
	finalUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}

	var out strings.Builder
	out.WriteString(h.dumpRequest(res.Request.Method, res.Request.URL, res.Request.Header, res.Request.RawRequest))
	out.WriteString("\n\n---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), finalUrl)
	out.WriteString(h.headers(res.Header()))
	out.WriteString("\n\n")
	out.WriteString(res.String())
	return out.String()
}
