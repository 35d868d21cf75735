package moviecards

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark-c-hall/moviecards/internal/rest"
)

const testAPIURL = "https://moviecards-service-blazquez.azurewebsites.net"

type call struct {
	Method string
	URL    string
	Body   any
}

type fakeResponse struct {
	body any
	err  error
}

// fakeExecutor answers from canned responses keyed by method and URL.
// Unconfigured calls succeed without touching out.
type fakeExecutor struct {
	responses map[string]fakeResponse
	calls     []call
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{responses: make(map[string]fakeResponse)}
}

func (f *fakeExecutor) on(method, url string, body any) {
	f.responses[method+" "+url] = fakeResponse{body: body}
}

func (f *fakeExecutor) fail(method, url string, status int) {
	f.responses[method+" "+url] = fakeResponse{err: &rest.StatusError{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       http.StatusText(status),
	}}
}

func (f *fakeExecutor) failWith(method, url string, err error) {
	f.responses[method+" "+url] = fakeResponse{err: err}
}

func (f *fakeExecutor) Get(_ context.Context, url string, out any) error {
	return f.respond(http.MethodGet, url, nil, out)
}

func (f *fakeExecutor) Post(_ context.Context, url string, body, out any) error {
	return f.respond(http.MethodPost, url, body, out)
}

func (f *fakeExecutor) Put(_ context.Context, url string, body any) error {
	return f.respond(http.MethodPut, url, body, nil)
}

func (f *fakeExecutor) respond(method, url string, body, out any) error {
	f.calls = append(f.calls, call{Method: method, URL: url, Body: body})

	resp, ok := f.responses[method+" "+url]
	if !ok {
		return nil
	}
	if resp.err != nil {
		return resp.err
	}
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = resp.body.(string)
		return nil
	}
	data, err := json.Marshal(resp.body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
