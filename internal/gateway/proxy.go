package gateway

import (
	"context"
	"net/http"
)

// forwardedHeaders are copied onto the downstream request. The identity
// headers are how the authenticated customer reaches the services; they must
// survive the hop.
var forwardedHeaders = []string{
	"Content-Type",
	"X-User-Id",
	"X-User-Email",
	"X-User-Phone",
	"X-User-First-Name",
	"X-User-Last-Name",
}

type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, p.baseURL+path, r.Body)
	if err != nil {
		return nil, err
	}

	if r.URL.RawQuery != "" {
		req.URL.RawQuery = r.URL.RawQuery
	}

	for _, name := range forwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	return p.client.Do(req)
}
