package sources

import (
	"net/http"
	"net/url"
	"strings"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"

	"github.com/leocov-dev/mrserver/core"
)

const DefaultModrinthURL = "https://api.modrinth.com/v2"

const modrinthHost = "api.modrinth.com"

// NewModrinthClient returns a go-modrinth client that talks to baseURL. Requests the
// library addresses to the public API are rebased onto baseURL when it differs.
func NewModrinthClient(httpClient *http.Client, baseURL string) (*modrinthApi.Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	rebased := *httpClient
	transport := &uaTransport{next: httpClient.Transport}
	if baseURL != "" && strings.TrimRight(baseURL, "/") != DefaultModrinthURL {
		base, err := url.Parse(strings.TrimRight(baseURL, "/"))
		if err != nil {
			return nil, err
		}
		transport.base = base
	}
	rebased.Transport = transport

	client := modrinthApi.NewClient(&rebased)
	client.UserAgent = core.UserAgent()
	return client, nil
}

type uaTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", core.UserAgent())
	if t.base != nil && req.URL.Host == modrinthHost {
		r.URL.Scheme = t.base.Scheme
		r.URL.Host = t.base.Host
		r.URL.Path = t.base.Path + strings.TrimPrefix(req.URL.Path, "/v2")
		r.URL.RawPath = ""
		r.Host = t.base.Host
	}
	return next.RoundTrip(r)
}
