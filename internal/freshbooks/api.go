// Package freshbooks talks to the FreshBooks XML API and maps its records.
package freshbooks

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/record"
)

const apiPath = "/api/2.1/xml-in"

var (
	// ErrRemoteCall matches every response whose status is not "ok".
	ErrRemoteCall = errors.New("remote call failed")
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("not found")
)

// RemoteError is a failed API response.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Method, ErrRemoteCall)
	}
	return fmt.Sprintf("%s: %v: %s", e.Method, ErrRemoteCall, e.Message)
}

// Is makes errors.Is(err, ErrRemoteCall) hold for any RemoteError.
func (e *RemoteError) Is(target error) bool { return target == ErrRemoteCall }

// Params are the named arguments of an API call. Values are scalars or
// records; records are serialized with the parameter name as element name.
type Params map[string]any

// Response is a decoded API response.
type Response struct {
	Status   string
	Error    string
	Elements []*record.Element
}

// Success reports whether the call succeeded.
func (r *Response) Success() bool { return r.Status == "ok" }

// Caller issues one API call. Transport and decoding problems are returned
// as errors; a "fail" status is a successful call with !Success().
type Caller interface {
	CallAPI(ctx context.Context, method string, params Params) (*Response, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, method string, params Params) (*Response, error)

// CallAPI calls f.
func (f CallerFunc) CallAPI(ctx context.Context, method string, params Params) (*Response, error) {
	return f(ctx, method, params)
}

// API is the HTTP implementation of Caller.
type API struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// NewAPI creates an API client posting to endpoint. A non-empty token is
// sent as the basic-auth user name.
func NewAPI(httpClient *http.Client, endpoint, token string) *API {
	return &API{httpClient: httpClient, endpoint: endpoint, token: token}
}

// Endpoint returns the API URL for auth.
func Endpoint(auth config.Auth) string {
	if auth.APIURL != "" {
		return auth.APIURL
	}
	return "https://" + auth.Company + ".freshbooks.com" + apiPath
}

// Dial returns an API client for auth, using the saved OAuth token when an
// oauth block is configured and the API token otherwise.
func Dial(ctx context.Context, auth config.Auth) (*API, error) {
	if auth.OAuth != nil {
		hc, err := AuthorizedClient(ctx, auth.OAuth)
		if err != nil {
			return nil, err
		}
		return NewAPI(hc, Endpoint(auth), ""), nil
	}
	return NewAPI(&http.Client{Timeout: 30 * time.Second}, Endpoint(auth), auth.Token), nil
}

// CallAPI posts method with params and decodes the response.
func (a *API) CallAPI(ctx context.Context, method string, params Params) (*Response, error) {
	body, err := EncodeRequest(method, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	if a.token != "" {
		req.SetBasicAuth(a.token, "X")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: API error %d: %s", method, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return DecodeResponse(data)
}

// EncodeRequest builds the XML request document. Parameters are written in
// name order.
func EncodeRequest(method string, params Params) ([]byte, error) {
	root := record.NewElement("request", "")
	root.Attrs = []xml.Attr{{Name: xml.Name{Local: "method"}, Value: method}}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		el, err := paramElement(name, params[name])
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", method, name, err)
		}
		root.Add(el)
	}

	data, err := xml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return append([]byte(xml.Header), data...), nil
}

func paramElement(name string, value any) (*record.Element, error) {
	var rec *record.Record
	switch v := value.(type) {
	case *record.Record:
		rec = v
	case Entity:
		rec = v.Rec()
	default:
		text, err := record.FormatValue(v)
		if err != nil {
			return nil, err
		}
		return record.NewElement(name, text), nil
	}
	el, err := record.ToXML(rec)
	if err != nil {
		return nil, err
	}
	el.XMLName.Local = name
	return el, nil
}

// DecodeResponse parses a <response> document.
func DecodeResponse(data []byte) (*Response, error) {
	var root record.Element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding API response: %w", err)
	}
	if root.Name() != "response" {
		return nil, fmt.Errorf("decoding API response: unexpected root element <%s>", root.Name())
	}
	resp := &Response{Status: root.Attr("status")}
	if !resp.Success() {
		if e := root.Child("error"); e != nil {
			resp.Error = strings.TrimSpace(e.Text)
		}
		return resp, nil
	}
	resp.Elements = root.Children
	return resp, nil
}
