// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package chttp provides a minimal HTTP transport for communicating with
// CouchDB servers.
package chttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

const typeJSON = "application/json"

// The default UserAgent values
const (
	UserAgent = "couchdoc chttp"
	Version   = "1.0.0"
)

// Client represents a client connection. It embeds an *http.Client
type Client struct {
	// UserAgents is appended to set the User-Agent header. Typically it should
	// contain pairs of product name and version.
	UserAgents []string

	*http.Client

	dsn  *url.URL
	auth *basicAuth
	log  *zap.Logger
}

// New returns a connection to a remote CouchDB server. If credentials are
// included in the URL, requests will be authenticated using HTTP Basic Auth.
func New(dsn string, opts ...Option) (*Client, error) {
	dsnURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	user := dsnURL.User
	dsnURL.User = nil
	c := &Client{
		Client: &http.Client{},
		dsn:    dsnURL,
		log:    zap.NewNop(),
	}
	if user != nil {
		password, _ := user.Password()
		c.auth = &basicAuth{Username: user.Username(), Password: password}
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.auth != nil {
		c.auth.authenticate(c)
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &cerrors.Error{
			Kind:   cerrors.KindInvalidArgument,
			Status: http.StatusBadRequest,
			Reason: "no URL specified",
		}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return nil, &cerrors.Error{Kind: cerrors.KindInvalidArgument, Status: http.StatusBadRequest, Err: err}
	}
	if dsnURL.Path == "" {
		dsnURL.Path = "/"
	}
	return dsnURL, nil
}

// URL returns a copy of the server root URL, without credentials.
func (c *Client) URL() *url.URL {
	u := *c.dsn
	return &u
}

// Logger returns the client's logger. It is never nil.
func (c *Client) Logger() *zap.Logger {
	return c.log
}

// NewRequest returns a new *http.Request for the given absolute URL.
func (c *Client) NewRequest(ctx context.Context, method string, u *url.URL, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &cerrors.Error{Kind: cerrors.KindInvalidArgument, Status: http.StatusBadRequest, Err: err}
	}
	req.Header.Add("User-Agent", c.userAgent())
	return req, nil
}

// DoReq does an HTTP request. An error is returned only if there was an error
// processing the request. In particular, an error status code, such as 400
// or 500, does _not_ cause an error to be returned.
func (c *Client) DoReq(ctx context.Context, method string, u *url.URL, opts *Options) (*http.Response, error) {
	if method == "" {
		return nil, cerrors.InvalidArgument("chttp: method required")
	}
	var body io.Reader
	if opts != nil && opts.Body != nil {
		body = opts.Body
		defer opts.Body.Close() // nolint: errcheck
	}
	req, err := c.NewRequest(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	setHeaders(req)
	setQuery(req, opts)

	start := time.Now()
	response, err := c.Do(req)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", req.URL.String()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.log.Debug("request failed", append(fields, zap.Error(err))...)
		return nil, netError(err)
	}
	c.log.Debug("request", append(fields, zap.Int("status", response.StatusCode))...)
	return response, nil
}

// netError converts a transport failure into a KindRequestFailed error. If
// the failure was produced by EncodeBody, the embedded error is returned.
func netError(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var e *cerrors.Error
		if errors.As(urlErr.Err, &e) {
			return e
		}
	}
	return cerrors.Transport(err)
}

// DoJSON combines [Client.DoReq], [ResponseError], and JSON decoding of the
// response body into i, and closes the response body.
func (c *Client) DoJSON(ctx context.Context, method string, u *url.URL, opts *Options, i interface{}) error {
	res, err := c.DoReq(ctx, method, u, opts)
	if err != nil {
		return err
	}
	if res.Body != nil {
		defer CloseBody(res.Body)
	}
	if err = ResponseError(res); err != nil {
		return err
	}
	return DecodeJSON(res, i)
}

// DoError is the same as DoReq(), followed by checking the response error. This
// method is meant for cases where the only information you need from the
// response is the status code. It unconditionally closes the response body.
func (c *Client) DoError(ctx context.Context, method string, u *url.URL, opts *Options) (*http.Response, error) {
	res, err := c.DoReq(ctx, method, u, opts)
	if err != nil {
		return res, err
	}
	if res.Body != nil {
		defer CloseBody(res.Body)
	}
	err = ResponseError(res)
	return res, err
}

// DoBytes combines [Client.DoReq] and [ResponseError], and returns the full
// response body of a successful request.
func (c *Client) DoBytes(ctx context.Context, method string, u *url.URL, opts *Options) ([]byte, error) {
	res, err := c.DoReq(ctx, method, u, opts)
	if err != nil {
		return nil, err
	}
	if res.Body != nil {
		defer CloseBody(res.Body)
	}
	if err = ResponseError(res); err != nil {
		return nil, err
	}
	if res.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, cerrors.Transport(err)
	}
	return body, nil
}

// Get issues a GET request to u and returns the response body.
func (c *Client) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	return c.DoBytes(ctx, http.MethodGet, u, nil)
}

// Delete issues a DELETE request to u and returns the response body.
func (c *Client) Delete(ctx context.Context, u *url.URL) ([]byte, error) {
	return c.DoBytes(ctx, http.MethodDelete, u, nil)
}

// Put issues a PUT request to u with body JSON-encoded, and returns the
// response body. A nil body sends an empty request.
func (c *Client) Put(ctx context.Context, u *url.URL, body interface{}) ([]byte, error) {
	return c.DoBytes(ctx, http.MethodPut, u, bodyOptions(body))
}

// Post issues a POST request to u with body JSON-encoded, and returns the
// response body.
func (c *Client) Post(ctx context.Context, u *url.URL, body interface{}) ([]byte, error) {
	return c.DoBytes(ctx, http.MethodPost, u, bodyOptions(body))
}

func bodyOptions(body interface{}) *Options {
	if body == nil {
		return nil
	}
	return &Options{Body: EncodeBody(body)}
}

// DecodeJSON unmarshals the response body into i. This method consumes and
// closes the response body.
func DecodeJSON(r *http.Response, i interface{}) error {
	defer CloseBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(i); err != nil {
		return cerrors.Transport(err)
	}
	return nil
}

// CloseBody drains and closes r.
func CloseBody(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}

// EncodeBody JSON encodes i to an io.ReadCloser. If an encoding error
// occurs, it will be returned on the next read.
func EncodeBody(i interface{}) io.ReadCloser {
	done := make(chan struct{})
	r, w := io.Pipe()
	go func() {
		defer close(done)
		var err error
		switch t := i.(type) {
		case []byte:
			_, err = w.Write(t)
		case json.RawMessage:
			_, err = w.Write(t)
		case string:
			_, err = w.Write([]byte(t))
		default:
			err = json.NewEncoder(w).Encode(i)
			switch err.(type) {
			case *json.MarshalerError, *json.UnsupportedTypeError, *json.UnsupportedValueError:
				err = &cerrors.Error{Kind: cerrors.KindInvalidArgument, Status: http.StatusBadRequest, Err: err}
			}
		}
		_ = w.CloseWithError(err)
	}()
	return &ebReader{
		ReadCloser: r,
		done:       done,
	}
}

type ebReader struct {
	io.ReadCloser
	done <-chan struct{}
}

var _ io.ReadCloser = &ebReader{}

func (r *ebReader) Close() error {
	err := r.ReadCloser.Close()
	<-r.done
	return err
}

func setHeaders(req *http.Request) {
	req.Header.Add("Accept", typeJSON)
	req.Header.Add("Content-Type", typeJSON)
}

func setQuery(req *http.Request, opts *Options) {
	if opts == nil || len(opts.Query) == 0 {
		return
	}
	if req.URL.RawQuery == "" {
		req.URL.RawQuery = opts.Query.Encode()
		return
	}
	req.URL.RawQuery = strings.Join([]string{req.URL.RawQuery, opts.Query.Encode()}, "&")
}

func (c *Client) userAgent() string {
	ua := fmt.Sprintf("%s/%s (Language=%s; Platform=%s/%s)",
		UserAgent, Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
	return strings.Join(append([]string{ua}, c.UserAgents...), " ")
}
