// Package inet sends REST requests to the vehicle backend.
package inet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/protocol"
)

// MaxResponseLength caps the byte-length of response bodies.
const MaxResponseLength = 1000000

func ReadWithContext(ctx context.Context, r io.Reader, p []byte) ([]byte, error) {
	bytesRead := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n, err := r.Read(p[bytesRead:])
		bytesRead += n
		if err == io.EOF {
			return p[:bytesRead], nil
		}
		if err != nil {
			return p[:bytesRead], err
		}
		if bytesRead == len(p) {
			return p[:bytesRead], nil
		}
	}
}

type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.Code), e.Message)
}

func (e *HttpError) MayHaveSucceeded() bool {
	if e.Code >= 400 && e.Code < 500 {
		return false
	}
	return e.Code != http.StatusServiceUnavailable
}

func (e *HttpError) Temporary() bool {
	return e.Code == http.StatusServiceUnavailable ||
		e.Code == http.StatusGatewayTimeout ||
		e.Code == http.StatusBadGateway ||
		e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests
}

// Response is a backend reply whose body has been read in full.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Connection sends authenticated requests to one backend host.
type Connection struct {
	UserAgent  string
	Host       string
	authHeader string
	client     http.Client
}

// NewConnection creates a Connection. authHeader is sent verbatim, e.g. "Bearer <token>".
func NewConnection(host, authHeader, userAgent string) *Connection {
	return &Connection{
		UserAgent:  userAgent,
		Host:       host,
		authHeader: authHeader,
	}
}

// Do sends a request to endpoint, a path relative to the Connection's host that may carry a query
// string. A non-nil body is JSON-encoded unless it is a []byte.
//
// Responses with a status outside 2xx return an *HttpError along with the Response. Transport
// errors are returned as *protocol.CommandError.
func (c *Connection) Do(ctx context.Context, method, endpoint string, body interface{}) (*Response, error) {
	var payload io.Reader
	if body != nil {
		encoded, ok := body.([]byte)
		if !ok {
			var err error
			if encoded, err = json.Marshal(body); err != nil {
				return nil, err
			}
		}
		log.Debug("Sending %s request to %s: %s", method, endpoint, encoded)
		payload = bytes.NewReader(encoded)
	} else {
		log.Debug("Sending %s request to %s", method, endpoint)
	}

	url := fmt.Sprintf("https://%s/%s", c.Host, strings.TrimPrefix(endpoint, "/"))
	request, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, &protocol.CommandError{Err: err, PossibleSuccess: false, PossibleTemporary: false}
	}
	request.Header.Set("User-Agent", c.UserAgent)
	request.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		request.Header.Set("Authorization", c.authHeader)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	result, err := c.client.Do(request)
	if err != nil {
		// Anything but a GET may have reached the backend before the connection failed.
		return nil, &protocol.CommandError{Err: err, PossibleSuccess: method != http.MethodGet, PossibleTemporary: true}
	}
	defer result.Body.Close()

	buffer := make([]byte, MaxResponseLength+1)
	buffer, err = ReadWithContext(ctx, result.Body, buffer)
	if err != nil {
		return nil, &protocol.CommandError{Err: err, PossibleSuccess: true, PossibleTemporary: false}
	}
	if len(buffer) == MaxResponseLength+1 {
		return nil, protocol.NewError("response exceeds maximum length", true, true)
	}

	log.Debug("Server returned %d: %s: %s", result.StatusCode, http.StatusText(result.StatusCode), buffer)
	rsp := &Response{StatusCode: result.StatusCode, Header: result.Header, Body: buffer}
	if result.StatusCode < 200 || result.StatusCode > 299 {
		return rsp, &HttpError{Code: result.StatusCode, Message: strings.TrimSpace(string(buffer))}
	}
	return rsp, nil
}

func (c *Connection) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Connection) Post(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, body)
}

func (c *Connection) Put(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, body)
}
