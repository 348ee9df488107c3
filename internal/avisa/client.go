package avisa

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const apiPrefix = "/api/"

type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Client talks JSON to the scheduling service. Non-200 responses are
// returned as-is, only failures to get a response at all are errors.
// It is safe for concurrent use.
type Client struct {
	log  *zap.Logger
	host string

	httpClient *http.Client
}

func NewClient(log *zap.Logger, host string, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Host() string {
	return c.host
}

// ResultsURL points at the web UI page holding the results of a test.
func (c *Client) ResultsURL(testID ID) string {
	return "http://" + c.host + "/ui/results/" + string(testID)
}

func (c *Client) Post(ctx context.Context, path string, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, data)
}

func (c *Client) Get(ctx context.Context, path string, data any) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, data)
}

func (c *Client) Put(ctx context.Context, path string, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, data)
}

func (c *Client) Delete(ctx context.Context, path string, data any) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, data)
}

func (c *Client) do(ctx context.Context, method, path string, data any) (*Response, error) {
	url := "http://" + c.host + apiPrefix + path

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrap(err, "marshalling request body")
		}
		body = bytes.NewReader(b)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating new request")
	}
	if data != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(request)
	if err != nil {
		c.log.Warn("http request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, errors.Wrapf(ErrTransport, "%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "reading response of %s %s: %v", method, url, err)
	}

	response := &Response{StatusCode: res.StatusCode, Body: b}

	if response.OK() {
		c.log.Debug("http request done",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", res.StatusCode),
			zap.ByteString("response", b),
		)
	} else {
		c.log.Warn("http request returned unexpected status",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", res.StatusCode),
			zap.Any("data", data),
			zap.ByteString("response", b),
		)
	}

	return response, nil
}
