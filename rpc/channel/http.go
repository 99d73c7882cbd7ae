package channel

import (
	"bytes"
	"context"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"net/url"
	"time"
)

var Logger = logger.GetLogger("channel")

// credentialHeader carries the optional access token of the store
const credentialHeader = "X-DDocs-Credential"

// NewHTTPChannel creates a request channel for one logical database. All
// requests are sent as HTTP POST to {URL}/dbs/{database} using the given
// serializer. The conventions instance is the store-wide shared one; the
// channel keeps it so collaborators resolved through the channel observe the
// same policy as the store.
func NewHTTPChannel(
	config common.ClientConfig,
	database string,
	conventions *common.Conventions,
	ser serializer.IRPCSerializer,
) (IRequestChannel, error) {
	baseURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url %q: %v", config.URL, err)
	}
	if database == "" {
		return nil, fmt.Errorf("database name must not be empty")
	}

	retryCount := config.RetryCount
	if retryCount < 1 {
		retryCount = 1
	}

	return &httpChannel{
		database:    database,
		endpoint:    baseURL.JoinPath("dbs", database).String(),
		credential:  config.Credential,
		conventions: conventions,
		serializer:  ser,
		retryCount:  retryCount,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutSecond) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     time.Duration(config.TimeoutSecond) * time.Second,
			},
		},
		requests: metrics.GetOrCreateCounter(fmt.Sprintf(`ddocs_channel_requests_total{database=%q}`, database)),
		failures: metrics.GetOrCreateCounter(fmt.Sprintf(`ddocs_channel_failures_total{database=%q}`, database)),
	}, nil
}

// httpChannel implements IRequestChannel over HTTP
type httpChannel struct {
	database    string
	endpoint    string
	credential  string
	conventions *common.Conventions
	serializer  serializer.IRPCSerializer
	retryCount  int
	client      *http.Client

	requests *metrics.Counter
	failures *metrics.Counter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see channel.IRequestChannel)
// --------------------------------------------------------------------------

func (c *httpChannel) Database() string {
	return c.database
}

func (c *httpChannel) Conventions() *common.Conventions {
	return c.conventions
}

func (c *httpChannel) Execute(ctx context.Context, req *common.Message) (*common.Message, error) {
	c.requests.Inc()

	// Serialize the request
	reqBytes, err := c.serializer.Serialize(*req)
	if err != nil {
		c.failures.Inc()
		return nil, err
	}

	// Send the request (with retries)
	respBytes, err := c.send(ctx, reqBytes)
	if err != nil {
		c.failures.Inc()
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	if err := c.serializer.Deserialize(respBytes, resp); err != nil {
		c.failures.Inc()
		return nil, fmt.Errorf("channel %s - Error: %v", c.database, err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		c.failures.Inc()
		return nil, fmt.Errorf("channel %s - Error: %s", c.database, resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		c.failures.Inc()
		return nil, fmt.Errorf("channel %s - Unexpected message type: %s, expected %s", c.database, resp.MsgType, req.MsgType)
	}

	return resp, nil
}

func (c *httpChannel) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send posts the serialized message and returns the raw response body
func (c *httpChannel) send(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.retryCount; i++ {
		// A fresh request per attempt, the body reader is consumed on send
		httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpRequest.Header.Set("Content-Type", c.serializer.ContentType())
		if c.credential != "" {
			httpRequest.Header.Set(credentialHeader, c.credential)
		}

		httpResponse, err := c.client.Do(httpRequest)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				// Cancellation is not retried
				return nil, ctx.Err()
			}
			Logger.Debugf("Request attempt %d/%d to %s failed: %v", i+1, c.retryCount, c.endpoint, err)
			continue
		}

		respBytes, err := readBody(httpResponse)
		if err != nil {
			lastErr = err
			continue
		}
		return respBytes, nil
	}

	return nil, fmt.Errorf("failed to send request to %s after %d attempts: %v", c.endpoint, c.retryCount, lastErr)
}

// readBody drains and closes the response body and verifies the status code
func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("http error: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
