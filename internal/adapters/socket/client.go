package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tomas/vigia/internal/domain/risk"
)

// Client connects to the vigia daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.callInto(Request{ID: "1", Method: MethodHealth}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Assess evaluates one reading on the daemon.
func (c *Client) Assess(r risk.Reading) (*risk.Assessment, error) {
	var result AssessResult
	req := Request{ID: "1", Method: MethodAssess, Params: AssessParams{Reading: r}}
	if err := c.callInto(req, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result.Assessment, nil
}

// Risk fetches the latest assessment per zone.
func (c *Client) Risk() (*RiskResult, error) {
	var result RiskResult
	if err := c.callInto(Request{ID: "1", Method: MethodRisk}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report fetches an aggregated report over the most recent assessments.
func (c *Client) Report(limit int) (*risk.Report, error) {
	var result ReportResult
	req := Request{ID: "1", Method: MethodReport, Params: ReportParams{Limit: limit}}
	if err := c.callInto(req, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return result.Report, nil
}

// Stats fetches daemon counters.
func (c *Client) Stats() (*StatsResult, error) {
	var result StatsResult
	if err := c.callInto(Request{ID: "1", Method: MethodStats}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Train triggers model training on the daemon. Training from a large CSV
// can take a while, so the timeout is extended.
func (c *Client) Train(params TrainParams) (*TrainResult, error) {
	var result TrainResult
	req := Request{ID: "1", Method: MethodTrain, Params: params}
	if err := c.callInto(req, &result, 120*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Infer queries the daemon's trained model for raw sensor values.
func (c *Client) Infer(params InferParams) (*InferResult, error) {
	var result InferResult
	req := Request{ID: "1", Method: MethodInfer, Params: params}
	if err := c.callInto(req, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Wipe clears all project data on the daemon.
func (c *Client) Wipe() error {
	_, err := c.call(Request{ID: "1", Method: MethodWipe}, 5*time.Second)
	return err
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: "1", Method: MethodShutdown}, 5*time.Second)
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// callInto performs a call and decodes the result into the given struct.
func (c *Client) callInto(req Request, into interface{}, timeout time.Duration) error {
	resp, err := c.call(req, timeout)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, into); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	// Send request
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// Read response
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
