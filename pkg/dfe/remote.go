package dfe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

const (
	remoteDialTimeout  = 2 * time.Second
	remoteWriteTimeout = 30 * time.Second
	remoteReadTimeout  = 30 * time.Second
)

// RemoteClient runs the DFE/CDR contract against an external process over a
// newline-delimited JSON protocol: one request object per run, one response
// object per line back.
type RemoteClient struct {
	address string
	config  Config

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader

	stateMu   sync.RWMutex
	connected bool
	lastRunAt time.Time
}

// NewRemoteClient creates a client targeting a DFE/CDR service at address
// (host:port). The connection is established lazily on first Run.
func NewRemoteClient(address string, cfg Config) *RemoteClient {
	return &RemoteClient{address: address, config: cfg}
}

var _ Runner = (*RemoteClient)(nil)

type remoteRequest struct {
	Config Config    `json:"config"`
	T      []float64 `json:"t"`
	Y      []float64 `json:"y"`
}

type remoteResponse struct {
	Output Output `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Connect dials the remote DFE/CDR service.
func (c *RemoteClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
	}

	conn, err := net.DialTimeout("tcp", c.address, remoteDialTimeout)
	if err != nil {
		c.stateMu.Lock()
		c.connected = false
		c.stateMu.Unlock()
		return fmt.Errorf("dfe: failed to connect to remote DFE at %s: %w", c.address, err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)

	c.stateMu.Lock()
	c.connected = true
	c.stateMu.Unlock()

	log.Printf("dfe: connected to remote DFE/CDR at %s", c.address)
	return nil
}

// Disconnect closes the connection.
func (c *RemoteClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	c.stateMu.Lock()
	c.connected = false
	c.stateMu.Unlock()
}

// IsConnected reports whether the client currently holds an open connection.
func (c *RemoteClient) IsConnected() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.connected
}

// Run sends (t, y) and the configured constructor arguments to the remote
// service and blocks for its recovery result.
func (c *RemoteClient) Run(t, y []float64) (Output, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(); err != nil {
			return Output{}, err
		}
	}

	req := remoteRequest{Config: c.config, T: t, Y: y}
	payload, err := json.Marshal(req)
	if err != nil {
		return Output{}, fmt.Errorf("dfe: failed to encode request: %w", err)
	}

	c.conn.SetWriteDeadline(time.Now().Add(remoteWriteTimeout))
	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		c.handleDisconnectLocked()
		return Output{}, fmt.Errorf("dfe: failed to send request: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(remoteReadTimeout))
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.handleDisconnectLocked()
		return Output{}, fmt.Errorf("dfe: failed to read response: %w", err)
	}

	var resp remoteResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return Output{}, fmt.Errorf("dfe: failed to decode response: %w", err)
	}
	if resp.Error != "" {
		return Output{}, fmt.Errorf("dfe: remote DFE error: %s", resp.Error)
	}

	c.stateMu.Lock()
	c.lastRunAt = time.Now()
	c.stateMu.Unlock()

	return resp.Output, nil
}

// connectLocked dials the remote service; caller must hold c.mu.
func (c *RemoteClient) connectLocked() error {
	conn, err := net.DialTimeout("tcp", c.address, remoteDialTimeout)
	if err != nil {
		return fmt.Errorf("dfe: failed to connect to remote DFE at %s: %w", c.address, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.stateMu.Lock()
	c.connected = true
	c.stateMu.Unlock()
	return nil
}

// handleDisconnectLocked marks the client as disconnected; caller must hold c.mu.
func (c *RemoteClient) handleDisconnectLocked() {
	c.stateMu.Lock()
	c.connected = false
	c.stateMu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
