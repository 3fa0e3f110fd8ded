package pilight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mdouchement/logger"
	"github.com/thoukydides/fantasiad/fantasia"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 5001

	// Success is the status reported by the daemon on an accepted command.
	Success = "success"
)

// An Error is returned when the daemon could not be reached or refused a command.
type Error struct {
	Message string
	Latency time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("pilight error: %s (+%dms)", e.Message, e.Latency.Milliseconds())
}

type reply struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// A Client sends commands to the pilight daemon webserver.
type Client struct {
	host string
	port int
	http *http.Client
	log  logger.Logger
}

func New(host string, port int) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}

	return &Client{
		host: host,
		port: port,
		http: &http.Client{},
	}
}

func (c *Client) SetLogger(l logger.Logger) {
	c.log = l
}

func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
}

func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Transmit sends timings as a raw code.
func (c *Client) Transmit(ctx context.Context, tx fantasia.Timings) error {
	args := url.Values{}
	args.Set("protocol", "raw")
	args.Set("code", "'"+tx.Code()+"'")

	return c.Send(ctx, "send", args)
}

// Send issues a GET /cmd with args to the daemon and checks its reply.
func (c *Client) Send(ctx context.Context, cmd string, args url.Values) error {
	u := url.URL{
		Scheme:   "http",
		Host:     c.Addr(),
		Path:     "/" + cmd,
		RawQuery: args.Encode(),
	}

	prefix := "pilight-" + cmd + ": "
	c.debug(prefix + "GET")
	start := time.Now()

	msg, err := c.get(ctx, u.String())
	latency := time.Since(start)
	if err != nil {
		if c.log != nil {
			c.log.Errorf("%sERROR %s +%dms", prefix, err, latency.Milliseconds())
		}
		return &Error{Message: err.Error(), Latency: latency}
	}

	c.debug(fmt.Sprintf("%s%s +%dms", prefix, msg, latency.Milliseconds()))
	return nil
}

// get returns the daemon message on success or an error carrying the most relevant failure message.
func (c *Client) get(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg := http.StatusText(resp.StatusCode)

	var body reply
	p, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(p) > 0 {
		err = json.Unmarshal(p, &body)
	}
	if body.Message != "" {
		msg = body.Message
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.New(msg)
	}
	if err != nil {
		return "", fmt.Errorf("invalid reply: %w", err)
	}
	// The webserver only answers with a message, other daemons set a status.
	status := body.Status
	if status == "" {
		status = body.Message
	}
	if status != Success {
		if msg == Success {
			msg = body.Status
		}
		return "", errors.New(msg)
	}

	return msg, nil
}

func (c *Client) debug(msg string) {
	if c.log != nil {
		c.log.Debug(msg)
	}
}
