package neos

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/solver"
)

const (
	// DefaultEndpoint is the public NEOS XML-RPC endpoint.
	DefaultEndpoint = "https://neos-server.org:3333"

	// DefaultPollInterval is how often job status is polled.
	DefaultPollInterval = 5 * time.Second

	maxResponseBytes = 32 << 20
)

// Client submits session models to NEOS as CPLEX LP jobs.
// Implements solver.Gateway.
type Client struct {
	endpoint     string
	email        string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the NEOS endpoint (tests point this at a local
// fake).
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithPollInterval overrides the job status poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New creates a NEOS client. The email is the caller identity NEOS
// requires with every submission.
func New(email string, opts ...Option) (*Client, error) {
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("neos: a valid contact email is required, got %q", email)
	}
	c := &Client{
		endpoint:     DefaultEndpoint,
		email:        email,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// jobDocument is the NEOS job submission payload for a CPLEX LP job.
// The options block sets the solver-side time limit; the post block asks
// CPLEX to print the solution variables into the job log, which is the
// only artifact getFinalResults returns.
func (c *Client) jobDocument(m *model.Model, timeLimit time.Duration) string {
	var b strings.Builder
	b.WriteString("<document>\n")
	b.WriteString("<category>milp</category>\n")
	b.WriteString("<solver>CPLEX</solver>\n")
	b.WriteString("<inputMethod>LP</inputMethod>\n")
	fmt.Fprintf(&b, "<email>%s</email>\n", c.email)
	b.WriteString("<LP><![CDATA[\n")
	b.WriteString(m.LP())
	b.WriteString("]]></LP>\n")
	fmt.Fprintf(&b, "<options><![CDATA[set timelimit %d]]></options>\n", int(timeLimit.Seconds()))
	b.WriteString("<post><![CDATA[display solution variables -]]></post>\n")
	b.WriteString("</document>\n")
	return b.String()
}

// Solve implements solver.Gateway.
//
// Transport and service problems surface as StatusFailure results, never
// as fabricated assignments. Once submitted, a job runs to completion or
// timeout on the NEOS side; cancelling ctx abandons polling but does not
// recall the job.
func (c *Client) Solve(ctx context.Context, m *model.Model, timeLimit time.Duration) (*solver.Result, error) {
	if m == nil {
		return nil, fmt.Errorf("neos: nil model")
	}
	if timeLimit <= 0 {
		return nil, fmt.Errorf("neos: non-positive time limit %v", timeLimit)
	}

	if err := c.Ping(ctx); err != nil {
		return &solver.Result{Status: solver.StatusFailure, Reason: err.Error()}, nil
	}

	job, password, err := c.submit(ctx, m, timeLimit)
	if err != nil {
		return &solver.Result{Status: solver.StatusFailure, Reason: err.Error()}, nil
	}

	if err := c.waitDone(ctx, job, password); err != nil {
		return &solver.Result{Status: solver.StatusFailure, Reason: err.Error()}, nil
	}

	log, err := c.finalResults(ctx, job, password)
	if err != nil {
		return &solver.Result{Status: solver.StatusFailure, Reason: err.Error()}, nil
	}

	result, err := parseCPLEXLog(log, m)
	if err != nil {
		return &solver.Result{Status: solver.StatusFailure, Reason: err.Error()}, nil
	}
	if result.Usable() {
		if err := result.Assignment.Validate(m); err != nil {
			return &solver.Result{Status: solver.StatusFailure, Reason: fmt.Sprintf("solver returned invalid assignment: %v", err)}, nil
		}
	}
	return result, nil
}

// Ping checks that the NEOS service is up before a job is committed.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.call(ctx, "ping")
	if err != nil {
		return err
	}
	v, err := resp.firstValue()
	if err != nil {
		return err
	}
	msg, err := v.asString()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !strings.Contains(msg, "alive") {
		return fmt.Errorf("service not ready: %s", strings.TrimSpace(msg))
	}
	return nil
}

func (c *Client) submit(ctx context.Context, m *model.Model, timeLimit time.Duration) (job int, password string, err error) {
	resp, err := c.call(ctx, "submitJob", stringParam(c.jobDocument(m, timeLimit)))
	if err != nil {
		return 0, "", err
	}
	v, err := resp.firstValue()
	if err != nil {
		return 0, "", err
	}
	if v.Array == nil || len(v.Array.Values) != 2 {
		return 0, "", fmt.Errorf("submitJob: expected [jobNumber, password] pair")
	}
	if v.Array.Values[0].Int == nil {
		return 0, "", fmt.Errorf("submitJob: job number is not an int")
	}
	job = *v.Array.Values[0].Int
	password, err = v.Array.Values[1].asString()
	if err != nil {
		return 0, "", fmt.Errorf("submitJob: %w", err)
	}
	// NEOS signals a rejected submission with job number 0 and the
	// rejection reason in the password slot.
	if job == 0 {
		return 0, "", fmt.Errorf("submitJob rejected: %s", password)
	}
	return job, password, nil
}

func (c *Client) waitDone(ctx context.Context, job int, password string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		resp, err := c.call(ctx, "getJobStatus", intParam(job), stringParam(password))
		if err != nil {
			return err
		}
		v, err := resp.firstValue()
		if err != nil {
			return err
		}
		status, err := v.asString()
		if err != nil {
			return fmt.Errorf("getJobStatus: %w", err)
		}
		switch status {
		case "Done":
			return nil
		case "Running", "Waiting":
			// keep polling
		default:
			return fmt.Errorf("job %d entered unexpected status %q", job, status)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("abandoned while polling job %d: %w", job, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) finalResults(ctx context.Context, job int, password string) (string, error) {
	resp, err := c.call(ctx, "getFinalResults", intParam(job), stringParam(password))
	if err != nil {
		return "", err
	}
	v, err := resp.firstValue()
	if err != nil {
		return "", err
	}
	raw, err := v.asBase64()
	if err != nil {
		return "", fmt.Errorf("getFinalResults: %w", err)
	}
	return string(raw), nil
}
