package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"irverify/internal/domain"
)

// Wire operations of the stdio protocol. Each request and reply is one JSON object per line.
const (
	opArch       = "arch"
	opRegister   = "register"
	opTargetTier = "set_target_tier"
	opEnableDump = "enable_dump"
	opDeoptimize = "deoptimize"
	opInvoke     = "invoke"
	opTier       = "tier"
	opDump       = "dump"
	opClose      = "close"
)

type request struct {
	Op     string             `json:"op"`
	Method string             `json:"method,omitempty"`
	Tier   domain.Tier        `json:"tier,omitempty"`
	Phase  domain.Phase       `json:"phase,omitempty"`
	Args   []domain.Value     `json:"args,omitempty"`
	Body   *domain.MethodBody `json:"body,omitempty"`
}

type response struct {
	OK         bool        `json:"ok"`
	Error      string      `json:"error,omitempty"`
	Arch       domain.Arch `json:"arch,omitempty"`
	Tier       domain.Tier `json:"tier,omitempty"`
	Invocation *Invocation `json:"invocation,omitempty"`
	Text       string      `json:"text,omitempty"`
	Found      bool        `json:"found,omitempty"`
}

// Client talks to a runtime living in another process over the stdio protocol.
// Calls are serialized; it is safe for concurrent use.
type Client struct {
	mu     sync.Mutex
	enc    *json.Encoder
	dec    *json.Decoder
	closer io.Closer
	cmd    *exec.Cmd
	arch   domain.Arch
	broken error
}

// NewClient wraps an established connection and performs the arch handshake
func NewClient(r io.Reader, w io.WriteCloser) (*Client, error) {
	c := &Client{enc: json.NewEncoder(w), dec: json.NewDecoder(r), closer: w}
	resp, err := c.call(request{Op: opArch})
	if err != nil {
		return nil, err
	}
	c.arch = resp.Arch
	return c, nil
}

// Start launches command and connects to it over its stdin and stdout
func Start(ctx context.Context, command []string, env []string) (*Client, error) {
	if len(command) == 0 {
		return nil, errors.New("no runtime command configured")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("runtime stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("runtime stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start runtime %s: %w", command[0], err)
	}

	c, err := NewClient(stdout, stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	c.cmd = cmd
	return c, nil
}

func (c *Client) call(req request) (response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return response{}, c.broken
	}
	if err := c.enc.Encode(req); err != nil {
		c.broken = fmt.Errorf("%w: send %s: %v", ErrRuntimeCrashed, req.Op, err)
		return response{}, c.broken
	}
	var resp response
	if err := c.dec.Decode(&resp); err != nil {
		c.broken = fmt.Errorf("%w: receive %s: %v", ErrRuntimeCrashed, req.Op, err)
		return response{}, c.broken
	}
	if !resp.OK {
		return resp, fmt.Errorf("runtime %s %s: %s", req.Op, req.Method, resp.Error)
	}
	return resp, nil
}

// Arch returns the arch reported during the handshake
func (c *Client) Arch() domain.Arch {
	return c.arch
}

// Register defines a method on runtimes that accept body descriptions
func (c *Client) Register(method string, body domain.MethodBody) error {
	_, err := c.call(request{Op: opRegister, Method: method, Body: &body})
	return err
}

func (c *Client) SetTargetTier(method string, tier domain.Tier) error {
	_, err := c.call(request{Op: opTargetTier, Method: method, Tier: tier})
	return err
}

func (c *Client) EnableDump(method string, phase domain.Phase) error {
	_, err := c.call(request{Op: opEnableDump, Method: method, Phase: phase})
	return err
}

func (c *Client) Deoptimize(method string) error {
	_, err := c.call(request{Op: opDeoptimize, Method: method})
	return err
}

func (c *Client) Invoke(method string, args []domain.Value) (Invocation, error) {
	resp, err := c.call(request{Op: opInvoke, Method: method, Args: args})
	if err != nil {
		return Invocation{}, err
	}
	if resp.Invocation == nil {
		return Invocation{}, nil
	}
	return *resp.Invocation, nil
}

func (c *Client) Tier(method string) (domain.Tier, error) {
	resp, err := c.call(request{Op: opTier, Method: method})
	return resp.Tier, err
}

func (c *Client) Dump(method string, phase domain.Phase) (string, bool, error) {
	resp, err := c.call(request{Op: opDump, Method: method, Phase: phase})
	return resp.Text, resp.Found, err
}

// Close asks the runtime to exit and waits for the process, if one was started
func (c *Client) Close() error {
	_, callErr := c.call(request{Op: opClose})
	closeErr := c.closer.Close()
	if c.cmd != nil {
		if err := c.cmd.Wait(); err != nil {
			return fmt.Errorf("runtime exit: %w", err)
		}
	}
	if callErr != nil && !errors.Is(callErr, ErrRuntimeCrashed) {
		return callErr
	}
	return closeErr
}

// Serve answers protocol requests on r and w using rt until the peer sends close or hangs up
func Serve(rt Runtime, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)
	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}
		resp := dispatch(rt, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if req.Op == opClose {
			return nil
		}
	}
}

func dispatch(rt Runtime, req request) response {
	fail := func(err error) response {
		return response{Error: err.Error()}
	}
	switch req.Op {
	case opArch:
		return response{OK: true, Arch: rt.Arch()}
	case opRegister:
		reg, ok := rt.(Registrar)
		if !ok {
			return fail(errors.New("runtime does not accept method bodies"))
		}
		if req.Body == nil {
			return fail(errors.New("register without body"))
		}
		if err := reg.Register(req.Method, *req.Body); err != nil {
			return fail(err)
		}
	case opTargetTier:
		if err := rt.SetTargetTier(req.Method, req.Tier); err != nil {
			return fail(err)
		}
	case opEnableDump:
		if err := rt.EnableDump(req.Method, req.Phase); err != nil {
			return fail(err)
		}
	case opDeoptimize:
		if err := rt.Deoptimize(req.Method); err != nil {
			return fail(err)
		}
	case opInvoke:
		inv, err := rt.Invoke(req.Method, req.Args)
		if err != nil {
			return fail(err)
		}
		return response{OK: true, Invocation: &inv}
	case opTier:
		tier, err := rt.Tier(req.Method)
		if err != nil {
			return fail(err)
		}
		return response{OK: true, Tier: tier}
	case opDump:
		text, found, err := rt.Dump(req.Method, req.Phase)
		if err != nil {
			return fail(err)
		}
		return response{OK: true, Text: text, Found: found}
	case opClose:
	default:
		return fail(fmt.Errorf("unknown op %q", req.Op))
	}
	return response{OK: true}
}
