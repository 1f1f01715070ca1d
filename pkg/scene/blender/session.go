// Package blender implements scene.Host on top of a Blender process running
// in background mode.
package blender

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the Blender process.
type Options struct {
	Executable     string   // Blender binary
	Args           []string // extra arguments placed before --python
	FactoryStartup bool     // ignore user preferences and startup file
}

// Session is a running Blender process driven over stdin/stdout.
// It is not safe for concurrent use.
type Session struct {
	in     io.WriteCloser
	out    *bufio.Reader
	enc    *json.Encoder
	nextID uint64
	closed bool
	log    *zap.Logger

	cmd    *exec.Cmd
	script string
}

// Start launches Blender with the bridge script.
func Start(ctx context.Context, opts Options, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	f, err := os.CreateTemp("", "meshforge-bridge-*.py")
	if err != nil {
		return nil, fmt.Errorf("creating bridge script: %w", err)
	}
	script := f.Name()
	if _, err := f.WriteString(bridgeScript); err != nil {
		f.Close()
		os.Remove(script)
		return nil, fmt.Errorf("writing bridge script: %w", err)
	}
	f.Close()

	cmd := exec.CommandContext(ctx, opts.Executable, commandArgs(opts, script)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(script)
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.Remove(script)
		return nil, err
	}
	if stderr, err := zap.NewStdLogAt(log.Named("blender"), zapcore.DebugLevel); err == nil {
		cmd.Stderr = stderr.Writer()
	}

	if err := cmd.Start(); err != nil {
		os.Remove(script)
		return nil, fmt.Errorf("starting %s: %w", opts.Executable, err)
	}
	log.Info("blender started", zap.String("executable", opts.Executable), zap.Int("pid", cmd.Process.Pid))

	s := newSession(stdout, stdin, log)
	s.cmd = cmd
	s.script = script
	return s, nil
}

// commandArgs builds Blender's argument list.
func commandArgs(opts Options, script string) []string {
	args := []string{"--background"}
	if opts.FactoryStartup {
		args = append(args, "--factory-startup")
	}
	args = append(args, opts.Args...)
	return append(args, "--python", script)
}

func newSession(r io.Reader, w io.WriteCloser, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		in:  w,
		out: bufio.NewReader(r),
		enc: json.NewEncoder(w),
		log: log,
	}
}

// call sends one request and waits for its reply. Any transport or protocol
// failure closes the session.
func (s *Session) call(req request) (response, error) {
	if s.closed {
		return response{}, ErrClosed
	}
	s.nextID++
	req.ID = s.nextID

	if err := s.enc.Encode(req); err != nil {
		s.abort()
		return response{}, fmt.Errorf("sending %s: %w", req.Op, err)
	}

	for {
		line, err := s.out.ReadString('\n')
		if err != nil {
			s.abort()
			if errors.Is(err, io.EOF) {
				return response{}, fmt.Errorf("%s: %w", req.Op, ErrBridgeExited)
			}
			return response{}, fmt.Errorf("reading reply to %s: %w", req.Op, err)
		}
		line = strings.TrimRight(line, "\r\n")

		payload, ok := strings.CutPrefix(line, replyMarker)
		if !ok {
			if line != "" {
				s.log.Debug("blender output", zap.String("line", line))
			}
			continue
		}

		var resp response
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			s.abort()
			return response{}, fmt.Errorf("%w: decoding reply to %s: %v", ErrProtocol, req.Op, err)
		}
		if resp.ID != req.ID {
			s.abort()
			return response{}, fmt.Errorf("%w: reply id %d for request %d", ErrProtocol, resp.ID, req.ID)
		}
		if !resp.OK {
			return resp, &HostError{Op: req.Op, Message: resp.Error}
		}
		return resp, nil
	}
}

func (s *Session) abort() {
	if s.closed {
		return
	}
	s.closed = true
	s.in.Close()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

// Close asks the bridge to quit and waits for Blender to exit.
func (s *Session) Close() error {
	var err error
	if !s.closed {
		if _, qerr := s.call(request{Op: opQuit}); qerr != nil {
			s.log.Warn("blender quit failed", zap.Error(qerr))
		}
		s.closed = true
		s.in.Close()
	}
	if s.cmd != nil {
		if werr := s.cmd.Wait(); werr != nil && !isKilled(werr) {
			err = fmt.Errorf("waiting for blender: %w", werr)
		}
		s.cmd = nil
	}
	if s.script != "" {
		os.Remove(s.script)
		s.script = ""
	}
	return err
}

func isKilled(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == -1
}
