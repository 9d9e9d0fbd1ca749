// Package transport holds the two framings of the dispatcher: a
// line-delimited stdio loop and an HTTP server.
package transport

import (
	"bufio"
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/quartzhollow/mcpgraph/internal/logging"
	"github.com/quartzhollow/mcpgraph/internal/rpc"
)

// StdioAdapter reads one newline-terminated JSON-RPC request per
// line from r and writes one newline-terminated response per line to
// w, flushed immediately.
type StdioAdapter struct {
	dispatcher *rpc.Dispatcher
	logger     *logging.Logger
	reader     *bufio.Reader
	writer     io.Writer
}

// NewStdioAdapter builds an adapter over r/w.
func NewStdioAdapter(dispatcher *rpc.Dispatcher, logger *logging.Logger, r io.Reader, w io.Writer) *StdioAdapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StdioAdapter{dispatcher: dispatcher, logger: logger, reader: bufio.NewReader(r), writer: w}
}

// Run reads and dispatches lines until EOF or ctx is cancelled.
// EOF terminates the loop cleanly; any other read error terminates
// the loop and is logged. A broken stream is never retried.
func (a *StdioAdapter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := a.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line != "" {
					a.writeResponse(ctx, line)
				}
				return nil
			}
			a.logger.Error(ctx, "stdio: read error", zap.Error(err))
			return err
		}

		a.writeResponse(ctx, line)
	}
}

func (a *StdioAdapter) writeResponse(ctx context.Context, line string) {
	resp := a.dispatcher.Handle(ctx, line)
	if resp == "" {
		return
	}
	if _, err := io.WriteString(a.writer, resp+"\n"); err != nil {
		a.logger.Error(ctx, "stdio: write error", zap.Error(err))
	}
}
