package charx

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	charxerr "github.com/risutools/charx/internal/errors"
)

// Request is the single inbound message for a worker-mode parse.
type Request struct {
	// JobID correlates the eventual Response with this request
	JobID string

	// Data is the raw archive bytes. The worker owns them until it responds;
	// callers must not mutate the slice while the parse runs.
	Data []byte

	// Options configures the parse
	Options Options
}

// Response is the single terminal message from a worker-mode parse: either
// a finished container or an error, never both.
type Response struct {
	// JobID echoes the request's job ID
	JobID string

	// Container is the parse result when Err is nil
	Container *Container

	// Err is the typed failure when the parse did not finish
	Err error
}

// NewRequest wraps archive bytes in a Request with a fresh job ID.
func NewRequest(data []byte, opts Options) (Request, error) {
	jobID, err := generateULID()
	if err != nil {
		return Request{}, charxerr.NewInternal(err)
	}
	return Request{JobID: jobID, Data: data, Options: opts}, nil
}

// runParse is swapped in tests to exercise the worker crash path.
var runParse = Parse

// Dispatch starts an isolated parse for req and returns its one-shot
// response channel. The channel is buffered, so the worker finishes and
// releases its memory even if the caller stops listening. The worker shares
// no state with the caller beyond the request and the response; a panic
// inside the worker surfaces as a WORKER_FAILURE response rather than
// crashing the caller, keeping infrastructure failures distinct from
// content-level parse errors.
func Dispatch(ctx context.Context, req Request) <-chan Response {
	opts := req.Options.withDefaults()
	ch := make(chan Response, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				opts.Logger.Warn("parse worker crashed", "job_id", req.JobID, "cause", r)
				ch <- Response{JobID: req.JobID, Err: charxerr.NewWorkerFailure(req.JobID, r)}
			}
		}()

		opts.Logger.Debug("parse job started", "job_id", req.JobID, "bytes", len(req.Data))
		container, err := runParse(ctx, req.Data, opts)
		ch <- Response{JobID: req.JobID, Container: container, Err: err}
	}()

	return ch
}

// generateULID creates a new ULID for job identification.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
