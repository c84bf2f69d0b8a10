package charx

import "context"

// Parse is the synchronous entry point: it runs extraction in the caller's
// goroutine and returns the finished container or a typed error. Worker
// dispatch (see Dispatch) runs the identical logic, so both modes produce
// the same result content for the same bytes.
func Parse(ctx context.Context, data []byte, opts Options) (*Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return extract(ctx, data, opts)
}
