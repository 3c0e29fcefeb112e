package resource

import (
	"context"
	"io"
)

// limiter charges a Controller's IO budget and counts the bytes it let
// through.
type limiter struct {
	ctx context.Context
	rc  *Controller
	n   int64
}

// N returns the bytes transferred so far.
func (l *limiter) N() int64 { return l.n }

// RateLimitedWriter paces writes to the controller's IO limit. Tokens are
// taken before each write.
type RateLimitedWriter struct {
	limiter
	w io.Writer
}

func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{limiter: limiter{ctx: ctx, rc: rc}, w: w}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

// RateLimitedReader paces reads to the controller's IO limit. Tokens are
// taken after each read for the bytes actually returned.
type RateLimitedReader struct {
	limiter
	r io.Reader
}

func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{limiter: limiter{ctx: ctx, rc: rc}, r: r}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	if n > 0 {
		if lerr := r.rc.AcquireIO(r.ctx, n); lerr != nil {
			return n, lerr
		}
	}
	return n, err
}
