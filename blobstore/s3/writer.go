package s3

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var errUploadAborted = errors.New("s3: upload aborted")

// uploadWriter pipes writes into a background multipart upload.
type uploadWriter struct {
	pw   *io.PipeWriter
	done chan error

	mu       sync.Mutex
	finished bool
	err      error
}

func newUploadWriter(ctx context.Context, uploader *manager.Uploader, in *s3.PutObjectInput) *uploadWriter {
	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	in.Body = pr

	go func() {
		_, err := uploader.Upload(ctx, in)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Sync is a no-op: the object is committed on Close.
func (w *uploadWriter) Sync() error { return nil }

// finish ends the pipe once and records the upload result.
func (w *uploadWriter) finish(cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return w.err
	}
	w.finished = true

	if cause == nil {
		_ = w.pw.Close()
	} else {
		_ = w.pw.CloseWithError(cause)
	}
	w.err = <-w.done
	return w.err
}

func (w *uploadWriter) Close() error {
	return w.finish(nil)
}

// Abort cancels the upload. The uploader removes any parts already sent, so
// its failure is expected and dropped.
func (w *uploadWriter) Abort() error {
	_ = w.finish(errUploadAborted)
	return nil
}
