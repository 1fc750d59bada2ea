package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ErrorClass categorizes a Transporter failure the way spec.md §6 requires:
// NotFound (the resource genuinely does not exist) vs Other (everything
// else — network errors, 5xx, malformed responses).
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassNotFound
)

// TransferListener observes a Get/Put transfer's lifecycle. Returning an
// error from either callback cancels the transfer with ErrTransferCancelled.
type TransferListener interface {
	Started(ctx context.Context, resource string, contentLength int64) error
	Progressed(ctx context.Context, resource string, transferred int64) error
}

// ErrTransferCancelled is returned when a TransferListener callback errors.
var ErrTransferCancelled = errors.New("transport: transfer cancelled by listener")

// Transporter is the wire-level contract the engine's DescriptorReader and
// VersionRangeResolver implementations are built on (spec.md §6): peek
// checks existence without transferring, get retrieves a resource (optionally
// resuming from an offset), put uploads one, and classify sorts any
// returned error into NotFound vs Other so callers can distinguish "this
// repository simply doesn't have it" from a transient failure.
type Transporter interface {
	Peek(ctx context.Context, resource string) (bool, error)
	Get(ctx context.Context, resource string, dst io.Writer, offset int64, listener TransferListener) error
	Put(ctx context.Context, resource string, src io.Reader, size int64, listener TransferListener) error
	Classify(err error) ErrorClass
}

// HTTPTransporter is the Transporter implementation for remote repositories,
// built on Client.
type HTTPTransporter struct {
	BaseURL string
	Client  *Client
}

// NewHTTPTransporter returns a Transporter against baseURL using client.
func NewHTTPTransporter(baseURL string, client *Client) *HTTPTransporter {
	return &HTTPTransporter{BaseURL: baseURL, Client: client}
}

func (t *HTTPTransporter) resourceURL(resource string) string {
	if len(t.BaseURL) > 0 && t.BaseURL[len(t.BaseURL)-1] == '/' {
		return t.BaseURL + resource
	}
	return t.BaseURL + "/" + resource
}

// Peek issues a HEAD request to check resource existence without transfer.
func (t *HTTPTransporter) Peek(ctx context.Context, resource string) (bool, error) {
	req, err := http.NewRequest(http.MethodHead, t.resourceURL(resource), nil)
	if err != nil {
		return false, fmt.Errorf("build HEAD request: %w", err)
	}
	resp, err := t.Client.Do(ctx, req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("peek %s: unexpected status %d", resource, resp.StatusCode)
	}
	return true, nil
}

// Get retrieves resource into dst, optionally resuming from offset via a
// Range header, notifying listener at transfer start and completion.
func (t *HTTPTransporter) Get(ctx context.Context, resource string, dst io.Writer, offset int64, listener TransferListener) error {
	req, err := http.NewRequest(http.MethodGet, t.resourceURL(resource), nil)
	if err != nil {
		return fmt.Errorf("build GET request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := t.Client.DoWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Resource: resource}
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("get %s: unexpected status %d", resource, resp.StatusCode)
	}

	if listener != nil {
		if err := listener.Started(ctx, resource, resp.ContentLength); err != nil {
			return ErrTransferCancelled
		}
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", resource, err)
	}
	if listener != nil {
		if err := listener.Progressed(ctx, resource, written); err != nil {
			return ErrTransferCancelled
		}
	}
	return nil
}

// Put uploads src to resource via PUT, reporting progress through listener.
func (t *HTTPTransporter) Put(ctx context.Context, resource string, src io.Reader, size int64, listener TransferListener) error {
	if listener != nil {
		if err := listener.Started(ctx, resource, size); err != nil {
			return ErrTransferCancelled
		}
	}

	req, err := http.NewRequest(http.MethodPut, t.resourceURL(resource), src)
	if err != nil {
		return fmt.Errorf("build PUT request: %w", err)
	}
	req.ContentLength = size

	resp, err := t.Client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("put %s: unexpected status %d", resource, resp.StatusCode)
	}
	if listener != nil {
		if err := listener.Progressed(ctx, resource, size); err != nil {
			return ErrTransferCancelled
		}
	}
	return nil
}

// NotFoundError marks a Transporter failure as "resource does not exist",
// the case Classify must report as ClassNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("resource not found: %s", e.Resource) }

// Classify sorts err into NotFound vs Other.
func (t *HTTPTransporter) Classify(err error) ErrorClass {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ClassNotFound
	}
	if errors.Is(err, os.ErrNotExist) {
		return ClassNotFound
	}
	return ClassOther
}

// FileTransporter is the Transporter implementation for a local,
// filesystem-backed repository (a Maven2-layout directory tree).
type FileTransporter struct {
	RootDir string
}

// NewFileTransporter returns a Transporter rooted at dir.
func NewFileTransporter(dir string) *FileTransporter {
	return &FileTransporter{RootDir: dir}
}

func (t *FileTransporter) path(resource string) string {
	return t.RootDir + string(os.PathSeparator) + resource
}

func (t *FileTransporter) Peek(ctx context.Context, resource string) (bool, error) {
	_, err := os.Stat(t.path(resource))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *FileTransporter) Get(ctx context.Context, resource string, dst io.Writer, offset int64, listener TransferListener) error {
	f, err := os.Open(t.path(resource))
	if errors.Is(err, os.ErrNotExist) {
		return &NotFoundError{Resource: resource}
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}

	if listener != nil {
		if err := listener.Started(ctx, resource, info.Size()-offset); err != nil {
			return ErrTransferCancelled
		}
	}
	written, err := io.Copy(dst, f)
	if err != nil {
		return err
	}
	if listener != nil {
		if err := listener.Progressed(ctx, resource, written); err != nil {
			return ErrTransferCancelled
		}
	}
	return nil
}

func (t *FileTransporter) Put(ctx context.Context, resource string, src io.Reader, size int64, listener TransferListener) error {
	if listener != nil {
		if err := listener.Started(ctx, resource, size); err != nil {
			return ErrTransferCancelled
		}
	}
	f, err := os.Create(t.path(resource))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	written, err := io.Copy(f, src)
	if err != nil {
		return err
	}
	if listener != nil {
		if err := listener.Progressed(ctx, resource, written); err != nil {
			return ErrTransferCancelled
		}
	}
	return nil
}

func (t *FileTransporter) Classify(err error) ErrorClass {
	var nf *NotFoundError
	if errors.As(err, &nf) || errors.Is(err, os.ErrNotExist) {
		return ClassNotFound
	}
	return ClassOther
}
