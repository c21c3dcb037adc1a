package internal

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"strconv"
	"sync"
)

// DefaultBufferLimit caps how much of a response body is held for
// transformation.
const DefaultBufferLimit = 5 << 20 // 5MiB

// BodyTransformer rewrites a complete response body. Match is called once,
// when the status line is about to go out, and decides whether the body is
// buffered for Transform at all.
type BodyTransformer struct {
	Match     func(status int, h http.Header) bool
	Transform func(h http.Header, body []byte) []byte
}

// ResponseWriter wraps http.ResponseWriter to provide response interception.
// It tracks write status, runs hooks before the first write, and can hold
// back a body so registered transformers rewrite it before it is sent.
type ResponseWriter struct {
	http.ResponseWriter
	buf          *bytes.Buffer
	beforeWrite  []func()
	transformers []BodyTransformer
	active       []BodyTransformer
	limit        int64
	size         int64
	status       int
	mu           sync.Mutex
	written      bool
	finished     bool
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		limit:          DefaultBufferLimit,
	}
}

// OnBeforeWrite registers a hook to run before the first write.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// AddTransformer registers t. It has no effect once the header is written.
func (w *ResponseWriter) AddTransformer(t BodyTransformer) {
	if t.Match == nil || t.Transform == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		w.transformers = append(w.transformers, t)
	}
}

// SetBufferLimit sets the largest body that is buffered for transformation.
// Bodies that grow past it are streamed untouched.
func (w *ResponseWriter) SetBufferLimit(n int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n > 0 {
		w.limit = n
	}
}

// WriteHeader records the status code. When a transformer matches, the
// header is held back until Finish.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if w.startBuffering(code) {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) startBuffering(code int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	h := w.ResponseWriter.Header()
	if len(w.transformers) == 0 || h.Get("Content-Encoding") != "" {
		return false
	}
	if cl, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64); err == nil && cl > w.limit {
		return false
	}
	for _, t := range w.transformers {
		if t.Match(code, h) {
			w.active = append(w.active, t)
		}
	}
	if len(w.active) == 0 {
		return false
	}
	w.buf = new(bytes.Buffer)
	return true
}

// Write writes the data to the connection as part of an HTTP reply, or to
// the transformation buffer.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.Written() {
		w.WriteHeader(http.StatusOK)
	}

	w.mu.Lock()
	if w.buf != nil {
		if int64(w.buf.Len()+len(b)) <= w.limit {
			w.buf.Write(b)
			w.mu.Unlock()
			return len(b), nil
		}
		// Too large: give up on the transform and stream what we have.
		pending := w.buf.Bytes()
		w.buf, w.active = nil, nil
		w.mu.Unlock()

		w.ResponseWriter.WriteHeader(w.status)
		if _, err := w.write(pending); err != nil {
			return 0, err
		}
		return w.write(b)
	}
	w.mu.Unlock()

	return w.write(b)
}

func (w *ResponseWriter) write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Finish runs the transformers over a buffered body and sends it. It is a
// no-op when nothing was buffered, and safe to call more than once.
func (w *ResponseWriter) Finish() error {
	w.mu.Lock()
	if w.finished || w.buf == nil {
		w.finished = true
		w.mu.Unlock()
		return nil
	}
	w.finished = true
	body := w.buf.Bytes()
	active := w.active
	w.buf, w.active = nil, nil
	w.mu.Unlock()

	h := w.ResponseWriter.Header()
	original := len(body)
	changed := false
	for _, t := range active {
		out := t.Transform(h, body)
		if !bytes.Equal(out, body) {
			changed = true
		}
		body = out
	}

	if changed {
		h.Del("ETag")
		h.Set("Content-Length", strconv.Itoa(len(body)))
	} else if original > 0 && h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(original))
	}

	w.ResponseWriter.WriteHeader(w.status)
	_, err := w.write(body)
	return err
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of bytes sent to the client so far.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written returns true if the response has been written.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Buffering reports whether the body is currently held for transformation.
func (w *ResponseWriter) Buffering() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf != nil
}

// Flush implements http.Flusher. While buffering it does nothing; the body
// goes out in Finish.
func (w *ResponseWriter) Flush() {
	if w.Buffering() {
		return
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
