package middleware

import "net/http"

// StatusRecorder remembers the status and body size written through it.
// Flush and Hijack reach the underlying writer via http.ResponseController.
type StatusRecorder struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}

	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *StatusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)

	return n, err
}

func (w *StatusRecorder) Status() int { return w.status }

func (w *StatusRecorder) Size() int64 { return w.size }

func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
