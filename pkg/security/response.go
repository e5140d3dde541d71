package security

import "net/http"

// Response is the engine's answer for a single request. Shields return nil to
// pass the request through to the next handler; a non-nil Response terminates
// processing and is written verbatim.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// NewResponse builds a Response with the given body, status code, and headers.
// A nil header map is replaced with an empty one.
func NewResponse(body string, statusCode int, header http.Header) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
	}
}

// NewRedirect builds a 302 redirect to the given target.
func NewRedirect(target string) *Response {
	header := http.Header{}
	header.Set("Location", target)
	return &Response{
		StatusCode: http.StatusFound,
		Header:     header,
		Body:       "",
	}
}

// Write renders the response onto a standard ResponseWriter.
func (r *Response) Write(w http.ResponseWriter) {
	for key, values := range r.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(r.StatusCode)
	if r.Body != "" {
		_, _ = w.Write([]byte(r.Body))
	}
}
