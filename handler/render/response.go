package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Response internal error msg as hint
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type wrapResponse struct {
	status int
	header http.Header
	buf    *bytes.Buffer
}

func (w *wrapResponse) Header() http.Header {
	return w.header
}

func (w *wrapResponse) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *wrapResponse) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *wrapResponse) isJsonContent() bool {
	typ := w.header.Get("Content-Type")
	return strings.HasPrefix(typ, "application/json")
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Hint string `json:"hint,omitempty"`
}

// WrapResponse wraps successful json bodies in {"data": ...}. Internal error
// messages are replaced unless hint or RESPONSE_ERROR_MESSAGE_AS_HINT is set.
func WrapResponse(hint bool) func(http.Handler) http.Handler {
	hint = hint || ResponseErrorMessageAsHint

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			wrap := &wrapResponse{
				status: http.StatusOK,
				header: http.Header{},
				buf:    &bytes.Buffer{},
			}

			next.ServeHTTP(wrap, r)

			for k, v := range wrap.header {
				w.Header()[k] = v
			}

			body := wrap.buf.Bytes()
			if wrap.isJsonContent() {
				body = wrapBody(wrap.status, body, hint)
			}

			w.WriteHeader(wrap.status)
			if _, err := w.Write(body); err != nil {
				logrus.WithError(err).Debugln("render: write response")
			}
		}

		return http.HandlerFunc(fn)
	}
}

func wrapBody(status int, body []byte, hint bool) []byte {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		b, _ := json.Marshal(dataResponse{Data: bytes.TrimSpace(body)})
		return append(b, '\n')
	}

	if status < http.StatusInternalServerError || hint {
		return body
	}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return body
	}

	resp.Msg = http.StatusText(status)
	resp.Hint = ""

	b, _ := json.Marshal(resp)
	return append(b, '\n')
}
