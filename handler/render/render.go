package render

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stablevault/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		logrus.Errorln(err)
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.Errorln(err)
	}
}

// Error write error, protocol errors keep their numeric code and name
func Error(w http.ResponseWriter, err error) {
	twerr := codes.From(err)
	status := twirp.ServerHTTPStatusFromErrorCode(twerr.Code())

	code, convErr := strconv.Atoi(twerr.Meta(codes.CustomCodeKey))
	if convErr != nil {
		code = codes.Get(twerr.Code())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	if err := enc.Encode(errorResponse{Code: code, Msg: twerr.Msg(), Hint: twerr.Meta(codes.HintKey)}); err != nil {
		logrus.Errorln(err)
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.InvalidArgumentError("request", err.Error()))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()))
}
