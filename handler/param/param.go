// Package param binds query strings and json bodies onto request structs and
// validates them with govalidator tags.
package param

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"stablevault/pkg/number"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/twitchtv/twirp"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)

	govalidator.TagMap["amount"] = govalidator.Validator(func(str string) bool {
		d, err := decimal.NewFromString(str)
		return err == nil && d.IsPositive()
	})

	govalidator.TagMap["bytes32"] = govalidator.Validator(func(str string) bool {
		_, err := Bytes32(str)
		return err == nil
	})
}

// Binding decodes the query string (GET) or json body into v, then validates it
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet || r.ContentLength == 0 {
		if err := r.ParseForm(); err != nil {
			return twirp.InvalidArgumentError("query", err.Error())
		}

		if err := decoder.Decode(v, r.Form); err != nil {
			return twirp.InvalidArgumentError("query", err.Error())
		}
	} else if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return twirp.InvalidArgumentError("body", err.Error())
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return twirp.InvalidArgumentError("params", err.Error())
	}

	return nil
}

// Int64 query value, def when absent or malformed
func Int64(r *http.Request, key string, def int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}

	return n
}

// URL chi path parameter
func URL(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Wad parses a decimal amount into 18 decimal fixed point
func Wad(field, s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, twirp.InvalidArgumentError(field, "malformed decimal")
	}

	v, err := number.ToWad(d)
	if err != nil {
		return nil, twirp.InvalidArgumentError(field, err.Error())
	}

	return v, nil
}

// Bytes32 parses a 0x prefixed or bare 64 digit hex string
func Bytes32(s string) ([32]byte, error) {
	var out [32]byte

	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != len(out) {
		return out, twirp.InvalidArgumentError("bytes32", "want 32 hex encoded bytes")
	}

	copy(out[:], b)
	return out, nil
}
