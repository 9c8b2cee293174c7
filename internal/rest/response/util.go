package response

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// etagHash returns the sha256 of the JSON encoding of data.
func etagHash(data any) (string, error) {
	etag := sha256.New()

	err := json.NewEncoder(etag).Encode(data)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(etag.Sum(nil)), nil
}

// NotModified returns true if the If-None-Match header of the request matches
// the etag computed for data.
func NotModified(r *http.Request, data any) bool {
	match := r.Header.Get("If-None-Match")
	if match == "" {
		return false
	}

	etag, err := etagHash(data)
	if err != nil {
		return false
	}

	for candidate := range strings.SplitSeq(match, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == fmt.Sprintf("\"%s\"", etag) {
			return true
		}
	}

	return false
}
