package updates

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// Validate checks the structure of a candidate record. Checks run in order and
// stop at the first failure: version, platforms, then each platform entry in
// document order.
//
// Keys must be unique. The record is later decoded with encoding/json, which
// keeps the last of several equal keys and matches field names without regard
// to case, so a duplicate could otherwise replace a value checked here.
func Validate(candidate []byte) error {
	if !gjson.ValidBytes(candidate) {
		return &MalformedRequestError{}
	}

	doc := gjson.ParseBytes(candidate)
	if !doc.IsObject() {
		return &ValidationError{Message: ErrMissingFields}
	}

	key, found := duplicateKey(doc, foldKey)
	if found {
		return validationErrorf("duplicate key %s", key)
	}

	if !truthy(doc.Get("version")) || !truthy(doc.Get("platforms")) {
		return &ValidationError{Message: ErrMissingFields}
	}

	platforms := doc.Get("platforms")
	if !platforms.IsObject() {
		return &ValidationError{Message: "platforms must be an object"}
	}

	key, found = duplicateKey(platforms, func(key string) string { return key })
	if found {
		return validationErrorf("duplicate platform %s", key)
	}

	var err error

	platforms.ForEach(func(key gjson.Result, value gjson.Result) bool {
		if !value.IsObject() {
			err = validationErrorf("invalid platform data for %s", key.String())

			return false
		}

		field, found := duplicateKey(value, foldKey)
		if found {
			err = validationErrorf("duplicate key %s in platform %s", field, key.String())

			return false
		}

		if !value.Get("signature").Exists() || !value.Get("url").Exists() {
			err = validationErrorf("platform %s must have signature and url", key.String())

			return false
		}

		return true
	})

	return err
}

// duplicateKey returns the first key of object whose normalized form was
// already seen.
func duplicateKey(object gjson.Result, normalize func(string) string) (string, bool) {
	seen := map[string]bool{}

	var (
		duplicate string
		found     bool
	)

	object.ForEach(func(key gjson.Result, _ gjson.Result) bool {
		name := normalize(key.String())
		if seen[name] {
			duplicate = key.String()
			found = true

			return false
		}

		seen[name] = true

		return true
	})

	return duplicate, found
}

// foldKey returns the form under which encoding/json matches a key to a
// struct field.
func foldKey(key string) string {
	return strings.Map(func(r rune) rune {
		return unicode.ToUpper(unicode.ToLower(r))
	}, key)
}

// truthy follows the loose truthiness of the clients feeding this endpoint:
// empty strings, zero, false and null are all treated as missing.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	case gjson.Null, gjson.False:
		return false
	default:
		return false
	}
}
