// Package user contains the profile document transforms applied at login.
package user

import (
	"encoding/json"
	"errors"
)

// ErrMalformedProfile is returned when the backend's profile document cannot
// be parsed. Login treats it as an authentication failure (fail closed).
var ErrMalformedProfile = errors.New("malformed profile document")

// ExtractProfile pulls the nested "user" field out of a profile document
// returned by the backend, e.g. {"user": {"role": "admin"}} yields
// {"role": "admin"}. A document without a "user" field yields nil with no
// error: the account exists but carries no profile.
func ExtractProfile(body []byte) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var doc struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, ErrMalformedProfile
	}
	if len(doc.User) == 0 || string(doc.User) == "null" {
		return nil, nil
	}
	return doc.User, nil
}
