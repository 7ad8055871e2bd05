// Package gateway signs and verifies payment gateway callback payloads.
//
// The signature is hex(HMAC-SHA256(secret, canonical)) where canonical is every
// field except "signature", sorted by name and rendered as query-escaped
// name=value pairs joined with "&".
package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const SignatureField = "signature"

var (
	ErrMissingSignature = errors.New("payload has no signature")
	ErrBadSignature     = errors.New("signature mismatch")
)

// Fields is a flat callback payload with every value rendered as text.
type Fields map[string]string

// ParseFields decodes a flat JSON object. Nested objects and arrays are rejected.
func ParseFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid payload: not an object")
	}

	fields := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		case nil:
			fields[k] = ""
		default:
			return nil, fmt.Errorf("invalid payload: field %q is not a scalar", k)
		}
	}
	return fields, nil
}

// Canonical renders the signed form of the fields. Names and values are
// query-escaped, so a value containing "&" or "=" cannot forge another field.
func (f Fields) Canonical() string {
	v := make(url.Values, len(f))
	for k, val := range f {
		if k == SignatureField {
			continue
		}
		v.Set(k, val)
	}
	return v.Encode()
}

func Sign(secret []byte, f Fields) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(f.Canonical()))
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(secret []byte, f Fields) error {
	got, ok := f[SignatureField]
	if !ok || got == "" {
		return ErrMissingSignature
	}
	sig, err := hex.DecodeString(got)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(f.Canonical()))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}
