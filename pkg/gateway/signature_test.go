package gateway

import (
	"errors"
	"testing"
)

var secret = []byte("whsec_test")

func TestCanonical(t *testing.T) {
	f := Fields{
		"status":     "success",
		"amount":     "110000",
		"request_id": "abc",
		"signature":  "ignored",
	}
	want := "amount=110000&request_id=abc&status=success"
	if got := f.Canonical(); got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalEscapesValues(t *testing.T) {
	smuggled := Fields{"amount": "1&status=success", "request_id": "abc"}
	split := Fields{"amount": "1", "status": "success", "request_id": "abc"}

	if smuggled.Canonical() == split.Canonical() {
		t.Fatalf("Canonical() collides: %q", smuggled.Canonical())
	}
	if want := "amount=1%26status%3Dsuccess&request_id=abc"; smuggled.Canonical() != want {
		t.Errorf("Canonical() = %q, want %q", smuggled.Canonical(), want)
	}

	split[SignatureField] = Sign(secret, split)
	smuggled[SignatureField] = split[SignatureField]
	if err := Verify(secret, smuggled); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify() error = %v, want ErrBadSignature", err)
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		check   func(Fields) bool
	}{
		{
			name:    "scalars",
			payload: `{"request_id":"abc","amount":110000,"live":true,"note":null}`,
			check: func(f Fields) bool {
				return f["amount"] == "110000" && f["live"] == "true" && f["note"] == ""
			},
		},
		{name: "nested", payload: `{"request_id":{"id":1}}`, wantErr: true},
		{name: "array", payload: `[1,2]`, wantErr: true},
		{name: "null", payload: `null`, wantErr: true},
		{name: "truncated", payload: `{"a":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFields([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFields() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(f) {
				t.Errorf("ParseFields() = %v", f)
			}
		})
	}
}

func TestSignVerify(t *testing.T) {
	f := Fields{"request_id": "abc", "status": "success", "amount": "110000"}
	f[SignatureField] = Sign(secret, f)

	if err := Verify(secret, f); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(Fields)
		wantErr error
	}{
		{name: "tamperedAmount", mutate: func(f Fields) { f["amount"] = "1" }, wantErr: ErrBadSignature},
		{name: "addedField", mutate: func(f Fields) { f["extra"] = "x" }, wantErr: ErrBadSignature},
		{name: "notHex", mutate: func(f Fields) { f[SignatureField] = "zz" }, wantErr: ErrBadSignature},
		{name: "missing", mutate: func(f Fields) { delete(f, SignatureField) }, wantErr: ErrMissingSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Fields{}
			for k, v := range f {
				c[k] = v
			}
			tt.mutate(c)
			if err := Verify(secret, c); !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := Verify([]byte("other"), f); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify() with other secret = %v", err)
	}
}
