// Package token implements the signed bearer token format used for stateless
// authentication: three Base64url segments (header, payload, signature) with
// an HMAC-SHA256 signature over the first two.
//
// The payload is a flat string-to-string claims object. Claims are serialized
// in lexicographic key order (encoding/json map marshalling) on both the
// build and verify paths, so signature re-derivation is byte-identical.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thskolan/casetrack/internal/errs"
)

// Base64url with padding, matching the token wire format.
var b64 = base64.URLEncoding

// header is the fixed first segment: {"typ":"JWT","alg":"HS256"}.
type header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// Codec builds and reads signed tokens. The zero value is not usable;
// construct with New.
type Codec struct {
	secret string
	now    func() time.Time
}

// New returns a codec signing and verifying with secret.
func New(secret string) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// NewWithClock returns a codec with an injected clock, for expiry tests.
func NewWithClock(secret string, now func() time.Time) *Codec {
	return &Codec{secret: secret, now: now}
}

// Build serializes claims into a signed token string.
// The claims map must include an "exp" claim holding unix seconds, otherwise
// the token could never be judged expired; Build rejects such maps.
func (c *Codec) Build(claims map[string]string) (string, error) {
	if c.secret == "" {
		return "", fmt.Errorf("%w: secret must have value", errs.ErrInvalidArgument)
	}
	if _, ok := claims["exp"]; !ok {
		return "", fmt.Errorf("%w: claims must include exp", errs.ErrInvalidArgument)
	}

	h64, p64, err := encodeSegments(claims)
	if err != nil {
		return "", err
	}
	return h64 + "." + p64 + "." + c.sign(h64+"."+p64), nil
}

// ReadClaims parses and validates a token, short-circuiting at the first
// failure: structure, then expiry, then signature. On success it returns the
// claims map embedded in the payload.
func (c *Codec) ReadClaims(tok string) (map[string]string, error) {
	claims, err := parse(tok)
	if err != nil {
		return nil, err
	}
	if err := c.checkExpiry(claims); err != nil {
		return nil, err
	}
	if err := c.checkSignature(tok, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// IsValid reports whether the token passes all checks, swallowing failures.
func (c *Codec) IsValid(tok string) bool {
	_, err := c.ReadClaims(tok)
	return err == nil
}

// parse enforces structural well-formedness: exactly three non-empty
// dot-separated segments, the first two Base64url-decoding to JSON objects,
// the payload a flat string-to-string object.
func parse(tok string) (map[string]string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
		}
	}

	hb, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
	}
	// json.Unmarshal accepts the literal null into a map, leaving it nil;
	// a nil map is not a JSON object and must fail the structural check.
	var hdr map[string]any
	if err := json.Unmarshal(hb, &hdr); err != nil || hdr == nil {
		return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
	}

	pb, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
	}
	var claims map[string]string
	if err := json.Unmarshal(pb, &claims); err != nil || claims == nil {
		return nil, fmt.Errorf("%w: corrupt jwt", errs.ErrMalformedToken)
	}
	return claims, nil
}

// checkExpiry reads the "exp" claim as unix seconds. A token is expired when
// now >= exp.
func (c *Codec) checkExpiry(claims map[string]string) error {
	exp, err := strconv.ParseInt(claims["exp"], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: broken authorization credentials", errs.ErrMalformedToken)
	}
	if c.now().Unix() >= exp {
		return fmt.Errorf("%w: jwt expired", errs.ErrNotAuthorized)
	}
	return nil
}

// checkSignature re-derives the token from the decoded claims with the
// current secret and compares signature segments with exact string equality.
func (c *Codec) checkSignature(tok string, claims map[string]string) error {
	rebuilt, err := c.Build(claims)
	if err != nil {
		return fmt.Errorf("%w: cannot recreate jwt signature", errs.ErrEncoding)
	}
	got := tok[strings.LastIndexByte(tok, '.')+1:]
	want := rebuilt[strings.LastIndexByte(rebuilt, '.')+1:]
	if got != want {
		return fmt.Errorf("%w: bad jwt signature", errs.ErrNotAuthorized)
	}
	return nil
}

func encodeSegments(claims map[string]string) (string, string, error) {
	hb, err := json.Marshal(header{Typ: "JWT", Alg: "HS256"})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	pb, err := json.Marshal(claims)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return b64.EncodeToString(hb), b64.EncodeToString(pb), nil
}

func (c *Codec) sign(signingInput string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(signingInput))
	return b64.EncodeToString(mac.Sum(nil))
}
