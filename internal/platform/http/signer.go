package http

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	signAlgorithm = "HMAC-SHA256"
	signedHeaders = "authorization;x-api-key;x-timestamp"
)

// Signer adds the gateway's authentication headers to outgoing requests.
type Signer struct {
	appKey      string
	appSecret   string
	accessToken string

	now   func() time.Time
	reqID func() string
}

// NewSigner returns a Signer for one set of credentials.
func NewSigner(appKey, appSecret, accessToken string) *Signer {
	return &Signer{
		appKey:      appKey,
		appSecret:   appSecret,
		accessToken: accessToken,
		now:         time.Now,
		reqID:       uuid.NewString,
	}
}

// Sign sets X-Api-Key, Authorization, X-Timestamp, X-Request-Id and X-Api-Signature on req.
// body must be the exact bytes sent, or nil for requests without a body.
func (s *Signer) Sign(req *http.Request, body []byte) {
	ts := timestamp(s.now())

	req.Header.Set("X-Api-Key", s.appKey)
	req.Header.Set("Authorization", s.accessToken)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Request-Id", s.reqID())
	req.Header.Set("X-Api-Signature", fmt.Sprintf("%s SignedHeaders=%s, Signature=%s",
		signAlgorithm, signedHeaders, s.signature(req.Method, req.URL.Path, req.URL.RawQuery, ts, body)))
}

func (s *Signer) signature(method, path, query, ts string, body []byte) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('|')
	b.WriteString(path)
	b.WriteByte('|')
	b.WriteString(query)
	b.WriteByte('|')
	fmt.Fprintf(&b, "authorization:%s\nx-api-key:%s\nx-timestamp:%s\n", s.accessToken, s.appKey, ts)
	b.WriteByte('|')
	b.WriteString(signedHeaders)
	b.WriteByte('|')
	if len(body) > 0 {
		b.WriteString(sha1Hex(body))
	}

	toSign := signAlgorithm + "|" + sha1Hex([]byte(b.String()))
	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write([]byte(toSign))
	return hex.EncodeToString(mac.Sum(nil))
}

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// timestamp renders unix seconds with millisecond precision, e.g. "1692345600.123".
func timestamp(t time.Time) string {
	ms := t.UnixMilli()
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
