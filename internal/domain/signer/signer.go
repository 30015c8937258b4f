// Package signer issues time-boxed, tamper-evident credentials for direct
// client uploads to the media transformation service. The signing secret
// stays inside this package's inputs and is never part of its outputs.
package signer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vidcrunch/vidcrunch/internal/utils/coerce"
)

// DefaultQuality is applied when the caller does not supply a usable
// quality value.
const DefaultQuality = 65

var resolutionPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Credentials identifies the media service account used for signing.
type Credentials struct {
	CloudName string
	APIKey    string
	APISecret string
}

// SignedUpload authorizes exactly one direct upload with the signed
// transformation parameters. Field names match the browser client's wire
// contract.
type SignedUpload struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Eager     string `json:"eager"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
}

// Service produces signed upload credentials.
type Service struct {
	creds Credentials
	now   func() time.Time
}

func NewService(creds Credentials) *Service {
	return &Service{creds: creds, now: time.Now}
}

// Transformation builds the eager transformation descriptor. Quality is
// clamped into [1,100]; a width/height/scale clause is appended only when
// resolution parses as WIDTHxHEIGHT with both components numeric. Any other
// resolution value, including the "original" sentinel, is treated as "no
// resize applied" without raising an error.
func Transformation(quality int, resolution string) string {
	eager := fmt.Sprintf("q_%d", coerce.Clamp(quality, 1, 100))

	resolution = strings.TrimSpace(resolution)
	if resolution == "" || resolution == "original" {
		return eager
	}
	m := resolutionPattern.FindStringSubmatch(resolution)
	if m == nil {
		return eager
	}
	// c_scale resizes proportionally without cropping.
	return fmt.Sprintf("%s,w_%s,h_%s,c_scale", eager, m[1], m[2])
}

// Sign canonicalizes params by sorting names lexicographically, joining
// name=value pairs with '&', and returns the hex SHA-1 digest of the
// canonical string concatenated with the secret.
func Sign(params map[string]string, secret string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	canonical := strings.Join(pairs, "&")

	sum := sha1.Sum([]byte(canonical + secret))
	return hex.EncodeToString(sum[:])
}

// SignUpload returns a signed authorization for one upload with the given
// transformation parameters. Identical inputs at the same timestamp always
// yield the identical signature; the signature covers exactly the eager
// descriptor, the synchronous-transform flag and the timestamp, so any
// client-side tampering invalidates it downstream.
func (s *Service) SignUpload(quality int, resolution string) SignedUpload {
	eager := Transformation(quality, resolution)
	timestamp := s.now().Unix()

	signature := Sign(map[string]string{
		"eager":       eager,
		"eager_async": "false",
		"timestamp":   strconv.FormatInt(timestamp, 10),
	}, s.creds.APISecret)

	return SignedUpload{
		Signature: signature,
		Timestamp: timestamp,
		Eager:     eager,
		APIKey:    s.creds.APIKey,
		CloudName: s.creds.CloudName,
	}
}
