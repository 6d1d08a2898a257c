// Package turnrest mints coturn-compatible TURN REST credentials
// (draft-uberti-behave-turn-rest): the username is
// "<unix_expiry>:<session>" and the credential is
// base64(hmac_sha1(shared_secret, username)). The TURN server derives
// the same MAC from its copy of the secret, so no credential state is
// shared out of band.
package turnrest

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

type Generator struct {
	secret []byte
	ttl    time.Duration

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewGenerator(secret string, ttl time.Duration) (*Generator, error) {
	if secret == "" {
		return nil, errors.New("shared secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("credential ttl must be positive")
	}
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

type Credentials struct {
	Username   string
	Credential string
	ExpiresAt  time.Time
}

// Credentials derives a time-limited credential pair for one session.
func (g *Generator) Credentials(session string) (Credentials, error) {
	if session == "" {
		return Credentials{}, errors.New("session id is required")
	}
	expiry := g.now().UTC().Add(g.ttl)
	username := fmt.Sprintf("%d:%s", expiry.Unix(), session)

	mac := hmac.New(sha1.New, g.secret)
	mac.Write([]byte(username))

	return Credentials{
		Username:   username,
		Credential: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		ExpiresAt:  expiry,
	}, nil
}
