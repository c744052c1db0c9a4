package innertube

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/famomatic/ytresolve/internal/cookies"
)

// SessionInfo carries the ytcfg fields used for request signing.
type SessionInfo struct {
	UserSessionID string
	LoggedIn      bool
}

// SignRequest builds SAPISIDHASH style auth headers from session cookies.
// It returns nil when the first-party/third-party pair is incomplete, which
// callers treat as an unauthenticated request.
func SignRequest(list []cookies.Cookie, session SessionInfo, now time.Time) http.Header {
	third, ok := cookies.Get(list, "__Secure-3PAPISID")
	if !ok {
		return nil
	}
	sapisid, ok := cookies.Get(list, "SAPISID")
	if !ok {
		sapisid = third
	}
	first, ok := cookies.Get(list, "__Secure-1PAPISID")
	if !ok {
		return nil
	}

	ts := now.Unix()
	authValues := []string{
		"SAPISIDHASH " + sidHash(ts, sapisid.Value, Origin, session.UserSessionID),
		"SAPISID1PHASH " + sidHash(ts, first.Value, Origin, session.UserSessionID),
		"SAPISID3PHASH " + sidHash(ts, third.Value, Origin, session.UserSessionID),
	}

	out := make(http.Header)
	out.Set("Authorization", strings.Join(authValues, " "))
	out.Set("X-Origin", Origin)
	if session.LoggedIn {
		out.Set("X-Youtube-Bootstrap-Logged-In", "true")
	}
	return out
}

func sidHash(ts int64, sid string, origin string, userSessionID string) string {
	stamp := strconv.FormatInt(ts, 10)
	payload := strings.Join([]string{userSessionID, stamp, sid, origin}, " ")
	sum := sha1.Sum([]byte(payload))
	return stamp + "_" + hex.EncodeToString(sum[:]) + "_u"
}
