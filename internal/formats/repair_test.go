package formats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/famomatic/ytresolve/internal/playerjs"
)

type stubDecrypter struct {
	nErr   error
	sigErr error
	nCalls int
}

func (d *stubDecrypter) DecryptN(_ context.Context, _ *playerjs.Bundle, v string) (string, error) {
	d.nCalls++
	if d.nErr != nil {
		return "", d.nErr
	}
	return "N" + v, nil
}

func (d *stubDecrypter) DecryptSignature(_ context.Context, _ *playerjs.Bundle, v string) (string, error) {
	if d.sigErr != nil {
		return "", d.sigErr
	}
	return strings.ToUpper(v), nil
}

func decodeStreamingData(t *testing.T, raw string) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return data
}

const streamingFixture = `{
	"expiresInSeconds": "21540",
	"formats": [
		{"itag": 18, "url": "https://rr1.example/videoplayback?expire=1&n=abc", "mimeType": "video/mp4"}
	],
	"adaptiveFormats": [
		{"itag": 251, "isDrc": true, "signatureCipher": "s=xyz&sp=sig&url=https%3A%2F%2Frr1.example%2Fvideoplayback%3Fexpire%3D1%26n%3Dabc"},
		{"itag": 140, "signatureCipher": "s=qq&url=https%3A%2F%2Frr1.example%2Fvideoplayback%3Fexpire%3D2"},
		{"itag": 141}
	]
}`

func entryURL(t *testing.T, entry any) url.Values {
	t.Helper()
	m := entry.(map[string]any)
	raw, _ := m["url"].(string)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u.Query()
}

func TestRepairRewritesEveryFormat(t *testing.T) {
	data := decodeStreamingData(t, streamingFixture)
	dec := &stubDecrypter{}
	report, ok := NewRepairer(nil).Repair(context.Background(), data, playerjs.NewBundle("p", ""), dec)
	if !ok {
		t.Fatalf("Repair() ok = false")
	}
	if report.Repaired != 3 || report.Skipped != 1 || report.Failed != 0 {
		t.Fatalf("Repair() report = %+v", report)
	}

	plain := entryURL(t, data["formats"].([]any)[0])
	if plain.Get("n") != "Nabc" || plain.Get("expire") != "1" {
		t.Fatalf("plain url query = %v", plain)
	}

	adaptive := data["adaptiveFormats"].([]any)
	ciphered := adaptive[0].(map[string]any)
	if _, ok := ciphered["signatureCipher"]; ok {
		t.Fatalf("signatureCipher still present: %v", ciphered)
	}
	q := entryURL(t, ciphered)
	if q.Get("sig") != "XYZ" || q.Get("n") != "Nabc" {
		t.Fatalf("ciphered url query = %v", q)
	}
	if !strings.HasPrefix(ciphered["url"].(string), "https://rr1.example/videoplayback?") {
		t.Fatalf("ciphered url = %q", ciphered["url"])
	}
	if q := entryURL(t, adaptive[1]); q.Get("sig") != "QQ" {
		t.Fatalf("default signature parameter query = %v", q)
	}
	if _, ok := adaptive[2].(map[string]any)["url"]; ok {
		t.Fatalf("entry without url gained one")
	}
	if _, ok := data["expiresInSeconds"]; !ok {
		t.Fatalf("unrelated fields must be preserved")
	}
}

func TestRepairMissingListFails(t *testing.T) {
	data := decodeStreamingData(t, `{"formats":[{"itag":18,"url":"https://x/v?a=1"}]}`)
	report, ok := NewRepairer(nil).Repair(context.Background(), data, playerjs.NewBundle("p", ""), &stubDecrypter{})
	if ok {
		t.Fatalf("Repair() ok = true, want false without adaptiveFormats")
	}
	if report.Repaired != 1 {
		t.Fatalf("Repair() report = %+v", report)
	}
	if _, ok := NewRepairer(nil).Repair(context.Background(), nil, nil, &stubDecrypter{}); ok {
		t.Fatalf("Repair(nil) ok = true")
	}
}

func TestRepairAbortsWhenTransformMissing(t *testing.T) {
	data := decodeStreamingData(t, streamingFixture)
	missing := fmt.Errorf("%w: %w", playerjs.ErrDecryptionFailed, &playerjs.RuleError{Rule: playerjs.RuleNTransform, Reason: "function not found"})
	dec := &stubDecrypter{nErr: missing}
	_, ok := NewRepairer(nil).Repair(context.Background(), data, playerjs.NewBundle("p", ""), dec)
	if ok {
		t.Fatalf("Repair() ok = true, want false")
	}
	if dec.nCalls != 2 {
		t.Fatalf("DecryptN calls = %d, want one per list", dec.nCalls)
	}
}

func TestRepairKeepsValueWhenDecryptionFails(t *testing.T) {
	data := decodeStreamingData(t, streamingFixture)
	dec := &stubDecrypter{nErr: playerjs.ErrDecryptionFailed, sigErr: errors.New("boom")}
	report, ok := NewRepairer(nil).Repair(context.Background(), data, playerjs.NewBundle("p", ""), dec)
	if !ok {
		t.Fatalf("Repair() ok = false, want true")
	}
	if report.Failed != 3 {
		t.Fatalf("Repair() report = %+v", report)
	}
	q := entryURL(t, data["formats"].([]any)[0])
	if q.Get("n") != "abc" {
		t.Fatalf("n = %q, want unchanged", q.Get("n"))
	}
	if _, ok := data["adaptiveFormats"].([]any)[0].(map[string]any)["signatureCipher"]; !ok {
		t.Fatalf("signatureCipher removed although decryption failed")
	}
}

func TestRepairWithoutBundleFailsOnEncryptedValues(t *testing.T) {
	data := decodeStreamingData(t, streamingFixture)
	if _, ok := NewRepairer(nil).Repair(context.Background(), data, nil, &stubDecrypter{}); ok {
		t.Fatalf("Repair() ok = true, want false without a player script")
	}
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		entry map[string]any
		want  string
	}{
		{entry: map[string]any{"itag": float64(140)}, want: "140"},
		{entry: map[string]any{"itag": float64(251), "isDrc": true}, want: "251-DRC"},
	}
	for _, tt := range tests {
		if got := formatID(tt.entry); got != tt.want {
			t.Fatalf("formatID(%v) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}
