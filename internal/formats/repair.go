// Package formats rewrites the streaming format URLs returned by the player
// API into directly fetchable URLs.
package formats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/famomatic/ytresolve/internal/playerjs"
)

// Decrypter is the transform surface the repairer needs.
type Decrypter interface {
	DecryptN(ctx context.Context, bundle *playerjs.Bundle, value string) (string, error)
	DecryptSignature(ctx context.Context, bundle *playerjs.Bundle, value string) (string, error)
}

// Lists are the streamingData keys holding format entries.
var Lists = []string{"formats", "adaptiveFormats"}

// Report counts what happened to the entries of one streamingData object.
type Report struct {
	Repaired int
	Skipped  int
	Failed   int
}

type Repairer struct {
	logger *slog.Logger
}

func NewRepairer(logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{logger: logger}
}

var errListAborted = errors.New("format list aborted")

// Repair rewrites every entry of formats and adaptiveFormats in place. It
// reports success only when both lists exist and were processed to the end.
func (r *Repairer) Repair(ctx context.Context, streamingData map[string]any, bundle *playerjs.Bundle, dec Decrypter) (Report, bool) {
	var report Report
	if streamingData == nil {
		return report, false
	}
	ok := true
	for _, key := range Lists {
		list, present := streamingData[key].([]any)
		if !present {
			r.logger.Warn("streaming data has no format list", "list", key)
			ok = false
			continue
		}
		if err := r.repairList(ctx, list, bundle, dec, &report); err != nil {
			r.logger.Warn("format list not repaired", "list", key, "error", err)
			ok = false
		}
	}
	if !ok {
		r.logger.Warn("no download urls found")
	}
	return report, ok
}

func (r *Repairer) repairList(ctx context.Context, list []any, bundle *playerjs.Bundle, dec Decrypter, report *Report) error {
	for _, item := range list {
		entry, isObject := item.(map[string]any)
		if !isObject {
			report.Skipped++
			continue
		}
		if err := r.repairEntry(ctx, entry, bundle, dec, report); err != nil {
			report.Failed++
			return err
		}
	}
	return nil
}

func (r *Repairer) repairEntry(ctx context.Context, entry map[string]any, bundle *playerjs.Bundle, dec Decrypter, report *Report) error {
	id := formatID(entry)

	cipherKey, cipher := entryCipher(entry)
	rawURL := stringField(entry, "url")
	if cipher != nil {
		rawURL = cipher.Get("url")
	}
	if rawURL == "" {
		if cipher == nil {
			r.logger.Warn("format url not found", "itag", id)
		}
		report.Skipped++
		return nil
	}

	base, rawQuery, _ := strings.Cut(rawURL, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		r.logger.Warn("format url query is malformed", "itag", id, "error", err)
	}

	failed := false
	if encrypted := query.Get("n"); encrypted != "" {
		if bundle == nil {
			return fmt.Errorf("%w: no player script for n parameter", errListAborted)
		}
		decrypted, err := dec.DecryptN(ctx, bundle, encrypted)
		switch {
		case errors.Is(err, playerjs.ErrRuleNotMatched):
			return fmt.Errorf("%w: %w", errListAborted, err)
		case err != nil:
			r.logger.Warn("n parameter not decrypted", "itag", id, "error", err)
			failed = true
		default:
			query.Set("n", decrypted)
			r.logger.Debug("n parameter decrypted", "itag", id, "from", encrypted, "to", decrypted)
		}
	}

	if cipher != nil {
		if bundle == nil {
			return fmt.Errorf("%w: no player script for cipher", errListAborted)
		}
		encrypted := cipher.Get("s")
		decrypted, err := dec.DecryptSignature(ctx, bundle, encrypted)
		switch {
		case errors.Is(err, playerjs.ErrRuleNotMatched):
			return fmt.Errorf("%w: %w", errListAborted, err)
		case err != nil:
			r.logger.Warn("cipher signature not decrypted", "itag", id, "error", err)
			failed = true
		default:
			param := cipher.Get("sp")
			if param == "" {
				param = "sig"
			}
			query.Set(param, decrypted)
			delete(entry, cipherKey)
			r.logger.Debug("cipher signature decrypted", "itag", id)
		}
	}

	entry["url"] = base + "?" + query.Encode()
	if failed {
		report.Failed++
	} else {
		report.Repaired++
	}
	return nil
}

func entryCipher(entry map[string]any) (string, url.Values) {
	for _, key := range []string{"signatureCipher", "cipher"} {
		raw := stringField(entry, key)
		if raw == "" {
			continue
		}
		values, err := url.ParseQuery(raw)
		if err != nil && len(values) == 0 {
			continue
		}
		return key, values
	}
	return "", nil
}

// formatID labels an entry by itag, suffixed for dynamic range compressed audio.
func formatID(entry map[string]any) string {
	id := fmt.Sprint(entry["itag"])
	if drc, _ := entry["isDrc"].(bool); drc {
		id += "-DRC"
	}
	return id
}

func stringField(entry map[string]any, key string) string {
	s, _ := entry[key].(string)
	return s
}
