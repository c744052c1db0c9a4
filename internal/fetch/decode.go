package fetch

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodedBody reads through a decoder. Closing it closes the decoder and
// then the response body.
type decodedBody struct {
	io.Reader
	decoder io.Closer
	body    io.Closer
}

func (d *decodedBody) Close() error {
	var errs []error
	if d.decoder != nil {
		errs = append(errs, d.decoder.Close())
	}
	errs = append(errs, d.body.Close())
	return errors.Join(errs...)
}

// decodeBody undoes Content-Encoding. The transport only decompresses on its
// own when it chose Accept-Encoding, and callers set that header explicitly.
// The returned reader owns resp.Body; on error the caller still closes it.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return &decodedBody{Reader: resp.Body, body: resp.Body}, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &decodedBody{Reader: gz, decoder: gz, body: resp.Body}, nil
	case "br":
		return &decodedBody{Reader: brotli.NewReader(resp.Body), body: resp.Body}, nil
	case "deflate":
		// Servers disagree on zlib framing; sniff the header byte.
		br := bufio.NewReader(resp.Body)
		head, err := br.Peek(1)
		if err != nil {
			return &decodedBody{Reader: br, body: resp.Body}, nil
		}
		if head[0]&0x0f == 0x08 {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("failed to create zlib reader: %w", err)
			}
			return &decodedBody{Reader: zr, decoder: zr, body: resp.Body}, nil
		}
		fr := flate.NewReader(br)
		return &decodedBody{Reader: fr, decoder: fr, body: resp.Body}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}
