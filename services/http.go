package services

import (
	"io"
	"net/http"
)

// maxResponseBytes caps how much of a provider response is read; the payloads
// used here are small JSON documents.
const maxResponseBytes = 4 << 20

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
