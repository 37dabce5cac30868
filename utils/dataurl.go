package utils

import "strings"

// ExtractBase64 returns the base64 payload of a Data-URL such as
// "data:image/png;base64,<payload>". Everything up to and including the
// first comma is dropped; later commas belong to the payload. A string
// without a comma is returned unchanged.
func ExtractBase64(imageData string) string {
	if _, payload, found := strings.Cut(imageData, ","); found {
		return payload
	}
	return imageData
}
