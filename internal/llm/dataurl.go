package llm

import (
	"fmt"
	"strings"
)

// splitDataURL decomposes a "data:image/png;base64,..." URL into its media
// type and base64 payload. Anthropic and Gemini take images as inline data
// rather than URLs, so providers that need the raw parts use this.
func splitDataURL(url string) (mediaType, data string, err error) {
	if !strings.HasPrefix(url, "data:") {
		return "", "", fmt.Errorf("not a data URL")
	}
	rest := strings.TrimPrefix(url, "data:")
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("malformed data URL: missing payload")
	}
	mediaType = strings.TrimSuffix(meta, ";base64")
	if mediaType == meta {
		return "", "", fmt.Errorf("malformed data URL: not base64-encoded")
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return mediaType, data, nil
}
