package tracking

import (
	"fmt"
	"net/url"
)

// BuildTrackingLink issues a tracking URL for the given recipient and
// destination. The payload is encoded into a token, percent-encoded, and
// embedded behind the /track redirect endpoint. Pure construction: field
// validation is the caller's responsibility.
func BuildTrackingLink(name, email, targetURL, baseURL string) (string, error) {
	token, err := Encode(Payload{
		Name:  name,
		Email: email,
		URL:   targetURL,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/track?data=%s", baseURL, url.QueryEscape(token)), nil
}
