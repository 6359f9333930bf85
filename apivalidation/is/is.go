// Package is provides string format rules backed by govalidator.
package is

import (
	"strings"

	"github.com/asaskevich/govalidator"

	v "github.com/Gobd/vinylstock/apivalidation"
)

var (
	// URL accepts absolute http and https URLs.
	URL = v.NewStringRule(isHTTPURL, "must be a valid http or https URL")

	// Host accepts an IP address or DNS name.
	Host = v.NewStringRule(govalidator.IsHost, "must be a valid host name or IP address")

	// Alphanumeric accepts ASCII letters and digits only.
	Alphanumeric = v.NewStringRule(govalidator.IsAlphanumeric, "must contain English letters and digits only")
)

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return govalidator.IsRequestURL(s) && govalidator.IsURL(s)
}
