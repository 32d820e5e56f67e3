package utils

import "strings"

var mobileMarkers = []string{
	"Mobile",
	"Android",
	"Silk/",
	"Kindle",
	"BlackBerry",
	"Opera Mini",
	"Opera Mobi",
}

// IsMobileUserAgent reports whether a user agent belongs to a phone or tablet.
func IsMobileUserAgent(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	for _, marker := range mobileMarkers {
		if strings.Contains(userAgent, marker) {
			return true
		}
	}
	return false
}
