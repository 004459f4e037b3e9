package utils

import "github.com/microcosm-cc/bluemonday"

var (
	// bodyPolicy keeps user-generated markup for post bodies, plus the audio
	// element so embedded tracks survive sanitization.
	bodyPolicy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowElements("audio", "source")
		p.AllowAttrs("controls", "preload").OnElements("audio")
		p.AllowAttrs("src", "type").OnElements("source", "audio")
		return p
	}()

	textPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans rich content destined for post bodies.
func Sanitize(input string) string {
	return bodyPolicy.Sanitize(input)
}

// SanitizeText strips all markup; used for titles, comments, and profile
// fields that render as plain text.
func SanitizeText(input string) string {
	return textPolicy.Sanitize(input)
}
