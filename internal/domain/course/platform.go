package course

import (
	"fmt"
	"net/url"
	"strings"
)

type Platform string

const (
	Coursera         Platform = "Coursera"
	Udemy            Platform = "Udemy"
	Pluralsight      Platform = "Pluralsight"
	EdX              Platform = "edX"
	LinkedInLearning Platform = "LinkedIn Learning"
	Udacity          Platform = "Udacity"
	KhanAcademy      Platform = "Khan Academy"
	Other            Platform = "other"
)

// searchTemplates hold the search page of each known platform; %s is the
// escaped query.
var searchTemplates = map[Platform]string{
	Coursera:         "https://www.coursera.org/search?query=%s",
	Udemy:            "https://www.udemy.com/courses/search/?q=%s",
	Pluralsight:      "https://www.pluralsight.com/search?q=%s",
	EdX:              "https://www.edx.org/search?q=%s",
	LinkedInLearning: "https://www.linkedin.com/learning/search?keywords=%s",
	Udacity:          "https://www.udacity.com/courses/all?search=%s",
	KhanAcademy:      "https://www.khanacademy.org/search?page_search_query=%s",
}

const genericSearch = "https://www.google.com/search?q=%s+course+%s"

// ParsePlatform maps a free-form platform name onto the known set,
// ignoring case and surrounding space. Anything else is Other.
func ParsePlatform(name string) Platform {
	name = strings.TrimSpace(name)
	for p := range searchTemplates {
		if strings.EqualFold(string(p), name) {
			return p
		}
	}
	return Other
}

// escape encodes like encodeURIComponent for the characters that matter in a
// query value: spaces become %20 rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SearchURL builds a search link for a course title on the given platform.
// Unknown platforms get a generic web search that mentions the platform.
func SearchURL(platform, title string) string {
	q := escape(title)
	if tmpl, ok := searchTemplates[ParsePlatform(platform)]; ok {
		return fmt.Sprintf(tmpl, q)
	}
	return fmt.Sprintf(genericSearch, q, escape(platform))
}

// UsableURL reports whether raw is an absolute http(s) link.
func UsableURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ResolveURL keeps a usable direct link and otherwise synthesizes a search link.
func ResolveURL(direct, platform, title string) string {
	if UsableURL(direct) {
		return strings.TrimSpace(direct)
	}
	return SearchURL(platform, title)
}
