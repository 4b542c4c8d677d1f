package useragent

import "strings"

type marker struct {
	token string
	name  string
}

// Order matters: Edge and Chrome both claim Safari, Edge also claims Chrome.
var browsers = []marker{
	{"Edg/", "Edge"},
	{"Firefox/", "Firefox"},
	{"Chrome/", "Chrome"},
	{"Safari/", "Safari"},
}

var systems = []marker{
	{"Windows NT 10.0", "Windows 10/11"},
	{"Windows", "Windows"},
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Mac OS X", "macOS"},
	{"Linux", "Linux"},
}

// Describe summarizes a User-Agent header as "<browser> <major> on <os>".
func Describe(ua string) string {
	if ua == "" {
		return "Unknown Device"
	}

	browser, version := "Unknown Browser", ""
	for _, b := range browsers {
		if idx := strings.Index(ua, b.token); idx != -1 {
			browser = b.name
			version = majorVersion(ua[idx+len(b.token):])
			break
		}
	}

	os := "Unknown OS"
	for _, s := range systems {
		if strings.Contains(ua, s.token) {
			os = s.name
			break
		}
	}

	if version != "" {
		return browser + " " + version + " on " + os
	}
	return browser + " on " + os
}

func majorVersion(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
