package notify

import "strings"

// RedactAddress masks a gateway address for logging, keeping the first
// character and the domain: "5551234567@vtext.com" -> "5***@vtext.com".
func RedactAddress(addr string) string {
	if addr == "" {
		return ""
	}

	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return "***"
	}
	if local == "" {
		return "***@" + domain
	}

	return local[:1] + "***@" + domain
}
