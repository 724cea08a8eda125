package logging

// ErrorKind collapses an upstream outcome into a short label for log
// fields and metric dimensions.
func ErrorKind(status int, hasErr bool) string {
	if hasErr && status == 0 {
		return "network_error"
	}
	switch {
	case status == 429:
		return "upstream_429"
	case status >= 500 && status < 600:
		return "upstream_5xx"
	case status == 401 || status == 403:
		return "upstream_auth"
	case status >= 400 && status < 500:
		return "upstream_4xx"
	case hasErr:
		return "error"
	default:
		return "ok"
	}
}
