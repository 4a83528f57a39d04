package session

import "strings"

// Decision is the outcome of a 401 from an upstream call
type Decision struct {
	// ClearCredentials drops the session's tokens and profile
	ClearCredentials bool
	// RedirectTo is where the UI should navigate, empty for no redirect
	RedirectTo string
}

// UnauthorizedPolicy decides what a 401 means for the session. A 401 from the
// authentication namespace ends the session. A 401 from a microservice called
// directly is a permission problem and keeps it. Any other 401 ends it.
type UnauthorizedPolicy struct {
	directHosts []string
	loginPath   string
}

// NewUnauthorizedPolicy creates the policy
func NewUnauthorizedPolicy(directHosts []string, loginPath string) UnauthorizedPolicy {
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	hosts := make([]string, 0, len(directHosts))
	for _, h := range directHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return UnauthorizedPolicy{directHosts: hosts, loginPath: loginPath}
}

// Decide returns the decision for a 401 on requestURL
func (p UnauthorizedPolicy) Decide(requestURL string) Decision {
	u := strings.ToLower(requestURL)
	if strings.Contains(u, "/auth/") {
		return Decision{ClearCredentials: true, RedirectTo: p.loginPath}
	}
	for _, host := range p.directHosts {
		if strings.Contains(u, host) {
			return Decision{}
		}
	}
	return Decision{ClearCredentials: true, RedirectTo: p.loginPath}
}
