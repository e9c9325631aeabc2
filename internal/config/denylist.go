package config

// DefaultDenylistDomains returns the domains excluded from history out of
// the box: credential stores and sign-in pages, whose URLs tend to carry
// tokens. A domain also covers its subdomains.
func DefaultDenylistDomains() []string {
	return []string{
		// Password managers
		"1password.com",
		"bitwarden.com",
		"lastpass.com",
		"dashlane.com",

		// Sign-in and identity providers
		"accounts.google.com",
		"login.microsoftonline.com",
		"login.live.com",
		"appleid.apple.com",
		"auth0.com",
		"okta.com",
		"login.gov",
		"id.me",
	}
}
