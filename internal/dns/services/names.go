package services

import "strings"

// candidateNames returns every raw name the provider may use for a target.
//
// Vultr represents the same logical record inconsistently depending on how
// it was created: the root record may come back as "", "@", the bare domain,
// or the domain with a trailing dot; a subdomain may come back as the bare
// label, the fully-qualified name, or the label with a trailing dot. Lookups
// must accept all of them: matching only one convention either misses
// updates or creates duplicates. This is provider behaviour, not something
// to normalise away.
func candidateNames(domainName, subdomain string) []string {
	if subdomain != "" {
		return []string{subdomain, subdomain + "." + domainName, subdomain + "."}
	}
	return []string{"", "@", domainName, domainName + "."}
}

// displayName returns the name used in logs and results for a target:
// "@" for the root record, otherwise the subdomain label.
func displayName(subdomain string) string {
	if subdomain == "" {
		return "@"
	}
	return subdomain
}

// normalizeDomain lowercases and strips any trailing dot from a domain name.
func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(d), "."))
}

// normalizeSubdomain strips the root domain suffix from a subdomain if the
// config holds a fully-qualified name (e.g. "blog.example.com" when the
// domain is "example.com"), and lowercases the result.
func normalizeSubdomain(sub, domainName string) string {
	sub = strings.ToLower(strings.TrimRight(strings.TrimSpace(sub), "."))

	suffix := "." + domainName
	if strings.HasSuffix(sub, suffix) {
		sub = sub[:len(sub)-len(suffix)]
	}
	if sub == domainName || sub == "@" {
		sub = ""
	}
	return sub
}
