package certid

// domainNames maps program track codes to their display names.
// The set is closed: codes outside it are not valid in issued identifiers.
var domainNames = map[string]string{
	"AD":   "App Development",
	"AI":   "Artificial Intelligence",
	"BC":   "Blockchain",
	"CC":   "Cloud Computing",
	"CS":   "Cyber Security",
	"DA":   "Data Analytics",
	"DM":   "Digital Marketing",
	"DS":   "Data Science",
	"EP":   "Embedded Programming",
	"FS":   "Full Stack Development",
	"GD":   "Graphic Design",
	"ML":   "Machine Learning",
	"PY":   "Python Programming",
	"UD":   "UI/UX Design",
	"WD":   "Web Development",
	"IOT":  "Internet of Things",
	"DEVO": "DevOps",
}

// DomainName returns the display name for a domain code, or the code itself when unmapped.
func DomainName(code string) string {
	if name, ok := domainNames[code]; ok {
		return name
	}
	return code
}

// IsKnownDomain reports whether code belongs to the fixed domain set.
func IsKnownDomain(code string) bool {
	_, ok := domainNames[code]
	return ok
}

// DomainCodes returns the known domain codes in no particular order.
func DomainCodes() []string {
	codes := make([]string, 0, len(domainNames))
	for code := range domainNames {
		codes = append(codes, code)
	}
	return codes
}
