package utils

const (
	OrganizationName                      = "Poof"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)
