package auth

import "github.com/baechuer/expense-tracker/internal/domain"

// domainCode returns a stable code for audit fields.
func domainCode(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := domain.As(err); ok {
		return de.Code
	}
	return "non_domain_error"
}
