package membership

import (
	"regexp"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidateApplication checks the required application fields in form order
// and the email format. The returned error is a validation *apperr.Error.
func ValidateApplication(p models.Profile) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", p.Name},
		{"profession", p.Profession},
		{"companyName", p.CompanyName},
		{"nationality", p.Nationality},
		{"membershipType", p.MembershipType},
		{"mobile", p.Mobile},
		{"email", p.Email},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required fields: " + strings.Join(missing, ", "))
	}
	if !ValidEmail(strings.TrimSpace(p.Email)) {
		return apperr.Validation("Invalid email format")
	}
	return nil
}
