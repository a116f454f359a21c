// internal/app/system/authz/fields.go
package authz

import (
	"slices"
	"strings"
)

// FieldSet is a set of profile field names (as they appear in request
// bodies) that a role may write.
type FieldSet map[string]struct{}

func newFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// SocialNetworks are the link keys a profile stores under "social".
var SocialNetworks = []string{"linkedin", "instagram", "twitter", "facebook"}

// Allows reports whether field is in the set. A social link
// ("social.linkedin") is allowed when "social" is and the network is one
// of SocialNetworks.
func (s FieldSet) Allows(field string) bool {
	if network, ok := strings.CutPrefix(field, "social."); ok {
		if _, ok := s["social"]; !ok {
			return false
		}
		return slices.Contains(SocialNetworks, network)
	}
	_, ok := s[field]
	return ok
}

// SelfEditable is what a member may change on their own record.
var SelfEditable = newFieldSet(
	"companyBrief",
	"about",
	"logo",
	"social",
)

// AdminEditable is what an admin may change on any record. Identifiers,
// role, password and timestamps are never writable through profile edits.
var AdminEditable = newFieldSet(
	"name", "email", "companyName", "profession", "nationality", "membershipType", "mobile",
	"designation", "businessActivity", "sponsorName", "passportNumber", "civilId", "address",
	"officePhone", "residencePhone", "alternateMobile", "alternateEmail", "industrySector",
	"alternateIndustrySector", "companyAddress", "companyWebsite", "benefitFromOrg",
	"contributeToOrg", "proposer1", "proposer2", "membershipValidity",
	"photo", "logo", "companyBrief", "about", "social",
)

// EditableFields returns the field set for the actor's role.
func EditableFields(a Actor) FieldSet {
	if a.IsAdmin() {
		return AdminEditable
	}
	return SelfEditable
}
