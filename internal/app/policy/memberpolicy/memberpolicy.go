// Package memberpolicy provides authorization policies for the member directory.
//
// Authorization rules:
//   - Admins can view and edit every member record, limited to AdminEditable fields
//   - Members can view the directory and edit only their own record, limited to SelfEditable fields
//   - Visitors can do neither
package memberpolicy

import (
	"sort"

	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanViewDirectory reports whether the actor may list and read member records.
func CanViewDirectory(a authz.Actor) bool {
	return !a.ID.IsZero() && (a.Role == "admin" || a.Role == "member")
}

// CanUpdateMember reports whether the actor may edit the record targetID.
func CanUpdateMember(a authz.Actor, targetID primitive.ObjectID) bool {
	if a.ID.IsZero() {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return a.Role == "member" && a.ID == targetID
}

// FilterUpdates keeps only the fields the actor may write and returns the
// names of the dropped ones in sorted order.
func FilterUpdates(a authz.Actor, fields map[string]string) (map[string]string, []string) {
	allowed := authz.EditableFields(a)
	kept := make(map[string]string, len(fields))
	var dropped []string
	for k, v := range fields {
		if allowed.Allows(k) {
			kept[k] = v
			continue
		}
		dropped = append(dropped, k)
	}
	sort.Strings(dropped)
	return kept, dropped
}
