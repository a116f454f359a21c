// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// ActorFrom returns the Actor for the signed-in user. A missing session or
// an id that is not an ObjectID yields ok=false.
func ActorFrom(r *http.Request) (Actor, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: strings.ToLower(user.Role)}, true
}
