// Package common defines shared constants and sentinel errors used across
// the client and server layers of Gokulsweets Cost Analytics. Callers should
// use errors.Is / errors.As to match these values.
package common

// Collection names recognized by the record store. Every record belongs to
// exactly one collection within the shared workspace.
const (
	CollectionIngredients = "ingredients"
	CollectionRecipes     = "recipes"
	CollectionStaff       = "staff"
	CollectionSettings    = "org_settings"
	CollectionAudit       = "audit_log"
)

// DefaultWorkspace is the single shared organization every record and
// subscription is scoped to.
const DefaultWorkspace = "gokulsweets"

// AccessTokenHeaderName is the HTTP header carrying the access token.
const AccessTokenHeaderName = "Authorization"

// NameBearing reports whether records of the given collection carry a
// user-visible name subject to the case-insensitive uniqueness rule.
func NameBearing(collection string) bool {
	switch collection {
	case CollectionIngredients, CollectionRecipes, CollectionStaff:
		return true
	}
	return false
}

// DisplayName is the user-facing label for a collection, used in toasts.
func DisplayName(collection string) string {
	switch collection {
	case CollectionIngredients:
		return "Ingredients"
	case CollectionRecipes:
		return "Recipes"
	case CollectionStaff:
		return "Staff"
	case CollectionSettings:
		return "Settings"
	case CollectionAudit:
		return "Audit log"
	}
	return collection
}
