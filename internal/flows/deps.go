package flows

// Account is the flow-local projection of a directory user record: just enough
// to decide issuance and refresh eligibility without importing the root package.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	Roles        []string
}

// Actor identifies the already-authenticated caller of a privileged flow,
// built from verified access claims. Authorization checks read only this.
type Actor struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the actor carries the given role name.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Deps groups flow dependency sets. The root engine builds this once at Build
// time and delegates request methods to the matching flow implementation.
type Deps struct {
	Login        LoginDeps
	Logout       LogoutDeps
	Refresh      RefreshDeps
	Revoke       RevokeDeps
	Authenticate AuthenticateDeps
}
