package internaldefs

import (
	goRevoke "github.com/MrEthical07/goRevoke"
)

// CounterDef defines a public type used by goRevoke APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goRevoke.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the revocation engine.
var CounterDefs = []CounterDef{
	{ID: goRevoke.MetricLoginSuccess, Name: "gorevoke_login_success_total", Help: "Successful login attempts."},
	{ID: goRevoke.MetricLoginFailure, Name: "gorevoke_login_failure_total", Help: "Failed login attempts."},
	{ID: goRevoke.MetricAuthAccept, Name: "gorevoke_auth_accept_total", Help: "Access tokens accepted by the guard."},
	{ID: goRevoke.MetricAuthReject, Name: "gorevoke_auth_reject_total", Help: "Access tokens rejected by the guard."},
	{ID: goRevoke.MetricRefreshSuccess, Name: "gorevoke_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goRevoke.MetricRefreshFailure, Name: "gorevoke_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: goRevoke.MetricRefreshRevokedReplay, Name: "gorevoke_refresh_revoked_replay_total", Help: "Refresh attempts with an already revoked token."},
	{ID: goRevoke.MetricLogout, Name: "gorevoke_logout_total", Help: "Logout operations."},
	{ID: goRevoke.MetricRevokeUser, Name: "gorevoke_revoke_user_total", Help: "Per-user cutoff raises."},
	{ID: goRevoke.MetricRevokeGlobal, Name: "gorevoke_revoke_global_total", Help: "Global cutoff raises."},
	{ID: goRevoke.MetricCleanupRemoved, Name: "gorevoke_cleanup_removed_total", Help: "Denylist entries removed by cleanup."},
	{ID: goRevoke.MetricForbidden, Name: "gorevoke_forbidden_total", Help: "Privileged operations rejected for missing roles."},
	{ID: goRevoke.MetricStoreFailure, Name: "gorevoke_store_failure_total", Help: "Revocation store failures observed by flows."},
}
