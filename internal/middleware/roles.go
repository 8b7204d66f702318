package middleware

import (
	"net/http"

	"github.com/gshelgaas/bankcards/internal/api/httpx"
	"github.com/gshelgaas/bankcards/internal/models"
)

// Operations gated by the role policy.
const (
	OpCardCreate       = "cards.create"
	OpCardBlock        = "cards.block"
	OpCardActivate     = "cards.activate"
	OpCardDelete       = "cards.delete"
	OpCardListAll      = "cards.list_all"
	OpCardApproveBlock = "cards.approve_block"
	OpUserManage       = "users.manage"
	OpCardOwn          = "cards.own"
	OpTransfer         = "transfers.execute"
)

// Allow is the authorization policy: role x operation -> allow.
// Kept as one function so the whole access model is reviewable in
// one place.
func Allow(role, operation string) bool {
	switch operation {
	case OpCardCreate, OpCardBlock, OpCardActivate, OpCardDelete,
		OpCardListAll, OpCardApproveBlock, OpUserManage:
		return role == models.RoleAdmin
	case OpCardOwn, OpTransfer:
		return role == models.RoleUser || role == models.RoleAdmin
	}
	return false
}

// Require rejects callers whose role the policy does not allow for
// the operation.
func Require(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
				return
			}
			if !Allow(id.Role, operation) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
