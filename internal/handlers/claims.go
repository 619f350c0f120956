package handlers

import (
	"net/http"
	"time"

	"gymdesk/backend/internal/firebase"
	"gymdesk/backend/internal/httpjson"
	"gymdesk/backend/internal/middleware"

	"google.golang.org/api/iterator"
)

// Claims syncs Firebase custom claims from the users collection.
type Claims struct {
	clients *firebase.Clients
}

func NewClaims(clients *firebase.Clients) *Claims {
	return &Claims{clients: clients}
}

// MigrateAllUserClaims is an admin-only bulk claim sync.
func (h *Claims) MigrateAllUserClaims(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	if au == nil || !middleware.IsAdmin(au.Claims) {
		httpjson.Error(w, http.StatusForbidden, "admin role required")
		return
	}

	var req struct {
		Limit int `json:"limit,omitempty"`
	}
	_ = httpjson.Read(r, &req)
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	ctx := r.Context()
	it := h.clients.Firestore.Collection("users").Limit(limit).Documents(ctx)
	updated := 0
	errors := 0

	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			errors++
			break
		}
		data := snap.Data()
		role, _ := data["role"].(string)
		if role == "" {
			continue
		}
		c := map[string]interface{}{
			"role":            role,
			"roles":           map[string]bool{role: true},
			"claimsUpdatedAt": time.Now().Unix(),
		}
		if err := h.clients.Auth.SetCustomUserClaims(ctx, snap.Ref.ID, c); err != nil {
			errors++
			continue
		}
		updated++
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{"updated": updated, "errors": errors})
}

// SyncUserClaims syncs the current user's claims from their users/{uid} doc.
func (h *Claims) SyncUserClaims(w http.ResponseWriter, r *http.Request) {
	au, ok := middleware.GetAuthUser(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	snap, err := h.clients.Firestore.Collection("users").Doc(au.UID).Get(r.Context())
	if err != nil || !snap.Exists() {
		httpjson.Error(w, http.StatusNotFound, "user profile not found")
		return
	}

	data := snap.Data()
	role, _ := data["role"].(string)
	if role == "" {
		role = "member"
	}

	c := map[string]interface{}{
		"role":            role,
		"roles":           map[string]bool{role: true},
		"claimsUpdatedAt": time.Now().Unix(),
	}

	if err := h.clients.Auth.SetCustomUserClaims(r.Context(), au.UID, c); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "failed to set claims")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"ok": true, "role": role})
}
