package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const cartIDKey contextKey = "cart_id"

const (
	cartIDHeader = "X-Cart-ID"
	cartIDCookie = "cart_id"
	buyerHeader  = "X-Buyer-ID"
)

// CartIDMiddleware resolves the device cart id for the request: the
// X-Cart-ID header wins, then the cart_id cookie, and a fresh uuid is minted
// otherwise. The id is echoed back in both header and cookie so the device
// keeps the same cart across visits. Carts are keyed by this id, not by a
// signed-in identity.
func CartIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cartID := r.Header.Get(cartIDHeader)
		if cartID == "" {
			if c, err := r.Cookie(cartIDCookie); err == nil {
				cartID = c.Value
			}
		}
		if cartID == "" {
			cartID = uuid.NewString()
		}

		w.Header().Set(cartIDHeader, cartID)
		http.SetCookie(w, &http.Cookie{
			Name:     cartIDCookie,
			Value:    cartID,
			Path:     "/",
			HttpOnly: true,
		})

		ctx := context.WithValue(r.Context(), cartIDKey, cartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cartIDFromContext(ctx context.Context) string {
	if cartID, ok := ctx.Value(cartIDKey).(string); ok {
		return cartID
	}
	return ""
}
