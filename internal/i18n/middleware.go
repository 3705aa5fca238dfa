package i18n

import "net/http"

// Middleware picks a localizer from the request's Accept-Language header.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept := r.Header.Get("Accept-Language")
			if accept == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(accept))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
