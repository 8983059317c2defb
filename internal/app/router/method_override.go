package router

import "net/http"

// MethodOverride lets plain HTML forms reach the PUT and DELETE routes by
// posting a `_method` value (form field or query parameter). The rewrite
// must happen before Gin's method-based routing, so it wraps the engine
// rather than running as a middleware.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.URL.Query().Get("_method")
			if override == "" {
				// ParseForm caches the body values, so handlers can still
				// read the remaining fields afterwards.
				if err := r.ParseForm(); err == nil {
					override = r.PostForm.Get("_method")
				}
			}
			switch override {
			case http.MethodPut, http.MethodDelete:
				r.Method = override
			}
		}
		next.ServeHTTP(w, r)
	})
}
