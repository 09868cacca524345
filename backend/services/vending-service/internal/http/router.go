package httpserver

import "net/http"

// Routes groups the vending service handlers.
type Routes struct {
	Purchase    http.HandlerFunc
	History     http.HandlerFunc
	AttachMeter http.HandlerFunc
	MyMeters    http.HandlerFunc

	AdminUsers        http.HandlerFunc
	AdminMeters       http.HandlerFunc
	AdminTransactions http.HandlerFunc
	AdminTxPayment    http.HandlerFunc
	AdminBlockUser    http.HandlerFunc
	AdminDeleteUser   http.HandlerFunc
	AdminDeleteMeter  http.HandlerFunc
	AdminPurgeTx      http.HandlerFunc

	Events http.HandlerFunc
	Health http.HandlerFunc
}

// Middleware wraps groups of routes.
type Middleware struct {
	CORS  func(http.Handler) http.Handler
	Auth  func(http.Handler) http.Handler
	Admin func(http.Handler) http.Handler
}

// NewRouter registers service endpoints.
func NewRouter(routes Routes, mw Middleware) http.Handler {
	mux := http.NewServeMux()

	user := func(h http.HandlerFunc) http.Handler { return mw.Auth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return mw.Auth(mw.Admin(h)) }

	mux.Handle("/api/v1/transactions/purchase", method(http.MethodPost, user(routes.Purchase)))
	mux.Handle("/api/v1/transactions/history", method(http.MethodGet, user(routes.History)))
	mux.Handle("/api/v1/meters", userMeters(user(routes.AttachMeter), user(routes.MyMeters)))

	mux.Handle("/api/v1/admin/users", method(http.MethodGet, admin(routes.AdminUsers)))
	mux.Handle("/api/v1/admin/meters", method(http.MethodGet, admin(routes.AdminMeters)))
	mux.Handle("/api/v1/admin/transactions", method(http.MethodGet, admin(routes.AdminTransactions)))
	mux.Handle("/api/v1/admin/transactions/payment", method(http.MethodGet, admin(routes.AdminTxPayment)))
	mux.Handle("/api/v1/admin/users/block", method(http.MethodPost, admin(routes.AdminBlockUser)))
	mux.Handle("/api/v1/admin/users/delete", method(http.MethodPost, admin(routes.AdminDeleteUser)))
	mux.Handle("/api/v1/admin/meters/delete", method(http.MethodPost, admin(routes.AdminDeleteMeter)))
	mux.Handle("/api/v1/admin/transactions/purge", method(http.MethodPost, admin(routes.AdminPurgeTx)))

	mux.Handle("/ws/events", admin(routes.Events))
	mux.Handle("/health", method(http.MethodGet, routes.Health))

	return mw.CORS(mux)
}

// userMeters dispatches POST (attach) and GET (list) on the same path.
func userMeters(attach, list http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			attach.ServeHTTP(w, r)
		case http.MethodGet:
			list.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
