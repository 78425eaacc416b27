package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/kharcha/internal/auth"
	"github.com/mmynk/kharcha/internal/middleware"
	"github.com/mmynk/kharcha/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted. Everything
// except registration, login and /metrics requires a Bearer token.
func NewRouter(store storage.Store, jwtManager *auth.JWTManager) chi.Router {
	h := NewHandler(store, auth.NewPasswordAuthenticator(store), jwtManager)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogging)
	r.Use(middleware.Metrics)

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtManager))

		r.Get("/auth/me", h.CurrentUser)

		// People directory, preferences, consent.
		r.Get("/people", h.ListPeople)
		r.Post("/people", h.CreatePerson)
		r.Get("/people/{id}", h.GetPerson)
		r.Delete("/people/{id}", h.DeletePerson)
		r.Post("/people/{id}/preference", h.SetPreference)
		r.Post("/people/{id}/restore", h.RestorePerson)
		r.Post("/people/{id}/settle", h.SettlePerson)

		// Expenses.
		r.Get("/expenses", h.ListExpenses)
		r.Post("/expenses", h.CreateExpense)
		r.Get("/expenses/{id}", h.GetExpense)
		r.Put("/expenses/{id}", h.UpdateExpense)
		r.Delete("/expenses/{id}", h.DeleteExpense)
		r.Post("/expenses/{id}/apply", h.ApplyExpense)

		// Incomes.
		r.Get("/incomes", h.ListIncomes)
		r.Post("/incomes", h.CreateIncome)
		r.Get("/incomes/{id}", h.GetIncome)
		r.Put("/incomes/{id}", h.UpdateIncome)
		r.Delete("/incomes/{id}", h.DeleteIncome)
		r.Post("/incomes/{id}/apply", h.ApplyIncome)
	})

	return r
}
