package api

import (
	"github.com/go-chi/chi/v5"

	"MedStore/internal/constants"
)

// SetupRoutes настраивает все маршруты API.
func SetupRoutes(r *chi.Mux, h *Handlers) {
	// --- Публичные маршруты ---
	r.Group(func(r chi.Router) {
		r.Post("/api/register", h.Register)
		r.Post("/api/login", h.UserLogin)
		r.Post("/api/admin/login", h.AdminLogin)

		r.Get("/api/products", h.ListProducts)
		r.Get("/api/products/new-arrivals", h.NewArrivals)
		r.Get("/api/products/search/{query}", h.SearchProducts)
		r.Get("/api/products/{id}", h.ShowProduct)
		r.Get("/api/products/{id}/qr", h.ProductQR)

		r.Get("/api/categories", h.ListCategories)
		r.Get("/api/categories/{id}", h.ShowCategory)

		r.Get("/api/services", h.ListServices)
		r.Get("/api/services/{id}", h.ShowService)

		r.Get("/api/testimonials", h.ListTestimonials)

		r.Post("/api/contact", h.ContactMessage)
		r.Post("/api/inquiries", h.CreateInquiry)
	})

	// Отдача сохраненных медиафайлов (изображения товаров, аватары).
	r.Get("/storage/*", h.ServeMediaHandler)

	// --- Маршруты с аутентификацией ---
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/api/user", h.GetUserProfile)
		r.Post("/api/logout", h.Logout)

		// Чат: отправка доступна всем аутентифицированным, список бесед -
		// только администратору (проверка роли внутри обработчика).
		r.Post("/api/chat/send", h.SendChatMessage)
		r.Get("/api/conversations", h.GetConversations)
		r.Get("/api/chat/{id}", h.GetChatMessages)
		r.Put("/api/chat/{id}", h.UpdateChatMessage)
		r.Delete("/api/chat/{id}", h.DeleteChatMessage)

		// --- Административные маршруты ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Post("/services", h.CreateService)
			r.Put("/services/{id}", h.UpdateService)
			r.Delete("/services/{id}", h.DeleteService)

			r.Post("/testimonials", h.CreateTestimonial)
			r.Put("/testimonials/{id}", h.UpdateTestimonial)
			r.Delete("/testimonials/{id}", h.DeleteTestimonial)

			r.Get("/inquiries/export", h.ExportInquiries)
		})
	})
}
