// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the constructed handlers for route registration
type Handlers struct {
	Product     *handlers.ProductHandler
	Cart        *handlers.CartHandler
	Checkout    *handlers.CheckoutHandler
	Webhook     *handlers.WebhookHandler
	Order       *handlers.OrderHandler
	UserProfile *handlers.UserProfileHandler
	UserAddress *handlers.UserAddressHandler
	UserAdmin   *handlers.UserAdminHandler
	Coupon      *handlers.CouponHandler
	Returns     *handlers.ReturnsHandler
	Wishlist    *handlers.WishlistHandler
	Stats       *handlers.StatsHandler
	Updates     *handlers.UpdatesHandler
}

// Setup registers all API routes. Admin routes sit behind AuthMiddleware for
// identity only; the role check runs inside each elevated operation.
func Setup(rg *gin.RouterGroup, cfg *config.Config, userService *user.Service, h *Handlers) {
	authRequired := middleware.AuthMiddleware(cfg, userService)
	authOptional := middleware.OptionalAuthMiddleware(cfg, userService)

	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
	}

	// Webhooks are authenticated by payload signature, not by user identity
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/payment", h.Webhook.HandlePaymentEvent)
	}

	// Record invalidation stream for cache-refreshing clients
	rg.GET("/updates", authRequired, h.Updates.StreamUpdates)

	// Cart: reads answer empty for anonymous callers, writes need identity
	cart := rg.Group("/cart")
	{
		cart.GET("", authOptional, h.Cart.GetCart)

		protected := cart.Group("")
		protected.Use(authRequired)
		{
			protected.POST("/items", h.Cart.AddItem)
			protected.PUT("/items/:id", h.Cart.UpdateItem)
			protected.DELETE("/items/:id", h.Cart.RemoveItem)
			protected.DELETE("", h.Cart.ClearCart)
			protected.POST("/coupon", h.Cart.ApplyCoupon)
			protected.DELETE("/coupon", h.Cart.RemoveCoupon)
		}
	}

	// Checkout
	checkout := rg.Group("/checkout")
	checkout.Use(authRequired)
	{
		checkout.POST("/session", h.Checkout.CreateSession)
		checkout.POST("/shipping-rate", h.Checkout.QuoteShipping)
		checkout.POST("/tax", h.Checkout.QuoteTax)
	}

	// Coupons
	coupons := rg.Group("/coupons")
	coupons.Use(authRequired)
	{
		coupons.POST("/validate", h.Coupon.ValidateCoupon)
	}

	// Orders
	orders := rg.Group("/orders")
	{
		orders.GET("", authOptional, h.Order.ListOrders)

		protected := orders.Group("")
		protected.Use(authRequired)
		{
			protected.GET("/:id", h.Order.GetOrder)
			protected.POST("/:id/items/:itemId/download", h.Order.RecordDownload)
		}
	}

	// Returns
	returns := rg.Group("/returns")
	{
		returns.GET("", authOptional, h.Returns.ListReturns)
		returns.POST("", authRequired, h.Returns.CreateReturn)
	}

	// Wishlist
	wishlist := rg.Group("/wishlist")
	{
		wishlist.GET("", authOptional, h.Wishlist.GetWishlist)

		protected := wishlist.Group("")
		protected.Use(authRequired)
		{
			protected.POST("/items", h.Wishlist.AddItem)
			protected.DELETE("/items/:productId", h.Wishlist.RemoveItem)
		}
	}

	// Profile and address book
	users := rg.Group("/users")
	{
		users.GET("/me", authOptional, h.UserProfile.GetProfile)

		protected := users.Group("")
		protected.Use(authRequired)
		{
			protected.PUT("/me", h.UserProfile.UpdateProfile)
			protected.GET("/addresses", h.UserAddress.ListAddresses)
			protected.POST("/addresses", h.UserAddress.CreateAddress)
			protected.PUT("/addresses/:id", h.UserAddress.UpdateAddress)
			protected.PUT("/addresses/:id/default", h.UserAddress.SetDefaultAddress)
			protected.DELETE("/addresses/:id", h.UserAddress.DeleteAddress)
		}
	}

	// Admin surface
	admin := rg.Group("/admin")
	admin.Use(authRequired)
	{
		admin.GET("/users", h.UserAdmin.ListUsers)
		admin.GET("/users/:id", h.UserAdmin.GetUser)
		admin.PUT("/users/:id/role", h.UserAdmin.UpdateRole)
		admin.PUT("/users/:id/tags", h.UserAdmin.UpdateTags)
		admin.PUT("/users/:id/notes", h.UserAdmin.UpdateNotes)
		admin.DELETE("/users/:id", h.UserAdmin.DeleteUser)

		admin.GET("/orders", h.Order.AdminListOrders)
		admin.PUT("/orders/:id/status", h.Order.UpdateOrderStatus)
		admin.PUT("/orders/:id/items/:itemId/gift-code", h.Order.AssignGiftCardCode)

		admin.GET("/coupons", h.Coupon.ListCoupons)
		admin.POST("/coupons", h.Coupon.CreateCoupon)
		admin.PUT("/coupons/:id", h.Coupon.UpdateCoupon)
		admin.DELETE("/coupons/:id", h.Coupon.DeleteCoupon)

		admin.GET("/returns", h.Returns.AdminListReturns)
		admin.PUT("/returns/:id/approve", h.Returns.ApproveReturn)
		admin.PUT("/returns/:id/reject", h.Returns.RejectReturn)
		admin.PUT("/returns/:id/refund", h.Returns.RefundReturn)

		admin.GET("/stats/orders", h.Stats.GetOrderStats)
		admin.GET("/stats/users", h.Stats.GetUserStats)
		admin.POST("/ledger/backfill", h.Stats.BackfillLedger)
	}
}
