package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/middleware"
)

// RegisterRoutes mounts the API. operatorAuth validates back-office tokens
// in front of the admin routes.
func RegisterRoutes(router *gin.Engine, operatorAuth gin.HandlerFunc) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)
		v1.GET("/database/status", DatabaseStatus)
	}

	chats := v1.Group("/chats/:chat_id")
	{
		chats.POST("/auth", StartAuthorization)
		chats.GET("/auth/canteens", ListCanteens)
		chats.GET("/auth/places", ListDeliveryPlaces)
		chats.POST("/auth/place", CompleteAuthorization)
		chats.PUT("/place", ChangeDeliveryPlace)

		chats.POST("/draft", BeginDraft)
		chats.DELETE("/draft", CancelDraft)
		chats.POST("/draft/menu", ChooseMenu)
		chats.POST("/draft/positions/next", NextPositions)
		chats.POST("/draft/positions/restart", RestartPositions)
		chats.POST("/draft/positions/:position_id/quantity", AdjustQuantity)
		chats.POST("/draft/positions/:position_id/commit", CommitPosition)
		chats.POST("/draft/complex", OrderStandardComplex)
		chats.POST("/draft/finalize", FinalizeDraft)
		chats.POST("/draft/confirm", ConfirmDraft)

		chats.POST("/orders/browse", OpenBrowse)
		chats.DELETE("/orders/browse", CloseBrowse)
		chats.POST("/orders/browse/next", BrowseNext)
		chats.POST("/orders/browse/prev", BrowsePrevious)
		chats.DELETE("/orders/browse/current", DeleteCurrentOrder)
	}

	admin := v1.Group("/admin", operatorAuth, middleware.RequireScope(middleware.ScopeExportOrders))
	{
		admin.POST("/exports", ExportOrders)
	}
}
