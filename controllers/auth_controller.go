package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/services"
)

// StartAuthorizationRequest carries the phone number shared by the chat.
type StartAuthorizationRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// PlaceRequest selects a delivery place.
type PlaceRequest struct {
	PlaceID uint `json:"place_id" binding:"required,gt=0"`
}

// StartAuthorization handles POST /api/v1/chats/:chat_id/auth
func StartAuthorization(c *gin.Context) {
	var req StartAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "start_authorization", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		return conv.StartAuthorization(ctx, req.PhoneNumber)
	})
}

// ListCanteens handles GET /api/v1/chats/:chat_id/auth/canteens
func ListCanteens(c *gin.Context) {
	runTurn(c, "canteens", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		canteens, err := conv.Canteens(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"canteens": canteenViews(canteens)}, nil
	})
}

// ListDeliveryPlaces handles GET /api/v1/chats/:chat_id/auth/places
func ListDeliveryPlaces(c *gin.Context) {
	var query struct {
		CanteenID uint `form:"canteen_id" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "delivery_places", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		places, err := conv.DeliveryPlaces(ctx, query.CanteenID)
		if err != nil {
			return nil, err
		}
		return gin.H{"places": placeViews(places)}, nil
	})
}

// CompleteAuthorization handles POST /api/v1/chats/:chat_id/auth/place
func CompleteAuthorization(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "complete_authorization", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		place, err := conv.CompleteAuthorization(ctx, req.PlaceID)
		if err != nil {
			return nil, err
		}
		return gin.H{"place": newPlaceView(*place)}, nil
	})
}

// ChangeDeliveryPlace handles PUT /api/v1/chats/:chat_id/place
func ChangeDeliveryPlace(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "change_place", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		place, err := conv.ChangeDeliveryPlace(ctx, req.PlaceID)
		if err != nil {
			return nil, err
		}
		return gin.H{"place": newPlaceView(*place)}, nil
	})
}
