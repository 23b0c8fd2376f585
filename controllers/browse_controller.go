package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/services"
)

// OpenBrowseRequest picks how the orders are browsed.
type OpenBrowseRequest struct {
	Mode services.CarouselMode `json:"mode" binding:"required,oneof=view delete"`
}

// OpenBrowse handles POST /api/v1/chats/:chat_id/orders/browse
func OpenBrowse(c *gin.Context) {
	var req OpenBrowseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "open_browse", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		carousel, err := conv.OpenCarousel(ctx, req.Mode)
		if err != nil {
			return nil, err
		}
		return carouselBody(carousel)
	})
}

// BrowseNext handles POST /api/v1/chats/:chat_id/orders/browse/next
func BrowseNext(c *gin.Context) {
	step(c, "browse_next", true)
}

// BrowsePrevious handles POST /api/v1/chats/:chat_id/orders/browse/prev
func BrowsePrevious(c *gin.Context) {
	step(c, "browse_prev", false)
}

func step(c *gin.Context, operation string, forward bool) {
	runTurn(c, operation, func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		carousel, err := conv.Step(ctx, forward)
		if err != nil {
			return nil, err
		}
		return carouselBody(carousel)
	})
}

// DeleteCurrentOrder handles DELETE /api/v1/chats/:chat_id/orders/browse/current
func DeleteCurrentOrder(c *gin.Context) {
	runTurn(c, "delete_order", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		deleted, carousel, err := conv.DeleteCurrentOrder(ctx)
		if err != nil {
			return nil, err
		}
		body := gin.H{"deleted": deleted, "carousel": nil}
		if carousel != nil {
			if body["carousel"], err = carouselBody(carousel); err != nil {
				return nil, err
			}
		}
		return body, nil
	})
}

// CloseBrowse handles DELETE /api/v1/chats/:chat_id/orders/browse
func CloseBrowse(c *gin.Context) {
	runTurn(c, "close_browse", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		conv.CloseCarousel(ctx)
		return gin.H{"closed": true}, nil
	})
}
