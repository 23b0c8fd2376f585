package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/services"
)

// ChooseMenuRequest selects the menu of the draft.
type ChooseMenuRequest struct {
	MenuID uint `json:"menu_id" binding:"required,gt=0"`
}

// AdjustQuantityRequest moves a candidate's quantity by one.
type AdjustQuantityRequest struct {
	Direction services.Direction `json:"direction" binding:"required,oneof=increase decrease"`
}

// BeginDraft handles POST /api/v1/chats/:chat_id/draft - opens a draft and
// lists the menus it can be placed against
func BeginDraft(c *gin.Context) {
	runTurn(c, "begin", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		d, err := conv.Begin(ctx)
		if err != nil {
			return nil, err
		}
		menus, err := conv.MenuOptions(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"draft": draftBody(d), "menus": menuOptions(menus)}, nil
	})
}

// ChooseMenu handles POST /api/v1/chats/:chat_id/draft/menu
func ChooseMenu(c *gin.Context) {
	var req ChooseMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "choose_menu", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		choice, err := conv.ChooseMenu(ctx, req.MenuID)
		if err != nil {
			return nil, err
		}
		return gin.H{"draft": draftBody(choice.Draft), "positions": choice.Page}, nil
	})
}

// NextPositions handles POST /api/v1/chats/:chat_id/draft/positions/next
func NextPositions(c *gin.Context) {
	runTurn(c, "next_positions", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		page, err := conv.ContinuePositions(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"positions": page}, nil
	})
}

// RestartPositions handles POST /api/v1/chats/:chat_id/draft/positions/restart
func RestartPositions(c *gin.Context) {
	runTurn(c, "restart_positions", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		page, err := conv.RestartPositions(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"positions": page}, nil
	})
}

// AdjustQuantity handles POST /api/v1/chats/:chat_id/draft/positions/:position_id/quantity
func AdjustQuantity(c *gin.Context) {
	positionID, ok := uintParam(c, "position_id")
	if !ok {
		return
	}
	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runTurn(c, "adjust_quantity", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		line, err := conv.AdjustQuantity(ctx, positionID, req.Direction)
		if err != nil {
			return nil, err
		}
		return gin.H{"position": line}, nil
	})
}

// CommitPosition handles POST /api/v1/chats/:chat_id/draft/positions/:position_id/commit
func CommitPosition(c *gin.Context) {
	positionID, ok := uintParam(c, "position_id")
	if !ok {
		return
	}

	runTurn(c, "commit_position", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		line, err := conv.CommitItem(ctx, positionID)
		if err != nil {
			return nil, err
		}
		return gin.H{"position": line, "draft": draftBody(conv.Draft())}, nil
	})
}

// OrderStandardComplex handles POST /api/v1/chats/:chat_id/draft/complex
func OrderStandardComplex(c *gin.Context) {
	runTurn(c, "standard_complex", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		d, err := conv.OrderStandardComplex(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"draft": draftBody(d)}, nil
	})
}

// FinalizeDraft handles POST /api/v1/chats/:chat_id/draft/finalize
func FinalizeDraft(c *gin.Context) {
	runTurn(c, "finalize", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		d, err := conv.Finalize(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"draft": draftBody(d)}, nil
	})
}

// ConfirmDraft handles POST /api/v1/chats/:chat_id/draft/confirm
func ConfirmDraft(c *gin.Context) {
	runTurn(c, "confirm", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		review := conv.Draft()
		order, err := conv.Confirm(ctx)
		if err != nil {
			return nil, err
		}
		view := services.DraftView(review)
		view.OrderID = order.ID
		view.CreatedAt = order.CreatedAt
		return gin.H{"order": view}, nil
	})
}

// CancelDraft handles DELETE /api/v1/chats/:chat_id/draft
func CancelDraft(c *gin.Context) {
	runTurn(c, "cancel", func(ctx context.Context, conv *services.Conversation) (interface{}, error) {
		conv.Cancel(ctx)
		return gin.H{"cancelled": true}, nil
	})
}
