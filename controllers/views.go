package controllers

import (
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/kendall-kelly/canteen-orders/services"
)

type menuOption struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	MealType string    `json:"meal_type"`
	Date     time.Time `json:"date"`
	OrderEnd time.Time `json:"order_end"`
}

func menuOptions(menus []models.Menu) []menuOption {
	out := make([]menuOption, len(menus))
	for i, m := range menus {
		out[i] = menuOption{ID: m.ID, Name: m.Name, MealType: m.MealType, Date: m.Date, OrderEnd: m.OrderEnd}
	}
	return out
}

type canteenView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func canteenViews(canteens []models.Canteen) []canteenView {
	out := make([]canteenView, len(canteens))
	for i, c := range canteens {
		out[i] = canteenView{ID: c.ID, Name: c.Name}
	}
	return out
}

type placeView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CanteenID    uint   `json:"canteen_id"`
	FixedComplex bool   `json:"fixed_complex"`
}

func newPlaceView(p models.DeliveryPlace) placeView {
	return placeView{ID: p.ID, Name: p.Name, CanteenID: p.CanteenID, FixedComplex: p.FixedComplex}
}

func placeViews(places []models.DeliveryPlace) []placeView {
	out := make([]placeView, len(places))
	for i, p := range places {
		out[i] = newPlaceView(p)
	}
	return out
}

type draftResponse struct {
	Phase services.Phase     `json:"phase"`
	Order services.OrderView `json:"order"`
}

func draftBody(d *services.DraftOrder) draftResponse {
	return draftResponse{Phase: d.Phase, Order: services.DraftView(d)}
}

type carouselResponse struct {
	Mode     services.CarouselMode `json:"mode"`
	Position int                   `json:"position"`
	Total    int                   `json:"total"`
	Current  services.OrderView    `json:"current"`
	Controls services.Controls     `json:"controls"`
}

func carouselBody(c *services.Carousel) (*carouselResponse, error) {
	current, err := c.Current()
	if err != nil {
		return nil, err
	}
	return &carouselResponse{
		Mode:     c.Mode,
		Position: c.Cur + 1,
		Total:    c.Len(),
		Current:  current,
		Controls: c.Controls(),
	}, nil
}
