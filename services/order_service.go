package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
)

// DefaultPageSize is how many positions are disclosed per page.
const DefaultPageSize = 3

// OrderService drives order composition and order browsing for chats.
// It holds no per-chat state: every turn resumes a Conversation from the
// stored SessionState.
type OrderService struct {
	store       OrderStore
	permissions *PermissionService
	menus       *MenuService
	events      EventPublisher
	logger      *slog.Logger
	pageSize    int
	now         func() time.Time
}

// NewOrderService wires the engine to its collaborators.
func NewOrderService(store OrderStore, events EventPublisher, logger *slog.Logger, pageSize int) *OrderService {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		store:       store,
		permissions: NewPermissionService(store),
		menus:       NewMenuService(store),
		events:      events,
		logger:      logger,
		pageSize:    pageSize,
		now:         time.Now,
	}
}

// SetClock replaces the time source (used by tests)
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// Resume binds a stored session to the chat handle for one turn.
func (s *OrderService) Resume(handle int64, state *SessionState) *Conversation {
	if state == nil {
		state = &SessionState{}
	}
	return &Conversation{svc: s, handle: handle, state: state}
}

// Conversation is the engine for a single turn of one chat.
type Conversation struct {
	svc    *OrderService
	handle int64
	state  *SessionState
}

// State returns the session state to persist after the turn.
func (c *Conversation) State() *SessionState {
	return c.state
}

// Draft returns the active draft, if any.
func (c *Conversation) Draft() *DraftOrder {
	return c.state.Draft
}

// Carousel returns the active carousel, if any.
func (c *Conversation) Carousel() *Carousel {
	return c.state.Carousel
}

func (c *Conversation) identity() Identity {
	return Identity{Handle: &c.handle}
}

func (c *Conversation) publish(ctx context.Context, eventType string, customerID uint, view OrderView) {
	event := OrderEvent{
		Type:       eventType,
		Handle:     c.handle,
		CustomerID: customerID,
		OccurredAt: c.svc.now(),
		Order:      view,
	}
	if err := c.svc.events.Publish(ctx, event); err != nil {
		// the order change is already durable
		c.svc.logger.Warn("order event not delivered", "type", eventType, "order_id", view.OrderID, "error", err)
	}
}

// StartAuthorization looks the shared phone number up and keeps the
// pending binding in the session.
func (c *Conversation) StartAuthorization(ctx context.Context, phone string) (*AuthState, error) {
	auth, err := c.svc.permissions.StartAuthorization(ctx, phone, c.handle, c.svc.now())
	if err != nil {
		return nil, err
	}
	c.state.Auth = auth
	return auth, nil
}

// Canteens lists the canteens the chat may pick places from when the
// customer is permitted in more than one.
func (c *Conversation) Canteens(ctx context.Context) ([]models.Canteen, error) {
	canteens, err := c.allowedCanteens(ctx, c.svc.now())
	if err != nil {
		return nil, err
	}
	return c.svc.permissions.Canteens(ctx, canteens)
}

// DeliveryPlaces lists the places the chat can pick, either while
// authorizing or when an authorized customer wants to move.
func (c *Conversation) DeliveryPlaces(ctx context.Context, canteenID uint) ([]models.DeliveryPlace, error) {
	now := c.svc.now()
	canteens, err := c.allowedCanteens(ctx, now)
	if err != nil {
		return nil, err
	}
	return c.svc.permissions.DeliveryPlaces(ctx, canteens, canteenID, now)
}

func (c *Conversation) allowedCanteens(ctx context.Context, now time.Time) ([]uint, error) {
	if c.state.Auth != nil {
		return c.state.Auth.CanteenIDs, nil
	}
	_, canteens, err := c.svc.permissions.ResolveCustomer(ctx, c.identity(), now)
	return canteens, err
}

// CompleteAuthorization binds the chat and the chosen place to the customer.
func (c *Conversation) CompleteAuthorization(ctx context.Context, placeID uint) (*models.DeliveryPlace, error) {
	place, err := c.svc.permissions.CompleteAuthorization(ctx, c.state.Auth, placeID, c.svc.now())
	if err != nil {
		return nil, err
	}
	c.state.Auth = nil
	return place, nil
}

// ChangeDeliveryPlace moves the authorized customer to another place.
func (c *Conversation) ChangeDeliveryPlace(ctx context.Context, placeID uint) (*models.DeliveryPlace, error) {
	return c.svc.permissions.ChangeDeliveryPlace(ctx, c.handle, placeID, c.svc.now())
}

// Begin opens a new draft for the chat's customer at their delivery place.
func (c *Conversation) Begin(ctx context.Context) (*DraftOrder, error) {
	customer, canteens, err := c.svc.permissions.ResolveCustomer(ctx, c.identity(), c.svc.now())
	if err != nil {
		return nil, err
	}
	if customer.PlaceID == nil {
		return nil, ErrUnknownCustomer
	}
	place, err := c.svc.store.GetDeliveryPlace(ctx, *customer.PlaceID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrUnknownDeliveryPlace
	}
	if !slices.Contains(canteens, place.CanteenID) {
		return nil, ErrNoActivePermission
	}

	c.state.Carousel = nil
	c.state.Draft = newDraft(customer.ID, *place)
	return c.state.Draft, nil
}

func (c *Conversation) draft(phases ...Phase) (*DraftOrder, error) {
	d := c.state.Draft
	if d == nil {
		return nil, ErrInvalidState
	}
	if err := d.expect(phases...); err != nil {
		return nil, err
	}
	return d, nil
}

// discardOn drops the draft when err is one of the temporal failures the
// user can only recover from by starting over.
func (c *Conversation) discardOn(err error) error {
	if errors.Is(err, ErrNoValidMenus) || errors.Is(err, ErrStaleMenu) || errors.Is(err, ErrInvalidOrder) {
		c.state.Draft = nil
	}
	return err
}

// MenuOptions lists the menus the draft can be placed against.
func (c *Conversation) MenuOptions(ctx context.Context) ([]models.Menu, error) {
	d, err := c.draft(PhaseMenuSelection)
	if err != nil {
		return nil, err
	}
	menus, err := c.svc.menus.ValidMenus(ctx, d.CanteenID, d.CustomerID, c.svc.now())
	if err != nil {
		return nil, c.discardOn(err)
	}
	return menus, nil
}

// MenuChoice is the outcome of choosing a menu. Page holds the first
// disclosed candidates for freely composed menus.
type MenuChoice struct {
	Draft *DraftOrder
	Page  []LineDraft
}

// ChooseMenu picks the menu of the draft. Fixed complex places jump
// straight to review, other places start item selection.
func (c *Conversation) ChooseMenu(ctx context.Context, menuID uint) (*MenuChoice, error) {
	d, err := c.draft(PhaseMenuSelection)
	if err != nil {
		return nil, err
	}
	menu, err := c.svc.menus.CheckOrderable(ctx, menuID, d.CanteenID, d.CustomerID, c.svc.now())
	if err != nil {
		return nil, c.discardOn(err)
	}

	if d.FixedComplex {
		if err := d.commitFixed(menu.Positions); err != nil {
			return nil, err
		}
		d.setMenu(*menu)
		return &MenuChoice{Draft: d}, nil
	}

	d.setMenu(*menu)
	d.loadCandidates(menu.Positions, c.svc.pageSize)
	page, err := d.nextPage()
	if err != nil {
		return nil, err
	}
	return &MenuChoice{Draft: d, Page: page}, nil
}

// ContinuePositions discloses the next page of candidates.
func (c *Conversation) ContinuePositions(_ context.Context) ([]LineDraft, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return nil, err
	}
	return d.nextPage()
}

// RestartPositions rewinds the disclosure and shows the first page again.
// Quantities and committed lines are kept.
func (c *Conversation) RestartPositions(_ context.Context) ([]LineDraft, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return nil, err
	}
	d.Pager.Reset()
	return d.nextPage()
}

// OrderStandardComplex replaces a free composition with the menu's fixed
// complex positions.
func (c *Conversation) OrderStandardComplex(ctx context.Context) (*DraftOrder, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return nil, err
	}
	menu, err := c.svc.menus.CheckOrderable(ctx, d.MenuID, d.CanteenID, d.CustomerID, c.svc.now())
	if err != nil {
		return nil, c.discardOn(err)
	}
	if err := d.commitFixed(menu.Positions); err != nil {
		return nil, err
	}
	return d, nil
}

// AdjustQuantity bumps a candidate's quantity up or down.
func (c *Conversation) AdjustQuantity(_ context.Context, positionID uint, dir Direction) (LineDraft, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return LineDraft{}, err
	}
	return d.adjust(positionID, dir)
}

// CommitItem adds a candidate to the order at its current quantity.
func (c *Conversation) CommitItem(_ context.Context, positionID uint) (LineDraft, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return LineDraft{}, err
	}
	return d.commit(positionID)
}

// Finalize moves a draft with at least one committed line to review.
func (c *Conversation) Finalize(_ context.Context) (*DraftOrder, error) {
	d, err := c.draft(PhaseItemSelection)
	if err != nil {
		return nil, err
	}
	if err := d.finalize(); err != nil {
		return nil, err
	}
	return d, nil
}

// Confirm re-validates the reviewed draft and persists it. A draft that
// went stale is discarded with ErrInvalidOrder; storage failures leave it
// untouched so the turn can be retried.
func (c *Conversation) Confirm(ctx context.Context) (*models.Order, error) {
	d, err := c.draft(PhaseReviewPending)
	if err != nil {
		return nil, err
	}
	now := c.svc.now()

	if err := c.revalidate(ctx, d, now); err != nil {
		if _, ok := AsEngineError(err); ok {
			return nil, c.discardOn(wrapEngine(ErrInvalidOrder, err))
		}
		return nil, err
	}

	order := d.toOrder(now)
	if err := c.svc.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	view := DraftView(d)
	view.OrderID = order.ID
	view.CreatedAt = order.CreatedAt
	c.state.Draft = nil
	c.publish(ctx, EventOrderCreated, order.CustomerID, view)

	c.svc.logger.Info("order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"menu_id", order.MenuID,
		"amount", order.Amount.StringFixed(2),
	)
	return order, nil
}

func (c *Conversation) revalidate(ctx context.Context, d *DraftOrder, now time.Time) error {
	customer, err := c.svc.store.GetCustomer(ctx, d.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return ErrUnknownCustomer
	}
	canteens, err := c.svc.permissions.ValidCanteens(ctx, customer.ID, now)
	if err != nil {
		return err
	}
	if !slices.Contains(canteens, d.CanteenID) {
		return ErrNoActivePermission
	}
	_, err = c.svc.menus.CheckOrderable(ctx, d.MenuID, d.CanteenID, d.CustomerID, now)
	return err
}

// Cancel discards the draft from any step.
func (c *Conversation) Cancel(_ context.Context) {
	c.state.Draft = nil
}

// OpenCarousel loads the customer's open orders for browsing. In delete
// mode only orders that can still be cancelled are included.
func (c *Conversation) OpenCarousel(ctx context.Context, mode CarouselMode) (*Carousel, error) {
	if !mode.Valid() {
		return nil, ErrInvalidState
	}
	now := c.svc.now()
	customer, _, err := c.svc.permissions.ResolveCustomer(ctx, c.identity(), now)
	if err != nil {
		return nil, err
	}
	orders, err := c.svc.store.ListOrders(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		if mode == ModeDelete && !Deletable(o, now) {
			continue
		}
		views = append(views, NewOrderView(o))
	}

	c.state.Draft = nil
	c.state.Carousel = nil
	carousel, err := NewCarousel(mode, views)
	if err != nil {
		return nil, err
	}
	carousel.CustomerID = customer.ID
	c.state.Carousel = carousel
	return carousel, nil
}

func (c *Conversation) carousel() (*Carousel, error) {
	if c.state.Carousel == nil {
		return nil, ErrInvalidState
	}
	return c.state.Carousel, nil
}

// Step moves the carousel one order forward or back.
func (c *Conversation) Step(_ context.Context, forward bool) (*Carousel, error) {
	carousel, err := c.carousel()
	if err != nil {
		return nil, err
	}
	if forward {
		err = carousel.StepForward()
	} else {
		err = carousel.StepBackward()
	}
	if err != nil {
		return nil, err
	}
	return carousel, nil
}

// DeleteCurrentOrder deletes the order under the cursor from storage and
// then from the carousel. The returned carousel is nil once it ran empty.
func (c *Conversation) DeleteCurrentOrder(ctx context.Context) (OrderView, *Carousel, error) {
	carousel, err := c.carousel()
	if err != nil {
		return OrderView{}, nil, err
	}
	if carousel.Mode != ModeDelete {
		return OrderView{}, nil, ErrInvalidState
	}
	current, err := carousel.Current()
	if err != nil {
		return OrderView{}, nil, err
	}

	if err := c.svc.store.DeleteOrder(ctx, current.OrderID, c.svc.now()); err != nil {
		return OrderView{}, nil, err
	}
	if err := carousel.DeleteCurrent(); err != nil {
		return OrderView{}, nil, err
	}

	c.publish(ctx, EventOrderDeleted, carousel.CustomerID, current)
	c.svc.logger.Info("order deleted", "order_id", current.OrderID, "handle", c.handle)

	if carousel.Empty() {
		c.state.Carousel = nil
		return current, nil, nil
	}
	return current, carousel, nil
}

// CloseCarousel leaves the browsing branch.
func (c *Conversation) CloseCarousel(_ context.Context) {
	c.state.Carousel = nil
}
