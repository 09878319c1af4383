package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"jinstore-backend/models"
)

const (
	EventCreated = "order.created"
	EventStatus  = "order.status"
)

// Pricing holds shipping costs in cents.
type Pricing struct {
	Standard              int64
	Express               int64
	FreeShippingThreshold int64
}

func (p Pricing) Shipping(method models.ShippingMethod, itemsTotal int64) int64 {
	if method == models.ShippingExpress {
		return p.Express
	}
	if p.FreeShippingThreshold > 0 && itemsTotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.Standard
}

type Service struct {
	repo     OrderRepo
	products ProductReader
	carts    CartSource
	users    UserReader
	pricing  Pricing

	events  Publisher
	stock   StockInvalidator
	log     *slog.Logger
	now     func() time.Time
	lookups int
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }

func WithStockInvalidator(i StockInvalidator) Option { return func(s *Service) { s.stock = i } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(repo OrderRepo, products ProductReader, carts CartSource, users UserReader, pricing Pricing, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		carts:    carts,
		users:    users,
		pricing:  pricing,
		log:      slog.Default(),
		now:      time.Now,
		lookups:  8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=1000"`
}

type CheckoutRequest struct {
	Items          []LineRequest         `json:"items" binding:"omitempty,dive"`
	Address        *models.Address       `json:"address"`
	PaymentMethod  models.PaymentMethod  `json:"paymentMethod"`
	ShippingMethod models.ShippingMethod `json:"shippingMethod"`
}

type Page struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type Stats struct {
	ByStatus map[models.OrderStatus]int64 `json:"byStatus"`
	Total    int64                        `json:"total"`
	Revenue  int64                        `json:"revenue"`
}

func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.InvalidInput("malformed order id %q", id)
	}
	return oid, nil
}

// Checkout prices the requested lines (or the customer's cart when the
// request has none) against the catalog, stores a Pending order and clears
// the cart it came from. Stock is only checked here; it is taken when the
// shop accepts the order.
func (s *Service) Checkout(ctx context.Context, customerID primitive.ObjectID, req CheckoutRequest) (models.Order, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCOD
	}
	if req.ShippingMethod == "" {
		req.ShippingMethod = models.ShippingStandard
	}
	if !req.PaymentMethod.Valid() {
		return models.Order{}, models.InvalidInput("unknown payment method %q", req.PaymentMethod)
	}
	if !req.ShippingMethod.Valid() {
		return models.Order{}, models.InvalidInput("unknown shipping method %q", req.ShippingMethod)
	}

	user, err := s.users.Get(ctx, customerID)
	if err != nil {
		return models.Order{}, fmt.Errorf("load customer: %w", err)
	}

	address, ok := user.PrimaryAddress()
	if req.Address != nil {
		address, ok = *req.Address, true
	}
	if !ok {
		return models.Order{}, models.InvalidInput("a delivery address is required")
	}

	owner := models.UserOwner(customerID)
	fromCart := len(req.Items) == 0
	wanted, err := s.wantedLines(ctx, owner, req.Items)
	if err != nil {
		return models.Order{}, err
	}

	items, err := s.price(ctx, wanted)
	if err != nil {
		return models.Order{}, err
	}

	var itemsTotal int64
	for _, it := range items {
		itemsTotal += it.Subtotal
	}
	shipping := s.pricing.Shipping(req.ShippingMethod, itemsTotal)

	now := s.now().UTC()
	order := models.Order{
		OrderRef:        newOrderRef(now),
		CustomerID:      customerID,
		CustomerEmail:   user.Email,
		Items:           items,
		DeliveryAddress: address,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		ShippingCost:    shipping,
		ItemsTotal:      itemsTotal,
		TotalAmount:     itemsTotal + shipping,
		Status:          models.StatusPending,
		StatusHistory:   []models.StatusChange{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("store order: %w", err)
	}

	if fromCart {
		if _, err := s.carts.Clear(ctx, owner); err != nil {
			s.log.Warn("cart clear after checkout failed", slog.String("order_id", created.ID.Hex()), slog.Any("err", err))
		}
	}

	s.log.Info("order placed",
		slog.String("order_id", created.ID.Hex()),
		slog.String("order_ref", created.OrderRef),
		slog.Int64("total", created.TotalAmount),
	)
	s.publish(EventCreated, created)
	return created, nil
}

type wantedLine struct {
	productID primitive.ObjectID
	quantity  int
}

func (s *Service) wantedLines(ctx context.Context, owner models.Owner, reqItems []LineRequest) ([]wantedLine, error) {
	var lines []wantedLine
	if len(reqItems) == 0 {
		c, err := s.carts.Get(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, it := range c.Items {
			lines = append(lines, wantedLine{productID: it.ProductID, quantity: it.Quantity})
		}
	} else {
		for i, it := range reqItems {
			oid, err := primitive.ObjectIDFromHex(it.ProductID)
			if err != nil {
				return nil, models.InvalidInput("item %d: malformed product id", i)
			}
			lines = append(lines, wantedLine{productID: oid, quantity: it.Quantity})
		}
	}

	if len(lines) == 0 {
		return nil, models.InvalidInput("cart is empty")
	}

	// Same product twice becomes one line.
	merged := make([]wantedLine, 0, len(lines))
	index := map[primitive.ObjectID]int{}
	for i, l := range lines {
		if l.quantity < 1 || l.quantity > models.MaxLineQuantity {
			return nil, models.InvalidInput("item %d: quantity must be between 1 and %d", i, models.MaxLineQuantity)
		}
		if at, ok := index[l.productID]; ok {
			if l.quantity > models.MaxLineQuantity-merged[at].quantity {
				return nil, models.InvalidInput("item %d: at most %d of one product per order", i, models.MaxLineQuantity)
			}
			merged[at].quantity += l.quantity
			continue
		}
		index[l.productID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// price looks the products up concurrently and fails with a StockError
// naming every line that cannot be served.
func (s *Service) price(ctx context.Context, wanted []wantedLine) ([]models.OrderItem, error) {
	products := make([]models.Product, len(wanted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookups)
	for i := range wanted {
		i := i
		g.Go(func() error {
			p, err := s.products.Get(gctx, wanted[i].productID)
			if err != nil {
				return fmt.Errorf("product %s: %w", wanted[i].productID.Hex(), err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(wanted))
	var short []models.Shortage
	for i, w := range wanted {
		p := products[i]
		if p.Stock < w.quantity {
			short = append(short, models.Shortage{
				ProductID: p.ID.Hex(),
				Name:      p.Name,
				Requested: w.quantity,
				Available: p.Stock,
			})
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image(),
			Quantity:  w.quantity,
			UnitPrice: p.NewPrice,
			Subtotal:  p.NewPrice * int64(w.quantity),
		})
	}
	if len(short) > 0 {
		return nil, &models.StockError{Shortages: short}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.Order{}, err
	}
	return s.repo.Get(ctx, oid)
}

// GetForCustomer hides other customers' orders behind ErrNotFound.
func (s *Service) GetForCustomer(ctx context.Context, id string, customerID primitive.ObjectID) (models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if o.CustomerID != customerID {
		return models.Order{}, fmt.Errorf("order: %w", models.ErrNotFound)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f models.OrderFilter) (Page, error) {
	f.Page = f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []models.Order{}
	}
	return Page{Items: items, Total: total, Page: f.Page.Page, Limit: f.Page.Limit}, nil
}

// UpdateStatus is the admin transition entry point.
func (s *Service) UpdateStatus(ctx context.Context, id, status, actor string) (models.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.Order{}, err
	}
	to, err := models.ParseStatus(status)
	if err != nil {
		return models.Order{}, models.InvalidInput("unknown status %q", status)
	}
	return s.transition(ctx, oid, "", to, actor)
}

// Cancel lets a customer withdraw an order the shop has not accepted yet.
func (s *Service) Cancel(ctx context.Context, id string, customerID primitive.ObjectID) (models.Order, error) {
	o, err := s.GetForCustomer(ctx, id, customerID)
	if err != nil {
		return models.Order{}, err
	}
	if o.Status != models.StatusPending {
		return models.Order{}, fmt.Errorf("%w: only pending orders can be cancelled", models.ErrInvalidTransition)
	}
	return s.transition(ctx, o.ID, models.StatusPending, models.StatusCancelled, "customer:"+customerID.Hex())
}

func (s *Service) transition(ctx context.Context, id primitive.ObjectID, expect, to models.OrderStatus, actor string) (models.Order, error) {
	o, err := s.repo.Transition(ctx, id, expect, to, actor, s.now().UTC())
	if err != nil {
		return models.Order{}, err
	}

	if s.stock != nil {
		ids := make([]primitive.ObjectID, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		s.stock.Invalidate(ctx, ids...)
	}

	s.log.Info("order status changed",
		slog.String("order_id", o.ID.Hex()),
		slog.String("status", string(o.Status)),
		slog.String("by", actor),
	)
	s.publish(EventStatus, o)
	return o, nil
}

// Delete removes a finished order. Orders still in the workflow stay.
func (s *Service) Delete(ctx context.Context, id string) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	switch o.Status {
	case models.StatusCompleted, models.StatusCancelled, models.StatusRefunded:
	default:
		return fmt.Errorf("%w: %s orders cannot be deleted", models.ErrInvalidTransition, o.Status)
	}
	return s.repo.Delete(ctx, o.ID)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.CountByStatus(gctx)
		st.ByStatus = counts
		return err
	})
	g.Go(func() error {
		rev, err := s.repo.Revenue(gctx)
		st.Revenue = rev
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	full := make(map[models.OrderStatus]int64, len(models.AllStatuses))
	for _, status := range models.AllStatuses {
		full[status] = st.ByStatus[status]
		st.Total += st.ByStatus[status]
	}
	st.ByStatus = full
	return st, nil
}

func (s *Service) publish(event string, o models.Order) {
	if s.events != nil {
		s.events.Publish(event, o)
	}
}

func newOrderRef(now time.Time) string {
	return now.Format("20060102") + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
