package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/queue"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

// allowedTransitions is the order-status state machine.  LIVREE and
// ANNULEE are terminal.  Cancellation is reachable from every
// non-terminal status except EXPEDIEE: a shipped parcel cannot be
// recalled, it has to be delivered first.
var allowedTransitions = map[string][]string{
	model.StatusPending:   {model.StatusPaid, model.StatusCancelled},
	model.StatusPaid:      {model.StatusPreparing, model.StatusCancelled},
	model.StatusPreparing: {model.StatusShipped, model.StatusCancelled},
	model.StatusShipped:   {model.StatusDelivered},
	model.StatusDelivered: {},
	model.StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transitionError names the rejected transition and lists what would
// have been accepted.
func transitionError(from, to string) *apperror.Error {
	allowed := allowedTransitions[from]
	if len(allowed) == 0 {
		return apperror.BadRequest("Transition %s → %s impossible: le statut %s est final", from, to, from)
	}
	return apperror.BadRequest("Transition %s → %s impossible: transitions autorisées depuis %s: %s",
		from, to, from, strings.Join(allowed, ", "))
}

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// validateAddress checks the structured fields the JSON binding cannot.
func validateAddress(label string, a model.Address) *apperror.Error {
	var fields []apperror.FieldError
	if a.Name == "" {
		fields = append(fields, apperror.FieldError{Field: label + ".name", Message: "Le nom est requis"})
	}
	if a.Surname == "" {
		fields = append(fields, apperror.FieldError{Field: label + ".surname", Message: "Le prénom est requis"})
	}
	if a.Street == "" {
		fields = append(fields, apperror.FieldError{Field: label + ".street", Message: "La rue est requise"})
	}
	if a.City == "" {
		fields = append(fields, apperror.FieldError{Field: label + ".city", Message: "La ville est requise"})
	}
	if !postalCodeRe.MatchString(a.PostalCode) {
		fields = append(fields, apperror.FieldError{
			Field:   label + ".postalCode",
			Message: "Le code postal doit comporter 5 chiffres",
			Value:   a.PostalCode,
		})
	}
	if len(fields) > 0 {
		return apperror.BadRequest("Adresse invalide").WithFields(fields...)
	}
	return nil
}

func validPaymentMode(mode string) bool {
	switch mode {
	case model.PaymentTransfer, model.PaymentCard, model.PaymentCheque:
		return true
	}
	return false
}

// orderTotals holds the money amounts computed from decorated cart lines.
type orderTotals struct {
	SubtotalHT  float64
	TotalTVA    float64
	ShippingFee float64
	TotalTTC    float64
}

// computeTotals turns decorated cart lines into frozen order lines and
// the order totals.  Shipping is the flat fee, waived once the goods
// total (TTC, before shipping) reaches the free-shipping threshold.
func computeTotals(items []model.CartItem, shippingFee, freeAbove float64) ([]model.OrderLine, orderTotals) {
	lines := make([]model.OrderLine, 0, len(items))
	var t orderTotals
	for _, it := range items {
		pid := it.ProductID
		lines = append(lines, model.OrderLine{
			ProductID:    &pid,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			UnitPriceHT:  it.EffectivePrice,
			TaxRate:      it.TaxRate,
			LineTotalHT:  it.Subtotal,
			LineTVA:      it.TVAAmount,
			LineTotalTTC: it.Total,
		})
		t.SubtotalHT += it.Subtotal
		t.TotalTVA += it.TVAAmount
	}
	t.SubtotalHT = round2(t.SubtotalHT)
	t.TotalTVA = round2(t.TotalTVA)
	goods := round2(t.SubtotalHT + t.TotalTVA)
	t.ShippingFee = round2(shippingFee)
	if freeAbove > 0 && goods >= freeAbove {
		t.ShippingFee = 0
	}
	t.TotalTTC = round2(goods + t.ShippingFee)
	return lines, t
}

// OrderLineInput is one explicitly submitted checkout line.  When the
// payload carries lines the order is built from them and the cart is
// left untouched; otherwise the user's cart is the source.
type OrderLineInput struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput is the checkout payload after JSON binding.
type CreateOrderInput struct {
	Lines           []OrderLineInput `json:"lines"`
	ShippingAddress model.Address    `json:"shippingAddress"`
	BillingAddress  *model.Address   `json:"billingAddress"`
	PaymentMode     string           `json:"paymentMode"`
	Notes           string           `json:"notes"`
}

// OrderService turns carts into orders and drives the status state
// machine.  Stock reservation happens inside the checkout transaction:
// guarded decrements either all succeed or the whole order rolls back.
type OrderService struct {
	DB       *sql.DB
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
	Carts    *repository.CartRepo
	Users    *repository.UserRepo
	Settings settingsReader
	Mail     mailPublisher
}

func NewOrderService(db *sql.DB, orders *repository.OrderRepo, products *repository.ProductRepo,
	carts *repository.CartRepo, users *repository.UserRepo, settings settingsReader, mail mailPublisher) *OrderService {
	return &OrderService{DB: db, Orders: orders, Products: products, Carts: carts,
		Users: users, Settings: settings, Mail: mail}
}

// Create places an order from the user's current cart.  The whole
// checkout runs in one transaction: order number draw, order and line
// inserts, one guarded stock decrement per line and the cart purge.  A
// single line short on stock rolls everything back.
func (s *OrderService) Create(ctx context.Context, userID uint64, in CreateOrderInput) (*model.Order, error) {
	if !validPaymentMode(in.PaymentMode) {
		return nil, apperror.BadRequest("Mode de paiement invalide: %s", in.PaymentMode)
	}
	if err := validateAddress("shippingAddress", in.ShippingAddress); err != nil {
		return nil, err
	}
	if in.BillingAddress != nil {
		if err := validateAddress("billingAddress", *in.BillingAddress); err != nil {
			return nil, err
		}
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Utilisateur introuvable")
		}
		return nil, err
	}

	minAmount := s.Settings.Float(ctx, model.SettingMinOrderAmount, 0)
	shippingFee := s.Settings.Float(ctx, model.SettingShippingFee, 0)
	freeAbove := s.Settings.Float(ctx, model.SettingFreeShippingAbove, 0)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.Users.LockTx(ctx, tx, userID); err != nil {
		return nil, err
	}
	fromCart := len(in.Lines) == 0
	var cartID uint64
	var items []model.CartItem
	if fromCart {
		cartRows, err := s.Carts.ListByUserTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if len(cartRows) == 0 {
			return nil, apperror.BadRequest("Votre panier est vide")
		}
		cartID = cartRows[0].ID
		items, err = s.Carts.ItemsWithProducts(ctx, tx, cartID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, apperror.BadRequest("Votre panier est vide")
		}
		decorateItems(items)
	} else {
		var err error
		items, err = s.itemsFromLines(ctx, tx, in.Lines)
		if err != nil {
			return nil, err
		}
	}

	for _, it := range items {
		if !it.IsActive {
			return nil, apperror.BadRequest("Le produit «%s» n'est plus disponible", it.ProductName)
		}
		if it.StockQuantity < it.Quantity {
			return nil, apperror.BadRequest("Stock insuffisant pour «%s»: %d disponible(s)",
				it.ProductName, it.StockQuantity)
		}
	}

	lines, totals := computeTotals(items, shippingFee, freeAbove)
	if minAmount > 0 && round2(totals.SubtotalHT+totals.TotalTVA) < minAmount {
		return nil, apperror.BadRequest("Le montant minimum de commande est de %.2f €", minAmount)
	}

	number, err := s.Orders.NextOrderNumberTx(ctx, tx, time.Now())
	if err != nil {
		return nil, err
	}
	order := &model.Order{
		OrderNumber:     number,
		UserID:          &userID,
		Status:          model.StatusPending,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		PaymentMode:     in.PaymentMode,
		SubtotalHT:      totals.SubtotalHT,
		TotalTVA:        totals.TotalTVA,
		ShippingFee:     totals.ShippingFee,
		TotalTTC:        totals.TotalTTC,
		Notes:           in.Notes,
	}
	if err := s.Orders.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := s.Orders.CreateLinesTx(ctx, tx, lines); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := s.Products.DecrementStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			if err == repository.ErrInsufficientStock {
				return nil, apperror.BadRequest("Stock insuffisant pour «%s»: la quantité demandée n'est plus disponible",
					it.ProductName)
			}
			return nil, err
		}
	}
	if fromCart {
		if err := s.Carts.ClearItemsTx(ctx, tx, cartID); err != nil {
			return nil, err
		}
		if err := s.Carts.TouchTx(ctx, tx, cartID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	order.Lines = lines
	fireMail(ctx, s.Mail, queue.MailMessage{
		Kind:        queue.MailOrderPlaced,
		To:          user.Email,
		Name:        user.Name,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalTTC:    order.TotalTTC,
	})
	return order, nil
}

// Get loads one order.  Non-admin callers only see their own orders; a
// foreign order reads as not found.
func (s *OrderService) Get(ctx context.Context, orderID, userID uint64, isAdmin bool) (*model.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Commande introuvable")
		}
		return nil, err
	}
	if !isAdmin && (o.UserID == nil || *o.UserID != userID) {
		return nil, apperror.NotFound("Commande introuvable")
	}
	return &o, nil
}

// List returns a page of orders.  Non-admin callers are pinned to their
// own orders regardless of the query.
func (s *OrderService) List(ctx context.Context, q repository.OrderListQuery, userID uint64, isAdmin bool) ([]model.Order, int64, error) {
	if !isAdmin {
		q.UserID = userID
	}
	return s.Orders.List(ctx, q)
}

// UpdateStatus moves an order through the state machine.  Illegal
// transitions are rejected with a message naming the attempted change
// and the transitions the current status allows.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint64, newStatus string, notes *string) (*model.Order, error) {
	if _, known := allowedTransitions[newStatus]; !known {
		return nil, apperror.BadRequest("Statut inconnu: %s", newStatus)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.Orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Commande introuvable")
		}
		return nil, err
	}
	if !CanTransition(o.Status, newStatus) {
		return nil, transitionError(o.Status, newStatus)
	}
	// Moving to ANNULEE through the generic endpoint still has to give
	// the reserved stock back.
	if newStatus == model.StatusCancelled {
		if err := s.restoreStockTx(ctx, tx, orderID); err != nil {
			return nil, err
		}
	}
	if err := s.Orders.UpdateStatusTx(ctx, tx, orderID, newStatus, notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	updated, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, &updated)
	return &updated, nil
}

// Cancel moves an order to ANNULEE and puts every line's quantity back
// in stock, atomically.  Non-admin callers may only cancel their own
// orders.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uint64, isAdmin bool) (*model.Order, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.Orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Commande introuvable")
		}
		return nil, err
	}
	if !isAdmin && (o.UserID == nil || *o.UserID != userID) {
		return nil, apperror.NotFound("Commande introuvable")
	}
	if !CanTransition(o.Status, model.StatusCancelled) {
		return nil, transitionError(o.Status, model.StatusCancelled)
	}
	if err := s.restoreStockTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	note := fmt.Sprintf("Annulée le %s", time.Now().Format("02/01/2006"))
	if o.Notes != "" {
		note = o.Notes + " | " + note
	}
	if err := s.Orders.UpdateStatusTx(ctx, tx, orderID, model.StatusCancelled, &note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	updated, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, &updated)
	return &updated, nil
}

// itemsFromLines resolves explicitly submitted checkout lines against
// the catalog, inside the checkout transaction.
func (s *OrderService) itemsFromLines(ctx context.Context, tx *sql.Tx, lines []OrderLineInput) ([]model.CartItem, error) {
	items := make([]model.CartItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, apperror.BadRequest("Quantité invalide pour le produit %d", l.ProductID)
		}
		p, err := s.Products.GetByIDTx(ctx, tx, l.ProductID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, apperror.BadRequest("Produit %d introuvable", l.ProductID)
			}
			return nil, err
		}
		items = append(items, model.CartItem{
			ProductID:     p.ID,
			Quantity:      l.Quantity,
			ProductName:   p.Name,
			ProductSlug:   p.Slug,
			Reference:     p.Reference,
			Price:         p.Price,
			PromoPrice:    p.PromoPrice,
			TaxRate:       p.TaxRate,
			StockQuantity: p.StockQuantity,
			IsActive:      p.IsActive,
		})
	}
	decorateItems(items)
	return items, nil
}

// restoreStockTx puts every order line's quantity back into live stock,
// mirroring the decrement that ran at creation.
func (s *OrderService) restoreStockTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	lines, err := s.Orders.Lines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.ProductID == nil {
			continue // product hard-deleted since, nothing to restore
		}
		if err := s.Products.RestoreStockTx(ctx, tx, *l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// notifyStatus emails the order's owner about a status change.  Orders
// whose owner was deleted are skipped.
func (s *OrderService) notifyStatus(ctx context.Context, o *model.Order) {
	if o.UserID == nil {
		return
	}
	user, err := s.Users.GetByID(ctx, *o.UserID)
	if err != nil {
		return
	}
	fireMail(ctx, s.Mail, queue.MailMessage{
		Kind:        queue.MailOrderStatus,
		To:          user.Email,
		Name:        user.Name,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TotalTTC:    o.TotalTTC,
	})
}
