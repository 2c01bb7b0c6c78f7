package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

// settingsReader is the read-only slice of the settings service the cart
// and order services depend on.  Tests plug a fixed-value stub.
type settingsReader interface {
	Float(ctx context.Context, key string, def float64) float64
	Bool(ctx context.Context, key string, def bool) bool
}

// CartService owns the one-cart-per-user invariant and all cart
// mutations.  Every write path takes the user row lock first so
// concurrent requests for the same user serialize instead of racing the
// get-or-create.
type CartService struct {
	DB       *sql.DB
	Users    *repository.UserRepo
	Carts    *repository.CartRepo
	Products *repository.ProductRepo
	Settings settingsReader
}

func NewCartService(db *sql.DB, users *repository.UserRepo, carts *repository.CartRepo,
	products *repository.ProductRepo, settings settingsReader) *CartService {
	return &CartService{DB: db, Users: users, Carts: carts, Products: products, Settings: settings}
}

// round2 rounds a money amount to two decimals, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// decorateItems fills the computed pricing fields of each line: the
// effective unit price (promo when set and lower than the list price),
// the HT subtotal, the TVA amount and the TTC total.
func decorateItems(items []model.CartItem) {
	for i := range items {
		it := &items[i]
		eff := it.Price
		if it.PromoPrice != nil && *it.PromoPrice > 0 && *it.PromoPrice < it.Price {
			eff = *it.PromoPrice
		}
		it.EffectivePrice = round2(eff)
		it.Subtotal = round2(it.EffectivePrice * float64(it.Quantity))
		it.TVAAmount = round2(it.Subtotal * it.TaxRate / 100)
		it.Total = round2(it.Subtotal + it.TVAAmount)
	}
}

// computeSummary aggregates decorated lines into the cart totals.
func computeSummary(items []model.CartItem) model.CartSummary {
	var s model.CartSummary
	s.ItemCount = len(items)
	for _, it := range items {
		s.TotalQuantity += it.Quantity
		s.SubtotalHT += it.Subtotal
		s.TotalTVA += it.TVAAmount
	}
	s.SubtotalHT = round2(s.SubtotalHT)
	s.TotalTVA = round2(s.TotalTVA)
	s.TotalTTC = round2(s.SubtotalHT + s.TotalTVA)
	return s
}

// getOrCreateTx resolves the user's single cart inside the transaction.
// Zero rows creates one; more than one row means earlier writes raced
// before the lock discipline existed, so the duplicates are merged into
// the oldest cart and the event is logged.
func (s *CartService) getOrCreateTx(ctx context.Context, tx *sql.Tx, userID uint64) (repository.CartRow, error) {
	if err := s.Users.LockTx(ctx, tx, userID); err != nil {
		if err == sql.ErrNoRows {
			return repository.CartRow{}, apperror.NotFound("Utilisateur introuvable")
		}
		return repository.CartRow{}, err
	}
	rows, err := s.Carts.ListByUserTx(ctx, tx, userID)
	if err != nil {
		return repository.CartRow{}, err
	}
	switch len(rows) {
	case 0:
		return s.Carts.CreateTx(ctx, tx, userID)
	case 1:
		return rows[0], nil
	}
	survivor := rows[0]
	dupIDs := make([]uint64, 0, len(rows)-1)
	for _, r := range rows[1:] {
		dupIDs = append(dupIDs, r.ID)
	}
	log.Printf("WARN: user %d had %d carts, merging %v into %d", userID, len(rows), dupIDs, survivor.ID)
	if err := s.Carts.MergeDuplicatesTx(ctx, tx, survivor.ID, dupIDs); err != nil {
		return repository.CartRow{}, err
	}
	return survivor, nil
}

func buildCart(row repository.CartRow, items []model.CartItem) *model.Cart {
	decorateItems(items)
	c := &model.Cart{
		ID:      row.ID,
		UserID:  row.UserID,
		Items:   items,
		Summary: computeSummary(items),
	}
	if row.CreatedAt.Valid {
		c.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		c.UpdatedAt = row.UpdatedAt.Time
	}
	return c
}

// GetOrCreate returns the user's cart with decorated items and totals,
// creating it on first access.
func (s *CartService) GetOrCreate(ctx context.Context, userID uint64) (*model.Cart, error) {
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

	row, err := s.getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.Carts.ItemsWithProducts(ctx, tx, row.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return buildCart(row, items), nil
}

// AddItem adds a product to the user's cart, merging into the existing
// line when the product is already there.  The captured unit price is
// the product's effective price at add time.  Unless backorders are
// allowed the resulting line quantity may not exceed the live stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, apperror.BadRequest("La quantité doit être au moins 1")
	}
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Produit introuvable")
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, apperror.BadRequest("Le produit «%s» n'est plus disponible", p.Name)
	}
	allowBackorder := s.Settings.Bool(ctx, model.SettingAllowBackorder, false)

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

	row, err := s.getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	_, existingQty, _, err := s.Carts.FindItemTx(ctx, tx, row.ID, productID)
	if err != nil {
		return nil, err
	}
	if !allowBackorder && existingQty+quantity > p.StockQuantity {
		return nil, apperror.BadRequest("Stock insuffisant pour «%s»: %d disponible(s)", p.Name, p.StockQuantity)
	}
	itemID, err := s.Carts.UpsertItemTx(ctx, tx, row.ID, productID, quantity, p.EffectivePrice())
	if err != nil {
		return nil, err
	}
	if err := s.Carts.TouchTx(ctx, tx, row.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	it, err := s.Carts.GetItemDetail(ctx, itemID)
	if err != nil {
		return nil, err
	}
	one := []model.CartItem{it}
	decorateItems(one)
	return &one[0], nil
}

// requireItemOwnership rejects operations on lines that do not belong to
// the user.  Foreign items are reported as not found rather than
// forbidden so the endpoint does not leak other users' line ids.
func (s *CartService) requireItemOwnership(ctx context.Context, itemID, userID uint64) error {
	owned, err := s.Carts.IsItemOwnedByUser(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return apperror.NotFound("Article introuvable dans votre panier")
	}
	return nil
}

// UpdateItemQuantity sets the absolute quantity of a cart line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uint64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, apperror.BadRequest("La quantité doit être au moins 1")
	}
	if err := s.requireItemOwnership(ctx, itemID, userID); err != nil {
		return nil, err
	}
	cartID, productID, _, err := s.Carts.GetItemMeta(ctx, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Article introuvable dans votre panier")
		}
		return nil, err
	}
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.Settings.Bool(ctx, model.SettingAllowBackorder, false) && quantity > p.StockQuantity {
		return nil, apperror.BadRequest("Stock insuffisant pour «%s»: %d disponible(s)", p.Name, p.StockQuantity)
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
	ok, err := s.Carts.UpdateItemQuantityTx(ctx, tx, itemID, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("Article introuvable dans votre panier")
	}
	if err := s.Carts.TouchTx(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	it, err := s.Carts.GetItemDetail(ctx, itemID)
	if err != nil {
		return nil, err
	}
	one := []model.CartItem{it}
	decorateItems(one)
	return &one[0], nil
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint64) error {
	if err := s.requireItemOwnership(ctx, itemID, userID); err != nil {
		return err
	}
	cartID, _, _, err := s.Carts.GetItemMeta(ctx, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Article introuvable dans votre panier")
		}
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ok, err := s.Carts.RemoveItemTx(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("Article introuvable dans votre panier")
	}
	if err := s.Carts.TouchTx(ctx, tx, cartID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Clear removes every line from the user's cart.
func (s *CartService) Clear(ctx context.Context, userID uint64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	row, err := s.getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := s.Carts.ClearItemsTx(ctx, tx, row.ID); err != nil {
		return err
	}
	if err := s.Carts.TouchTx(ctx, tx, row.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Count returns the number of distinct lines and the summed quantity in
// the user's cart, for the header badge.
func (s *CartService) Count(ctx context.Context, userID uint64) (lines, quantity int, err error) {
	return s.Carts.CountItems(ctx, userID)
}

// validateItems checks decorated cart lines against the live catalog.
// Unavailable products and empty stock are blocking errors; partially
// covered quantities are warnings (checkout may still clamp them).  A
// cart total below minAmount adds a blocking global error.
func validateItems(items []model.CartItem, summary model.CartSummary, minAmount float64) ([]model.CartIssue, []model.CartIssue) {
	errs := make([]model.CartIssue, 0)
	warns := make([]model.CartIssue, 0)
	for _, it := range items {
		switch {
		case !it.IsActive:
			errs = append(errs, model.CartIssue{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Reason:      "Ce produit n'est plus disponible",
			})
		case it.StockQuantity == 0:
			errs = append(errs, model.CartIssue{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Reason:      "Ce produit est en rupture de stock",
				Requested:   it.Quantity,
				Available:   0,
			})
		case it.StockQuantity < it.Quantity:
			warns = append(warns, model.CartIssue{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Reason:      fmt.Sprintf("Stock limité: %d disponible(s) pour %d demandé(s)", it.StockQuantity, it.Quantity),
				Requested:   it.Quantity,
				Available:   it.StockQuantity,
			})
		}
	}
	if minAmount > 0 && summary.TotalTTC < minAmount {
		errs = append(errs, model.CartIssue{
			Reason: fmt.Sprintf("Le montant minimum de commande est de %.2f €", minAmount),
			Amount: minAmount,
		})
	}
	return errs, warns
}

// Validate re-reads the cart against the live catalog and reports what
// would block a checkout.
func (s *CartService) Validate(ctx context.Context, userID uint64) (*model.CartValidation, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	minAmount := s.Settings.Float(ctx, model.SettingMinOrderAmount, 0)
	errs, warns := validateItems(cart.Items, cart.Summary, minAmount)
	return &model.CartValidation{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
		Cart:     cart,
	}, nil
}

// Fix applies the automatic adjustments the validation suggests: lines
// for unavailable or out-of-stock products are removed and over-stock
// quantities are clamped down.  Returns the repaired cart and the list
// of applied fixes.
func (s *CartService) Fix(ctx context.Context, userID uint64) (*model.Cart, []model.CartFix, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row, err := s.getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.Carts.ItemsWithProducts(ctx, tx, row.ID)
	if err != nil {
		return nil, nil, err
	}
	fixes := make([]model.CartFix, 0)
	for _, it := range items {
		switch {
		case !it.IsActive:
			if _, err := s.Carts.RemoveItemTx(ctx, tx, it.ID); err != nil {
				return nil, nil, err
			}
			fixes = append(fixes, model.CartFix{
				Type:        "removed",
				ProductName: it.ProductName,
				Reason:      "Produit plus disponible",
			})
		case it.StockQuantity == 0:
			if _, err := s.Carts.RemoveItemTx(ctx, tx, it.ID); err != nil {
				return nil, nil, err
			}
			fixes = append(fixes, model.CartFix{
				Type:        "removed",
				ProductName: it.ProductName,
				Reason:      "Rupture de stock",
			})
		case it.StockQuantity < it.Quantity:
			if _, err := s.Carts.UpdateItemQuantityTx(ctx, tx, it.ID, it.StockQuantity); err != nil {
				return nil, nil, err
			}
			fixes = append(fixes, model.CartFix{
				Type:        "adjusted",
				ProductName: it.ProductName,
				Reason:      "Quantité ajustée au stock disponible",
				OldQuantity: it.Quantity,
				NewQuantity: it.StockQuantity,
			})
		}
	}
	if len(fixes) > 0 {
		if err := s.Carts.TouchTx(ctx, tx, row.ID); err != nil {
			return nil, nil, err
		}
	}
	remaining, err := s.Carts.ItemsWithProducts(ctx, tx, row.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true
	return buildCart(row, remaining), fixes, nil
}
