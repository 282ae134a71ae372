package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/billing"
	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/metrics"
)

// ProductRef names a product by id or, when ID is nil, by barcode.
type ProductRef struct {
	ID      *uint
	Barcode string
}

// AddResult is the line after an add. Created is false when the quantity
// was merged into an existing line for the same product.
type AddResult struct {
	Item    *models.InvoiceItem
	Created bool
}

// UpdateResult is the line after an update, or Removed when the new
// quantity deleted it.
type UpdateResult struct {
	Item    *models.InvoiceItem
	Removed bool
}

// CartService edits the items of draft invoices. It never changes stock or
// invoice totals; both are settled when the invoice is completed.
type CartService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db, now: time.Now}
}

// AddItem puts qty units of the product on the invoice. A product already
// on the invoice has its line merged; the combined quantity must be covered
// by current stock.
func (s *CartService) AddItem(ctx context.Context, invoiceID uint, ref ProductRef, qty int) (*AddResult, error) {
	var res AddResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repositories.NewInvoiceRepository(tx)
		if _, err := s.draft(invoices, invoiceID); err != nil {
			return err
		}
		if qty <= 0 {
			return &ValidationError{Field: "quantity", Msg: "Quantity must be greater than 0"}
		}

		product, err := resolveProduct(repositories.NewProductRepository(tx), ref)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return &InactiveProductError{ProductName: product.Name}
		}
		if product.StockQty < qty {
			return insufficient(product)
		}

		item, err := invoices.FindItemByProduct(invoiceID, product.ID)
		switch {
		case err == nil:
			if product.StockQty < item.Quantity+qty {
				return insufficient(product)
			}
			item.Quantity += qty
			applyLine(item)
			if err := invoices.SaveItemAmounts(item); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.InvoiceItem{
				InvoiceID:  invoiceID,
				ProductID:  product.ID,
				Quantity:   qty,
				UnitPrice:  product.Price,
				TaxPercent: product.TaxPercent,
			}
			applyLine(item)
			if err := invoices.CreateItem(item); err != nil {
				return err
			}
			res.Created = true
		default:
			return err
		}

		item.ProductName = product.Name
		res.Item = item
		return invoices.TouchUpdatedAt(invoiceID, s.now().UTC())
	})
	if err != nil {
		return nil, persistence("add invoice item", err)
	}

	op := "merge"
	if res.Created {
		op = "add"
	}
	metrics.CartMutations.WithLabelValues(op).Inc()
	logger.WithCtx(ctx).Info("invoice item added",
		"invoice_id", invoiceID,
		"item_id", res.Item.ID,
		"product_id", res.Item.ProductID,
		"quantity", res.Item.Quantity,
		"merged", !res.Created,
	)
	return &res, nil
}

// UpdateItem sets the line's quantity. A nil qty is rejected; zero or less
// removes the line.
func (s *CartService) UpdateItem(ctx context.Context, invoiceID, itemID uint, qty *int) (*UpdateResult, error) {
	var res UpdateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repositories.NewInvoiceRepository(tx)
		if _, err := s.draft(invoices, invoiceID); err != nil {
			return err
		}
		item, err := invoices.FindItem(invoiceID, itemID)
		if err != nil {
			return notFound(err, "Item", itemID)
		}
		if qty == nil {
			return &ValidationError{Field: "quantity", Msg: "Quantity is required"}
		}

		if *qty <= 0 {
			if err := invoices.DeleteItem(item); err != nil {
				return err
			}
			res.Removed = true
			return invoices.TouchUpdatedAt(invoiceID, s.now().UTC())
		}

		product, err := repositories.NewProductRepository(tx).FindByID(item.ProductID)
		if err != nil {
			return notFound(err, "Product", item.ProductID)
		}
		if product.StockQty < *qty {
			return insufficient(product)
		}

		item.Quantity = *qty
		applyLine(item)
		if err := invoices.SaveItemAmounts(item); err != nil {
			return err
		}
		item.ProductName = product.Name
		res.Item = item
		return invoices.TouchUpdatedAt(invoiceID, s.now().UTC())
	})
	if err != nil {
		return nil, persistence("update invoice item", err)
	}

	if res.Removed {
		metrics.CartMutations.WithLabelValues("remove").Inc()
		logger.WithCtx(ctx).Info("invoice item removed", "invoice_id", invoiceID, "item_id", itemID)
	} else {
		metrics.CartMutations.WithLabelValues("update").Inc()
		logger.WithCtx(ctx).Info("invoice item updated", "invoice_id", invoiceID, "item_id", itemID, "quantity", res.Item.Quantity)
	}
	return &res, nil
}

// RemoveItem deletes a line from a draft invoice.
func (s *CartService) RemoveItem(ctx context.Context, invoiceID, itemID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repositories.NewInvoiceRepository(tx)
		if _, err := s.draft(invoices, invoiceID); err != nil {
			return err
		}
		item, err := invoices.FindItem(invoiceID, itemID)
		if err != nil {
			return notFound(err, "Item", itemID)
		}
		if err := invoices.DeleteItem(item); err != nil {
			return err
		}
		return invoices.TouchUpdatedAt(invoiceID, s.now().UTC())
	})
	if err != nil {
		return persistence("remove invoice item", err)
	}

	metrics.CartMutations.WithLabelValues("remove").Inc()
	logger.WithCtx(ctx).Info("invoice item removed", "invoice_id", invoiceID, "item_id", itemID)
	return nil
}

// draft locks the invoice and checks that its items may still change.
func (s *CartService) draft(invoices *repositories.InvoiceRepository, id uint) (*models.Invoice, error) {
	inv, err := invoices.FindForUpdate(id)
	if err != nil {
		return nil, notFound(err, "Invoice", id)
	}
	if !inv.IsDraft() {
		return nil, &InvalidStateError{Msg: "Cannot modify non-draft invoice"}
	}
	return inv, nil
}

func resolveProduct(products *repositories.ProductRepository, ref ProductRef) (*models.Product, error) {
	switch {
	case ref.ID != nil:
		p, err := products.FindByID(*ref.ID)
		if err != nil {
			return nil, notFound(err, "Product", *ref.ID)
		}
		return p, nil
	case strings.TrimSpace(ref.Barcode) != "":
		barcode := strings.TrimSpace(ref.Barcode)
		p, err := products.FindActiveByBarcode(barcode)
		if err != nil {
			return nil, notFound(err, "Product", barcode)
		}
		return p, nil
	default:
		return nil, &ValidationError{Field: "product_id", Msg: "product_id or barcode is required"}
	}
}

func applyLine(item *models.InvoiceItem) {
	line := billing.ComputeLine(item.Quantity, item.UnitPrice, item.TaxPercent)
	item.LineSubtotal = line.Subtotal
	item.LineTax = line.Tax
	item.LineTotal = line.Total
}

func insufficient(p *models.Product) error {
	metrics.InsufficientStock.Inc()
	return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Available: p.StockQty}
}
