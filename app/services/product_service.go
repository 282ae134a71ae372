package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
)

// ProductInput carries catalogue fields. Nil fields are left unchanged on
// update; Create requires Name and Price.
type ProductInput struct {
	Name       *string          `json:"name"        validate:"min=1,max=255"`
	Barcode    *string          `json:"barcode"     validate:"max=64"`
	Price      *decimal.Decimal `json:"price"       validate:"gte=0"`
	TaxPercent *decimal.Decimal `json:"tax_percent" validate:"gte=0,lte=100"`
	StockQty   *int             `json:"stock_qty"   validate:"gte=0"`
	IsActive   *bool            `json:"is_active"`
}

// ProductService owns the catalogue. It is the only writer of product
// fields other than the stock movements made by invoice completion.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List pages through products by name. Inactive products are hidden unless
// showInactive is set.
func (s *ProductService) List(ctx context.Context, search string, showInactive bool, p orm.Pagination) ([]models.Product, orm.Pagination, error) {
	p = orm.NewPagination(p.Page, p.PageSize)
	rows, total, err := repositories.NewProductRepository(s.db.WithContext(ctx)).
		List(repositories.ProductFilter{Search: search, ShowInactive: showInactive}, p)
	if err != nil {
		return nil, p, persistence("list products", err)
	}
	if rows == nil {
		rows = []models.Product{}
	}
	return rows, p.WithTotal(total), nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := repositories.NewProductRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, persistence("get product", notFound(err, "Product", id))
	}
	return p, nil
}

// ByBarcode finds an active product by its barcode.
func (s *ProductService) ByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	p, err := repositories.NewProductRepository(s.db.WithContext(ctx)).FindActiveByBarcode(strings.TrimSpace(barcode))
	if err != nil {
		return nil, persistence("get product by barcode", notFound(err, "Product", barcode))
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Field: "name", Msg: "Name and price are required"}
	}
	if in.Price == nil {
		return nil, &ValidationError{Field: "price", Msg: "Name and price are required"}
	}

	p := &models.Product{
		Price:      decimal.Zero,
		TaxPercent: decimal.Zero,
		IsActive:   true,
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)
		if err := checkBarcode(products, p.Barcode, 0); err != nil {
			return err
		}
		return products.Create(p)
	})
	if err != nil {
		return nil, persistence("create product", err)
	}

	logger.WithCtx(ctx).Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// Update changes the fields present in in. Setting stock_qty here is the
// catalogue's manual stock adjustment.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)

		var err error
		p, err = products.FindByID(id)
		if err != nil {
			return notFound(err, "Product", id)
		}
		if err := applyProductInput(p, in); err != nil {
			return err
		}
		if in.Barcode != nil {
			if err := checkBarcode(products, p.Barcode, p.ID); err != nil {
				return err
			}
		}
		return products.Update(p)
	})
	if err != nil {
		return nil, persistence("update product", err)
	}

	logger.WithCtx(ctx).Info("product updated", "product_id", p.ID)
	return p, nil
}

// Delete switches the product off. Existing invoice lines keep pointing at it.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)
		p, err := products.FindByID(id)
		if err != nil {
			return notFound(err, "Product", id)
		}
		p.IsActive = false
		return products.Update(p)
	})
	if err != nil {
		return persistence("delete product", err)
	}

	logger.WithCtx(ctx).Info("product deactivated", "product_id", id)
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return &ValidationError{Field: "name", Msg: "Name cannot be empty"}
		}
		p.Name = name
	}
	if in.Barcode != nil {
		if b := strings.TrimSpace(*in.Barcode); b != "" {
			p.Barcode = &b
		} else {
			p.Barcode = nil
		}
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return &ValidationError{Field: "price", Msg: "Price cannot be negative"}
		}
		p.Price = *in.Price
	}
	if in.TaxPercent != nil {
		if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(decimal.NewFromInt(100)) {
			return &ValidationError{Field: "tax_percent", Msg: "Tax percent must be between 0 and 100"}
		}
		p.TaxPercent = *in.TaxPercent
	}
	if in.StockQty != nil {
		if *in.StockQty < 0 {
			return &ValidationError{Field: "stock_qty", Msg: "Stock quantity cannot be negative"}
		}
		p.StockQty = *in.StockQty
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

func checkBarcode(products *repositories.ProductRepository, barcode *string, exceptID uint) error {
	if barcode == nil {
		return nil
	}
	taken, err := products.BarcodeTaken(*barcode, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Msg: "Barcode already exists"}
	}
	return nil
}
