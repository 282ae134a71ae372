package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestProductServiceLifecycle(t *testing.T) {
	e := newEnv(t)
	svc := NewProductService(e.db)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{
		Name:       strPtr("  Coffee 250g "),
		Barcode:    strPtr("7001"),
		Price:      decPtr("8.75"),
		TaxPercent: decPtr("5"),
		StockQty:   intPtr(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee 250g", p.Name)
	assert.True(t, p.IsActive)

	_, err = svc.Create(ctx, ProductInput{Name: strPtr("Copy"), Barcode: strPtr("7001"), Price: decPtr("1")})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	updated, err := svc.Update(ctx, p.ID, ProductInput{Price: decPtr("9"), StockQty: intPtr(40)})
	require.NoError(t, err)
	assertMoney(t, "9", updated.Price)
	assert.Equal(t, 40, updated.StockQty)
	assert.Equal(t, "7001", *updated.Barcode)

	byCode, err := svc.ByBarcode(ctx, "7001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.ByBarcode(ctx, "7001")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	kept, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)
}

func TestProductServiceValidation(t *testing.T) {
	e := newEnv(t)
	svc := NewProductService(e.db)
	ctx := context.Background()

	cases := map[string]ProductInput{
		"missing name":   {Price: decPtr("1")},
		"missing price":  {Name: strPtr("X")},
		"negative price": {Name: strPtr("X"), Price: decPtr("-1")},
		"tax over 100":   {Name: strPtr("X"), Price: decPtr("1"), TaxPercent: decPtr("100.5")},
		"negative stock": {Name: strPtr("X"), Price: decPtr("1"), StockQty: intPtr(-1)},
		"blank name":     {Name: strPtr("   "), Price: decPtr("1")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestProductServiceListHidesInactive(t *testing.T) {
	e := newEnv(t)
	svc := NewProductService(e.db)
	ctx := context.Background()
	e.product(t, "Apple", "A-1", "1", "0", 1)
	e.product(t, "Banana", "B-1", "1", "0", 1)
	gone := e.product(t, "Apricot", "A-2", "1", "0", 1)
	require.NoError(t, svc.Delete(ctx, gone.ID))

	rows, p, err := svc.List(ctx, "ap", false, orm.Pagination{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apple", rows[0].Name)
	assert.EqualValues(t, 1, p.Total)
	assert.Equal(t, orm.DefaultPageSize, p.PageSize)

	rows, _, err = svc.List(ctx, "ap", true, orm.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUserServiceRules(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.db)
	ctx := context.Background()

	admin, err := svc.Create(ctx, UserInput{
		Name: strPtr("Admin"), Email: strPtr("Admin@Shop.test"), Password: strPtr("secret1"), Role: strPtr("admin"),
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", admin.Email)
	assert.NotEqual(t, "secret1", admin.PasswordHash)

	_, err = svc.Create(ctx, UserInput{
		Name: strPtr("Dup"), Email: strPtr("admin@shop.test"), Password: strPtr("secret1"), Role: strPtr("cashier"),
	})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	_, err = svc.Create(ctx, UserInput{Name: strPtr("Partial")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Create(ctx, UserInput{
		Name: strPtr("Boss"), Email: strPtr("boss@shop.test"), Password: strPtr("secret1"), Role: strPtr("owner"),
	})
	require.ErrorAs(t, err, &ve)

	_, err = svc.Update(ctx, admin.ID, admin.ID, UserInput{Role: strPtr("cashier")})
	require.ErrorAs(t, err, &ve)
	_, err = svc.Update(ctx, admin.ID, admin.ID, UserInput{IsActive: boolPtr(false)})
	require.ErrorAs(t, err, &ve)
	require.ErrorAs(t, svc.Delete(ctx, admin.ID, admin.ID), &ve)

	cashier, err := svc.Create(ctx, UserInput{
		Name: strPtr("Till 1"), Email: strPtr("till1@shop.test"), Password: strPtr("secret1"), Role: strPtr("cashier"),
	})
	require.NoError(t, err)

	renamed, err := svc.Update(ctx, admin.ID, cashier.ID, UserInput{Name: strPtr("Till One")})
	require.NoError(t, err)
	assert.Equal(t, "Till One", renamed.Name)
	assert.Equal(t, "cashier", renamed.Role)

	require.NoError(t, svc.Delete(ctx, admin.ID, cashier.ID))
	gone, err := svc.Get(ctx, cashier.ID)
	require.NoError(t, err)
	assert.False(t, gone.IsActive)

	users, p, err := svc.List(ctx, "till", orm.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.EqualValues(t, 1, p.Total)
}

func TestAuthServiceLogin(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.db)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "till@shop.test", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "cashier", u.Role)
	assert.Equal(t, "User", u.Name)

	tok, err := svc.Login(ctx, LoginInput{Email: "TILL@shop.test", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Positive(t, tok.ExpiresIn)
	assert.Equal(t, u.ID, tok.User.ID)

	var ue *UnauthorizedError
	_, err = svc.Login(ctx, LoginInput{Email: "till@shop.test", Password: "wrong"})
	require.ErrorAs(t, err, &ue)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@shop.test", Password: "hunter22"})
	require.ErrorAs(t, err, &ue)

	_, err = svc.Register(ctx, RegisterInput{Email: "till@shop.test", Password: "another"})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	require.NoError(t, e.db.Model(u).Update("is_active", false).Error)
	_, err = svc.Login(ctx, LoginInput{Email: "till@shop.test", Password: "hunter22"})
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Account is deactivated", ue.Msg)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "till@shop.test", me.Email)
}
