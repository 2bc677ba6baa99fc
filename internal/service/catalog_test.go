package service

import (
	"context"
	"testing"

	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/intent"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func product(id int64, name, price string, stock *int) domain.Product {
	return domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func TestCatalogService_Product(t *testing.T) {
	ctx := context.Background()

	t.Run("single with stock", func(t *testing.T) {
		store := new(MockCatalogStore)
		store.On("ProductsByName", mock.Anything, "Agua").Return([]domain.Product{product(1, "Agua", "0.8", intPtr(20))}, nil)

		reply, err := NewCatalogService(store).Product(ctx, "Agua")
		require.NoError(t, err)
		assert.Equal(t, "Claro, tenemos Agua\n A un precio de $0.80\n Disponemos de: 20 unidades"+textMiniAppReminder, reply.Text)
		assert.Equal(t, CallbackReturnOthers, reply.Buttons[0][0].Data)
	})

	t.Run("single without stock", func(t *testing.T) {
		store := new(MockCatalogStore)
		store.On("ProductsByName", mock.Anything, "Seco").Return([]domain.Product{product(2, "Seco de Pollo", "4.5", nil)}, nil)

		reply, err := NewCatalogService(store).Product(ctx, "Seco")
		require.NoError(t, err)
		assert.Equal(t, "Claro, tenemos Seco de Pollo\n A un precio de $4.50, pero recuerda estos no cuentan con un stock."+textMiniAppReminder, reply.Text)
	})

	t.Run("no match", func(t *testing.T) {
		store := new(MockCatalogStore)
		store.On("ProductsByName", mock.Anything, "Pizza").Return([]domain.Product{}, nil)

		reply, err := NewCatalogService(store).Product(ctx, "Pizza")
		require.NoError(t, err)
		assert.Equal(t, textNoProductByName, reply.Text)
	})
}

func TestCatalogService_Order(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		products []domain.Product
		quantity int
		want     string
	}{
		{
			name:     "enough stock",
			products: []domain.Product{product(1, "Pan", "0.2", intPtr(10))},
			quantity: 3,
			want:     "La cantidad del producto Pan es de 10 unidades. Con tu compra quedarían 7 unidades.",
		},
		{
			name:     "short stock",
			products: []domain.Product{product(1, "Pan", "0.2", intPtr(2))},
			quantity: 3,
			want:     "No hay suficientes unidades para el producto 'Pan'. Solo quedan 2 unidades.",
		},
		{
			name:     "untracked",
			products: []domain.Product{product(1, "Pan", "0.2", nil)},
			quantity: 3,
			want:     "El producto 'Pan' no tiene una cantidad asignada porque la categoría del producto no está considerada para tener un stock. Revise el menú para más información.",
		},
		{
			name: "several matches",
			products: []domain.Product{
				product(1, "Pan Blanco", "0.2", intPtr(10)),
				product(2, "Pan Integral", "0.3", intPtr(1)),
			},
			quantity: 2,
			want: "Encontramos 2 productos que coinciden con 'Pan':\n" +
				"- Pan Blanco: 10 unidades disponibles. Con tu compra quedarían 8 unidades.\n" +
				"- Pan Integral: Solo quedan 1 unidades. No hay suficientes unidades para tu pedido.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCatalogStore)
			store.On("ProductsByName", mock.Anything, "Pan").Return(tt.products, nil)

			reply, err := NewCatalogService(store).Order(ctx, "Pan", tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
		})
	}

	t.Run("zero quantity skips the store", func(t *testing.T) {
		store := new(MockCatalogStore)
		reply, err := NewCatalogService(store).Order(ctx, "Pan", 0)
		require.NoError(t, err)
		assert.Equal(t, textInvalidQuantity, reply.Text)
		store.AssertNotCalled(t, "ProductsByName", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_StockAndPrice(t *testing.T) {
	ctx := context.Background()
	store := new(MockCatalogStore)
	store.On("ProductsByName", mock.Anything, "Jugo").Return([]domain.Product{
		product(5, "Jugo de Naranja", "1.25", intPtr(4)),
		product(6, "Jugo de Mora", "1.5", nil),
	}, nil)
	svc := NewCatalogService(store)

	stock, err := svc.Stock(ctx, "Jugo")
	require.NoError(t, err)
	assert.Equal(t, "Encontramos 2 productos que coinciden con 'Jugo':\n"+
		"- Jugo de Naranja: 4 unidades disponibles.\n"+
		"- Jugo de Mora: "+textStockUntrackedLine+"\n", stock.Text)

	price, err := svc.Price(ctx, "Jugo")
	require.NoError(t, err)
	assert.Equal(t, "Encontramos 2 productos que coinciden con 'Jugo':\n- Jugo de Naranja: $1.25\n- Jugo de Mora: $1.50\n", price.Text)
}

func TestCatalogService_MostSold(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := new(MockCatalogStore)
		store.On("MostSoldByCategory", mock.Anything, config.CategorySnacks).
			Return(domain.ProductSales{Product: product(9, "Papas Fritas", "1", intPtr(30)), TotalQuantity: 42}, nil)

		reply, err := NewCatalogService(store).MostSold(ctx, intent.IntentMostSoldSnack)
		require.NoError(t, err)
		assert.Equal(t, "El snack más vendido es Papas Fritas con 42 ventas a un precio de $1.00.", reply.Text)
	})

	t.Run("no sales", func(t *testing.T) {
		store := new(MockCatalogStore)
		store.On("MostSoldByCategory", mock.Anything, config.CategoryDrinks).
			Return(domain.ProductSales{}, domain.ErrNotFound)

		reply, err := NewCatalogService(store).MostSold(ctx, intent.IntentMostSoldDrink)
		require.NoError(t, err)
		assert.Equal(t, "No se encontró información sobre la bebida más vendida.", reply.Text)
	})

	t.Run("unknown intent", func(t *testing.T) {
		_, err := NewCatalogService(new(MockCatalogStore)).MostSold(ctx, intent.IntentPrice)
		assert.Error(t, err)
	})
}

func TestCatalogService_RecommendMain(t *testing.T) {
	ctx := context.Background()
	store := new(MockCatalogStore)
	store.On("MostSoldByCategory", mock.Anything, config.CategoryStarters).
		Return(domain.ProductSales{Product: product(1, "Sopa de Quinua", "2", nil), TotalQuantity: 12}, nil)
	store.On("MostSoldByCategory", mock.Anything, config.CategorySeconds).
		Return(domain.ProductSales{Product: product(2, "Seco de Chivo", "5.5", nil), TotalQuantity: 9}, nil)

	reply, err := NewCatalogService(store).RecommendMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Te ofrecemos unos de nuestros almuerzos mas populares:\n"+
		"- Como entrada tenemos Sopa de Quinua con 12 ventas a un precio de $2.00.\n"+
		"- Y te ofrecemos de segundo: Seco de Chivo con 9 ventas a un precio de $5.50.", reply.Text)
}

func TestCatalogService_Lunch(t *testing.T) {
	ctx := context.Background()
	store := new(MockCatalogStore)
	store.On("CategoryByName", mock.Anything, config.CategoryNameStarters).Return(domain.Category{ID: 4, Name: "Entradas"}, nil)
	store.On("CategoryByName", mock.Anything, config.CategoryNameSeconds).Return(domain.Category{}, domain.ErrNotFound)
	store.On("ProductsByCategory", mock.Anything, int64(4)).Return([]domain.Product{product(1, "Sopa de Quinua", "2", nil)}, nil)

	reply, err := NewCatalogService(store).Lunch(ctx)
	require.NoError(t, err)
	assert.Equal(t, textLunchHeader, reply.Text)
	require.Len(t, reply.Buttons, 3)
	assert.Equal(t, "separator_sopas", reply.Buttons[0][0].Data)
	assert.Equal(t, "Sopa de Quinua - $2.00", reply.Buttons[1][0].Text)
	assert.Equal(t, CallbackReturnCategories, reply.Buttons[2][0].Data)
}

func TestCatalogService_BindingsCoverEveryAction(t *testing.T) {
	b := NewCatalogService(new(MockCatalogStore)).Bindings(SmallTalkReply("El Costeñito"))
	for _, in := range intent.DefaultCatalog.ActionIntents() {
		assert.Contains(t, b.Actions, in)
	}
}
