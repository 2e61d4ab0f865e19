package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockia/stockia-api/internal/application/inventory"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
	"github.com/stockia/stockia-api/pkg/logger"
)

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testUserID    = "22222222-2222-2222-2222-222222222222"
)

type testEnv struct {
	svc      *inventory.MovementService
	products *memProductRepo
	users    *memUserRepo
	ledger   *memMovementRepo
}

func newTestEnv(t *testing.T, initialStock int) *testEnv {
	t.Helper()
	products := newMemProductRepo(&entity.Product{
		ID:           testProductID,
		Name:         "Café molido 500g",
		Price:        decimal.NewFromInt(12000),
		CurrentStock: initialStock,
		IsAvailable:  true,
	})
	users := newMemUserRepo(&entity.User{
		ID:     testUserID,
		Email:  "empleado@stockia.test",
		Name:   "Empleado de prueba",
		Role:   entity.RoleEmpleado,
		Status: "active",
	})
	ledger := newMemMovementRepo()
	locks := inventory.NewProductLocks(time.Second)
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	txRunner := &fakeTxRunner{movRepo: ledger, productRepo: products}
	svc := inventory.NewMovementService(txRunner, products, users, ledger, locks, log)
	return &testEnv{svc: svc, products: products, users: users, ledger: ledger}
}

func cost(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de movimientos: IN, OUT, ADJUSTMENT
// ──────────────────────────────────────────────────────────────────────────────

// Entrada de 20 unidades seguida de salida de 5: el ledger conserva ambos
// snapshots (20 y 15) y el contador queda en 15.
func TestRegisterMovement_EntradaYSalida(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	in, err := env.svc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeIN,
		Quantity:     20,
		Reason:       "compra a proveedor",
		PurchaseCost: cost(5.50),
		UserID:       testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, in.NewStock)

	out, err := env.svc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeOUT,
		Quantity:     5,
		UserID:       testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, out.NewStock)

	assert.Equal(t, 15, env.products.stockOf(testProductID),
		"el contador materializado debe seguir al ledger")

	movs := env.ledger.all()
	require.Len(t, movs, 2)
	assert.Equal(t, 20, movs[0].NewStock)
	assert.Equal(t, 15, movs[1].NewStock)
	assert.Less(t, movs[0].Seq, movs[1].Seq, "la secuencia debe ser creciente")
}

func TestRegisterMovement_AjusteFijaStockAbsoluto(t *testing.T) {
	env := newTestEnv(t, 37)
	ctx := context.Background()

	mov, err := env.svc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeADJUSTMENT,
		Quantity:     12,
		Reason:       "conteo físico",
		UserID:       testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, mov.NewStock, "ADJUSTMENT fija el stock, no lo suma")
	assert.Equal(t, 12, env.products.stockOf(testProductID))
}

func TestRegisterMovement_AjusteACeroEsValido(t *testing.T) {
	env := newTestEnv(t, 8)

	mov, err := env.svc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeADJUSTMENT,
		Quantity:     0,
		UserID:       testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mov.NewStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos: un movimiento rechazado no deja rastro en el ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_SalidaSobreStock(t *testing.T) {
	env := newTestEnv(t, 3)

	_, err := env.svc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeOUT,
		Quantity:     10,
		UserID:       testUserID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)

	assert.Equal(t, 0, env.ledger.count(), "un rechazo no escribe en el ledger")
	assert.Equal(t, 3, env.products.stockOf(testProductID), "el stock no cambia")
}

func TestRegisterMovement_ValidacionesDeBorrador(t *testing.T) {
	cases := []struct {
		name    string
		in      inventory.MovementInput
		wantErr error
	}{
		{
			name: "cantidad cero en IN",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: entity.MovementTypeIN,
				Quantity: 0, PurchaseCost: cost(5), UserID: testUserID,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "cantidad negativa en OUT",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: entity.MovementTypeOUT,
				Quantity: -4, UserID: testUserID,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "ajuste negativo",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: entity.MovementTypeADJUSTMENT,
				Quantity: -1, UserID: testUserID,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "IN sin costo de compra",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: entity.MovementTypeIN,
				Quantity: 5, UserID: testUserID,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "OUT con costo de compra",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: entity.MovementTypeOUT,
				Quantity: 5, PurchaseCost: cost(5), UserID: testUserID,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "tipo desconocido",
			in: inventory.MovementInput{
				ProductID: testProductID, MovementType: "TRANSFER",
				Quantity: 5, UserID: testUserID,
			},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, 50)
			_, err := env.svc.RegisterMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 0, env.ledger.count())
			assert.Equal(t, 50, env.products.stockOf(testProductID))
		})
	}
}

func TestRegisterMovement_ProductoInexistente(t *testing.T) {
	env := newTestEnv(t, 10)
	_, err := env.svc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID:    "99999999-9999-9999-9999-999999999999",
		MovementType: entity.MovementTypeIN,
		Quantity:     5,
		PurchaseCost: cost(3),
		UserID:       testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRegisterMovement_UsuarioInexistente(t *testing.T) {
	env := newTestEnv(t, 10)
	_, err := env.svc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeOUT,
		Quantity:     1,
		UserID:       "no-existe",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta del historial
// ──────────────────────────────────────────────────────────────────────────────

func TestSearchMovements_FiltraPorTipo(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.RegisterMovement(ctx, inventory.MovementInput{
			ProductID: testProductID, MovementType: entity.MovementTypeIN,
			Quantity: 10, PurchaseCost: cost(2), UserID: testUserID,
		})
		require.NoError(t, err)
	}
	_, err := env.svc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: testProductID, MovementType: entity.MovementTypeOUT,
		Quantity: 5, UserID: testUserID,
	})
	require.NoError(t, err)

	outs, err := env.svc.SearchMovements(ctx, repository.MovementFilter{
		ProductID:    testProductID,
		MovementType: entity.MovementTypeOUT,
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, 25, outs[0].NewStock)

	all, err := env.svc.SearchMovements(ctx, repository.MovementFilter{ProductID: testProductID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, entity.MovementTypeOUT, all[0].MovementType, "más recientes primero")
}

func TestSearchMovements_TipoInvalido(t *testing.T) {
	env := newTestEnv(t, 0)
	_, err := env.svc.SearchMovements(context.Background(), repository.MovementFilter{
		MovementType: "SALE",
	}, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCurrentQuantity(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	qty, err := env.svc.CurrentQuantity(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)

	_, err = env.svc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: testProductID, MovementType: entity.MovementTypeIN,
		Quantity: 7, PurchaseCost: cost(1), UserID: testUserID,
	})
	require.NoError(t, err)

	qty, err = env.svc.CurrentQuantity(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, 7, qty)

	_, err = env.svc.CurrentQuantity(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
