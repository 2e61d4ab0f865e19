package inventory

import (
	"context"

	"github.com/stockia/stockia-api/internal/domain"
)

// ReconcileResult resultado de contrastar el contador de stock contra el ledger.
type ReconcileResult struct {
	ProductID string `json:"product_id"`
	Counter   int    `json:"counter"` // products.current_stock
	Ledger    int    `json:"ledger"`  // new_stock del último movimiento (0 sin movimientos)
}

// CurrentQuantity devuelve el stock actual del producto según el contador
// materializado. Refleja todo movimiento confirmado porque el contador se
// actualiza en la misma transacción que cada append.
func (s *MovementService) CurrentQuantity(ctx context.Context, productID string) (int, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrProductNotFound
	}
	return product.CurrentStock, nil
}

// ReconcileProduct contrasta el contador materializado contra el snapshot del
// último movimiento del ledger. Si difieren falla con ProjectionMismatchError:
// falla de integridad que se loggea y se expone, nunca se autocorrige. El
// llamador no debe confiar en el camino rápido del producto hasta resolverla.
func (s *MovementService) ReconcileProduct(ctx context.Context, productID string) (*ReconcileResult, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	ledger := 0
	if last, ok, err := s.movementRepo.LastSnapshot(productID); err != nil {
		return nil, err
	} else if ok {
		ledger = last
	}

	result := &ReconcileResult{
		ProductID: productID,
		Counter:   product.CurrentStock,
		Ledger:    ledger,
	}
	if product.CurrentStock != ledger {
		s.log.Error().
			Str("product_id", productID).
			Int("counter", product.CurrentStock).
			Int("ledger", ledger).
			Msg("inconsistencia entre stock materializado y ledger")
		return result, &domain.ProjectionMismatchError{
			ProductID: productID,
			Counter:   product.CurrentStock,
			Ledger:    ledger,
		}
	}
	return result, nil
}
