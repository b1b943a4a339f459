package quantops

import (
	"context"
	"time"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReconcileNegative extingue deuda pendiente con el quant positivo recién
// llegado a una ubicación interna.
//
// Busca quants negativos del mismo producto/dueño/paquete en la ubicación del
// quant (y sus sububicaciones), priorizando deuda del mismo lote sobre deuda
// sin lote, del más antiguo al más reciente. Por cada negativo con quants
// "sombra" (los positivos creados en su momento al otro extremo del
// movimiento que generó la deuda, enlazados vía PropagatedFrom):
//
//  1. Bloquea las sombras en orden ascendente de id (orden fijo de bloqueo
//     para evitar deadlocks entre reconciliaciones concurrentes).
//  2. Parte sombras, quant entrante y negativo a la cantidad a resolver.
//  3. Re-precia las sombras con el costo del quant entrante (propaga el costo
//     real de adquisición hacia atrás) y les fusiona su historial.
//  4. Reapunta los remanentes: sombras sin resolver hacia el negativo
//     remanente, sombras resueltas hacia la deuda propia del quant entrante
//     si la hubiera (deuda encadenada).
//  5. Elimina el negativo y el quant entrante consumido; los remanentes
//     siguen como filas separadas para la siguiente iteración.
//
// Nunca falla por ausencia de coincidencias: sin deuda que extinguir, el
// quant entrante queda como stock nuevo ordinario.
func (m *Mutator) ReconcileNegative(
	ctx context.Context,
	quants repository.QuantRepository,
	locations repository.LocationRepository,
	q *entity.Quant,
	move *entity.Move,
) error {
	if q == nil || !q.Quantity.IsPositive() {
		return nil
	}

	subtree, err := locations.SubtreeIDs(ctx, q.LocationID)
	if err != nil {
		return err
	}

	base := repository.QuantFilter{
		CompanyID:   q.CompanyID,
		ProductID:   q.ProductID,
		LocationIDs: subtree,
		PackageID:   q.PackageID,
		OwnerID:     q.OwnerID,
		Negative:    true,
	}
	if q.PropagatedFromID != "" {
		// La deuda que el propio quant compensa no se reconcilia consigo misma.
		base.ExcludeIDs = []string{q.PropagatedFromID}
	}

	// Deuda del mismo lote antes que deuda sin lote; sin lote entrante, toda
	// deuda del grupo califica.
	passes := []repository.QuantFilter{base}
	if q.LotID != "" {
		withLot := base
		withLot.LotID = q.LotID
		noLot := base
		noLot.LotUnset = true
		passes = []repository.QuantFilter{withLot, noLot}
	}

	oldestFirst := removal.Order{}
	solving := q

	for _, f := range passes {
		for solving != nil {
			candidates, err := quants.FindForUpdate(ctx, f, oldestFirst, pageSizeReconcile, 0)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				break
			}
			progressed := false
			for _, neg := range candidates {
				if solving == nil {
					break
				}
				solved, remaining, err := m.solveNegative(ctx, quants, solving, neg, move)
				if err != nil {
					return err
				}
				solving = remaining
				progressed = progressed || solved
			}
			if !progressed {
				// Solo quedaba deuda sin sombras localizables: nada más que hacer
				// en esta pasada.
				break
			}
			f.ExcludeIDs = appendExcluded(f.ExcludeIDs, candidates)
		}
	}
	return nil
}

// pageSizeReconcile página de candidatos negativos por iteración.
const pageSizeReconcile = 50

// solveNegative extingue min(solving, |neg|) entre el quant entrante y un
// negativo concreto. Devuelve si hubo resolución y el remanente del quant
// entrante (nil si se consumió entero).
func (m *Mutator) solveNegative(
	ctx context.Context,
	quants repository.QuantRepository,
	solving, neg *entity.Quant,
	move *entity.Move,
) (bool, *entity.Quant, error) {
	qtyNeeded := decimal.Min(solving.Quantity, neg.Quantity.Neg())
	if !qtyNeeded.IsPositive() {
		return false, solving, nil
	}

	// Sombras de la deuda, bloqueadas en orden ascendente de id.
	shadows, err := quants.FindPropagatedFrom(ctx, neg.ID, nil)
	if err != nil {
		return false, solving, err
	}
	if len(shadows) == 0 {
		// Deuda huérfana (sombra ya consumida por otra vía): se deja como está.
		return false, solving, nil
	}

	solvingQty := qtyNeeded
	var solvedIDs []string
	var solved []*entity.Quant
	for _, shadow := range shadows {
		if !solvingQty.IsPositive() {
			break
		}
		take := decimal.Min(solvingQty, shadow.Quantity)
		if !take.IsPositive() {
			continue
		}
		if _, err := m.Split(ctx, quants, shadow, take); err != nil {
			return false, solving, err
		}
		solvedIDs = append(solvedIDs, shadow.ID)
		solved = append(solved, shadow)
		solvingQty = solvingQty.Sub(take)
	}

	remainingSolving, err := m.Split(ctx, quants, solving, qtyNeeded)
	if err != nil {
		return false, solving, err
	}
	remainingNeg, err := m.Split(ctx, quants, neg, qtyNeeded.Neg())
	if err != nil {
		return false, solving, err
	}

	// Reconciliación parcial: las sombras aún sin resolver pasan a apuntar al
	// negativo remanente para que una llegada futura pueda encontrarlas.
	if remainingNeg != nil {
		rest, err := quants.FindPropagatedFrom(ctx, neg.ID, solvedIDs)
		if err != nil {
			return false, solving, err
		}
		if len(rest) > 0 {
			restIDs := make([]string, len(rest))
			for i, r := range rest {
				restIDs[i] = r.ID
			}
			if err := quants.SetPropagatedFrom(ctx, restIDs, remainingNeg.ID); err != nil {
				return false, solving, err
			}
		}
	}

	// Las sombras resueltas heredan la deuda propia del quant entrante
	// (cadenas de deuda) o quedan sin origen si no la hay.
	if len(solvedIDs) > 0 {
		if err := quants.SetPropagatedFrom(ctx, solvedIDs, solving.PropagatedFromID); err != nil {
			return false, solving, err
		}
	}

	// Costo real de adquisición hacia atrás + fusión de historial.
	now := time.Now()
	for _, shadow := range solved {
		shadow.Cost = solving.Cost
		shadow.PropagatedFromID = solving.PropagatedFromID
		shadow.UpdatedAt = now
		if err := quants.Update(ctx, shadow); err != nil {
			return false, solving, err
		}
		if len(solving.History) > 0 {
			if err := quants.AddHistory(ctx, shadow.ID, solving.History); err != nil {
				return false, solving, err
			}
		}
	}

	if err := quants.Delete(ctx, neg.ID, solving.ID); err != nil {
		return false, solving, err
	}

	m.log.Debug().
		Str("producto", solving.ProductID).
		Str("ubicacion", solving.LocationID).
		Str("resuelto", qtyNeeded.String()).
		Bool("deuda_remanente", remainingNeg != nil).
		Msg("negativo reconciliado")
	return true, remainingSolving, nil
}

func appendExcluded(ids []string, quants []*entity.Quant) []string {
	for _, q := range quants {
		ids = append(ids, q.ID)
	}
	return ids
}
