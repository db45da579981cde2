package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Work order numbers follow WO<year>-<NNNN>, e.g. "WO2025-0001". The sequence
// restarts at 1 each calendar year and is capped at 9999 (4-digit field).
const maxYearSequence = 9999

func yearPrefix(year int) string {
	return fmt.Sprintf("WO%d-", year)
}

func formatWorkOrderNumber(year, seq int) string {
	return fmt.Sprintf("WO%d-%04d", year, seq)
}

// parseSequence extracts the numeric sequence from a year-prefixed work order
// number. Returns 0 for anything that does not match the prefix.
func parseSequence(number, prefix string) int {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok {
		return 0
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

// nextWorkOrderNumber computes the next free number for the year. Must run
// inside the same transaction as the insert; on postgres the read takes a row
// lock, and the unique index on work_order_number is the final backstop for
// two creations racing past each other.
func nextWorkOrderNumber(tx *gorm.DB, year int) (string, error) {
	prefix := yearPrefix(year)
	q := tx.Model(&model.WorkOrder{}).
		Where("work_order_number LIKE ?", prefix+"%").
		Order("work_order_number DESC").
		Limit(1)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var last struct {
		WorkOrderNumber string
	}
	seq := 0
	err := q.Select("work_order_number").Take(&last).Error
	switch {
	case err == nil:
		seq = parseSequence(last.WorkOrderNumber, prefix)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first order of the year
	default:
		return "", err
	}
	if seq >= maxYearSequence {
		return "", errs.ErrCapacityExceeded
	}
	return formatWorkOrderNumber(year, seq+1), nil
}

// createWorkOrderTx assigns the number and inserts wo within tx.
func createWorkOrderTx(tx *gorm.DB, wo *model.WorkOrder, year int) error {
	number, err := nextWorkOrderNumber(tx, year)
	if err != nil {
		return err
	}
	wo.WorkOrderNumber = number
	return tx.Create(wo).Error
}
