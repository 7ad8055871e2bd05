package cashier

import (
	"context"
	"errors"
	"strings"

	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/google/uuid"
)

func (s *Service) CreateCustomer(ctx context.Context, in validate.CustomerInput) (*Customer, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	c := &Customer{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Email:     strings.ToLower(in.Email),
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.InsertCustomer(ctx, c); err != nil {
		return nil, internal(err, "cannot create customer")
	}
	return c, nil
}

func (s *Service) CreateEmployee(ctx context.Context, in validate.EmployeeInput) (*Employee, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	e := &Employee{
		ID:        uuid.New(),
		BranchID:  in.BranchID,
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.InsertEmployee(ctx, e); err != nil {
		return nil, internal(err, "cannot create employee")
	}
	return e, nil
}

func (s *Service) CreateInventoryItem(ctx context.Context, in validate.InventoryItemInput) (*InventoryItem, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	item := &InventoryItem{
		ID:           uuid.New(),
		BranchID:     in.BranchID,
		Name:         strings.TrimSpace(in.Name),
		Unit:         in.Unit,
		Quantity:     in.Quantity,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.InsertInventoryItem(ctx, item); err != nil {
		return nil, internal(err, "cannot create inventory item")
	}
	return item, nil
}

func (s *Service) CreateVoucher(ctx context.Context, in validate.VoucherInput) (*Voucher, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	v := &Voucher{
		ID:         uuid.New(),
		Code:       strings.TrimSpace(in.Code),
		Kind:       in.Kind,
		Value:      in.Value,
		UsageLimit: in.UsageLimit,
		ValidFrom:  in.ValidFrom,
		ValidUntil: in.ValidUntil,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.InsertVoucher(ctx, v); err != nil {
		if errors.Is(err, ErrDuplicateVoucher) {
			return nil, apperr.New(apperr.Conflict, "DuplicateVoucherCode", "voucher code already exists")
		}
		return nil, internal(err, "cannot create voucher")
	}
	return v, nil
}

func (s *Service) CreateTable(ctx context.Context, in validate.TableInput) (*Table, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	t := &Table{
		ID:        uuid.New(),
		Number:    strings.TrimSpace(in.Number),
		Status:    TableAvailable,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.store.InsertTable(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateTable) {
			return nil, apperr.New(apperr.Conflict, "DuplicateTableNumber", "table number already exists")
		}
		return nil, internal(err, "cannot create table")
	}
	return t, nil
}
