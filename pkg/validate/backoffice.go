package validate

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (in CustomerInput) Validate() Errors {
	var errs Errors
	errs.required("name", in.Name)
	errs.maxLen("name", in.Name, 120)

	phone := strings.TrimPrefix(in.Phone, "+")
	switch {
	case in.Phone == "" && in.Email == "":
		errs.add("phone", "phone or email is required")
	case in.Phone != "" && (!isDigits(phone) || len(phone) < 8 || len(phone) > 15):
		errs.add("phone", "phone must contain 8 to 15 digits")
	}
	if in.Email != "" && (!strings.Contains(in.Email, "@") || strings.HasPrefix(in.Email, "@") || strings.HasSuffix(in.Email, "@")) {
		errs.add("email", "email is not a valid address")
	}
	return errs
}

var employeeRoles = []string{"cashier", "manager", "waiter", "kitchen"}

type EmployeeInput struct {
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	PIN      string    `json:"pin,omitempty"`
}

func (in EmployeeInput) Validate() Errors {
	var errs Errors
	if in.BranchID == uuid.Nil {
		errs.add("branch_id", "branch_id is required")
	}
	errs.required("name", in.Name)
	errs.maxLen("name", in.Name, 120)
	if !oneOf(in.Role, employeeRoles...) {
		errs.add("role", "role must be one of %s", strings.Join(employeeRoles, ", "))
	}
	if in.PIN != "" && (!isDigits(in.PIN) || len(in.PIN) < 4 || len(in.PIN) > 6) {
		errs.add("pin", "pin must be 4 to 6 digits")
	}
	return errs
}

var inventoryUnits = []string{"pcs", "g", "kg", "ml", "l"}

type InventoryItemInput struct {
	BranchID     uuid.UUID `json:"branch_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
}

func (in InventoryItemInput) Validate() Errors {
	var errs Errors
	if in.BranchID == uuid.Nil {
		errs.add("branch_id", "branch_id is required")
	}
	errs.required("name", in.Name)
	if !oneOf(in.Unit, inventoryUnits...) {
		errs.add("unit", "unit must be one of %s", strings.Join(inventoryUnits, ", "))
	}
	errs.nonNegative("quantity", in.Quantity)
	errs.nonNegative("reorder_level", in.ReorderLevel)
	return errs
}

const (
	VoucherPercent = "percent"
	VoucherFixed   = "fixed"
)

type VoucherInput struct {
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	UsageLimit int        `json:"usage_limit"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

func (in VoucherInput) Validate() Errors {
	var errs Errors
	code := strings.TrimSpace(in.Code)
	switch {
	case code == "":
		errs.add("code", "code is required")
	case len(code) < 3 || len(code) > 32:
		errs.add("code", "code must be 3 to 32 characters")
	case strings.ToUpper(code) != code || strings.ContainsAny(code, " \t"):
		errs.add("code", "code must be uppercase without spaces")
	}

	switch in.Kind {
	case VoucherPercent:
		if in.Value < 1 || in.Value > 100 {
			errs.add("value", "percent value must be between 1 and 100")
		}
	case VoucherFixed:
		if in.Value <= 0 {
			errs.add("value", "fixed value must be positive")
		}
	default:
		errs.add("kind", "kind must be percent or fixed")
	}

	if in.UsageLimit < 0 {
		errs.add("usage_limit", "usage_limit cannot be negative")
	}
	if in.ValidFrom != nil && in.ValidUntil != nil && !in.ValidUntil.After(*in.ValidFrom) {
		errs.add("valid_until", "valid_until must be after valid_from")
	}
	return errs
}

type TableInput struct {
	Number string `json:"number"`
}

func (in TableInput) Validate() Errors {
	var errs Errors
	errs.required("number", in.Number)
	errs.maxLen("number", in.Number, 16)
	return errs
}
