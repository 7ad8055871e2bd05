package terminaltype

type Type struct {
	Name string
}

func (t Type) Code() string {
	return t.Name
}

type Enum struct {
	Cashier Type
	KDS     Type
	Kiosk   Type
	Waiter  Type
}

var Types = Enum{
	Cashier: Type{Name: "cashier"},
	KDS:     Type{Name: "kds"},
	Kiosk:   Type{Name: "kiosk"},
	Waiter:  Type{Name: "waiter"},
}

var All = []Type{
	Types.Cashier,
	Types.KDS,
	Types.Kiosk,
	Types.Waiter,
}

// ByName returns the terminal type for a given name, or nil if not found
func ByName(name string) *Type {
	for _, t := range All {
		if t.Name == name {
			return &t
		}
	}
	return nil
}
