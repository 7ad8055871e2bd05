package paymentmethod

type Method struct {
	Name string
}

func (m Method) Code() string {
	return m.Name
}

// IsGateway reports whether payments of this method settle through the external gateway.
func (m Method) IsGateway() bool {
	return m.Name != Methods.Cash.Name
}

type Enum struct {
	Cash     Method
	Card     Method
	QRIS     Method
	Transfer Method
}

var Methods = Enum{
	Cash:     Method{Name: "cash"},
	Card:     Method{Name: "card"},
	QRIS:     Method{Name: "qris"},
	Transfer: Method{Name: "transfer"},
}

var All = []Method{
	Methods.Cash,
	Methods.Card,
	Methods.QRIS,
	Methods.Transfer,
}

// ByName returns the payment method for a given name, or nil if not found
func ByName(name string) *Method {
	for _, m := range All {
		if m.Name == name {
			return &m
		}
	}
	return nil
}
