package domain

import "fmt"

type CustomerType string

const (
	CustomerTypeStandard CustomerType = "Standard"
	CustomerTypePremium  CustomerType = "Premium"
)

// ParseCustomerType accepts the canonical names; an empty string means Standard.
func ParseCustomerType(s string) (CustomerType, error) {
	switch CustomerType(s) {
	case "", CustomerTypeStandard:
		return CustomerTypeStandard, nil
	case CustomerTypePremium:
		return CustomerTypePremium, nil
	default:
		return "", fmt.Errorf("customerType[%s] is not valid", s)
	}
}

type ShippingMethod string

const (
	ShippingMethodStandard ShippingMethod = "Standard"
	ShippingMethodExpress  ShippingMethod = "Express"
)

func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch ShippingMethod(s) {
	case "", ShippingMethodStandard:
		return ShippingMethodStandard, nil
	case ShippingMethodExpress:
		return ShippingMethodExpress, nil
	default:
		return "", fmt.Errorf("shippingMethod[%s] is not valid", s)
	}
}
