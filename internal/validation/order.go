package validation

// MissingOrderFields returns the human-readable names of required
// order fields that are absent, in a stable order.
func MissingOrderFields(name, city, state string, productID uint, totalPrice int64) []string {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if city == "" {
		missing = append(missing, "city")
	}
	if state == "" {
		missing = append(missing, "state")
	}
	if productID == 0 {
		missing = append(missing, "product id")
	}
	if totalPrice == 0 {
		missing = append(missing, "total price")
	}
	return missing
}
