package purchase

// MergeBilling overlays incoming billing details onto current ones without
// ever replacing a previously captured non-empty field with an empty one.
// Provider payloads can be partial; a blank field in the incoming payload
// must not mask billing info captured by an earlier delivery.
func MergeBilling(current, incoming Billing) Billing {
	merged := current
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if !incoming.Address.IsZero() {
		merged.Address = incoming.Address
	}
	return merged
}
