package enums

// HolderLocation describes where a key or document currently sits.
type HolderLocation string

const (
	HolderLocationDealership HolderLocation = "dealership"
	HolderLocationDelivered  HolderLocation = "delivered"
)

func (h HolderLocation) String() string {
	return string(h)
}
