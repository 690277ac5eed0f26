package order

import (
	"fmt"

	"routeplanner/internal/pkg/errs"
)

// LineItem is one ordered product and its quantity in units.
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int
}

func (l LineItem) validate() error {
	if l.ProductID == "" {
		return errs.NewValueIsRequiredError("item product id")
	}
	if l.Quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("item quantity",
			fmt.Errorf("%s: %d is not greater than 0", l.ProductID, l.Quantity))
	}
	return nil
}

// ReturnableAsset is the number of empty containers (kegs) of one type the
// driver is expected to collect from the client.
type ReturnableAsset struct {
	AssetType string
	Expected  int
}

func (r ReturnableAsset) validate() error {
	if r.AssetType == "" {
		return errs.NewValueIsRequiredError("returnable asset type")
	}
	if r.Expected < 0 {
		return errs.NewValueIsOutOfRangeError("returnable expected", r.Expected, 0, "unbounded")
	}
	return nil
}

// DeliveredLine annotates an ordered product with the quantity actually handed over.
type DeliveredLine struct {
	ProductID string
	Ordered   int
	Delivered int
}

// CollectedAsset annotates a returnable type with the quantity actually collected.
type CollectedAsset struct {
	AssetType string
	Expected  int
	Counted   int
}

// DeliveryAnnotation is the final record written onto the order when its stop
// is confirmed.
type DeliveryAnnotation struct {
	Lines         []DeliveredLine
	Returnables   []CollectedAsset
	RecipientName string
	ProofRef      string
}
