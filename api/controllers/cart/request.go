package cart

// AddItemRequest adds one line. Size is matched by name against the
// product's sizes. A missing quantity means one.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitnil,gte=1,lte=99"`
	Size      string `json:"size,omitempty" validate:"max=64"`
	Flavor    string `json:"flavor,omitempty" validate:"max=64"`
	Notes     string `json:"notes,omitempty" validate:"max=280"`
}

const defaultAddQuantity = 1

func (req AddItemRequest) quantity() int {
	if req.Quantity == nil {
		return defaultAddQuantity
	}
	return *req.Quantity
}

// UpdateItemRequest sets a line's quantity; zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=99"`
}
