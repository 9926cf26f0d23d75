package allocation

// RequestInput contains data for filing a resource request.
type RequestInput struct {
	StageID      string
	ResourceName string
	Quantity     int
}
