package abtest

// Reporter forwards assignment and tracking signals to an analytics
// backend. The framework never consults return values and isolates
// reporter failures from its callers, so implementations are free to be
// fire-and-forget.
type Reporter interface {
	Assignment(testID, variantID string)
	Event(testID, variantID, name string, value *float64)
	Conversion(testID, variantID string, value *float64)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Assignment(testID, variantID string)                  {}
func (NopReporter) Event(testID, variantID, name string, value *float64) {}
func (NopReporter) Conversion(testID, variantID string, value *float64)  {}
