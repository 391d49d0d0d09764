package timeline

// Features describe one open injury for return-time prediction.
type Features struct {
	BodyPart         string
	Position         string
	Severity         int
	TotalInjuryCount int
	RecurrenceCount  int
	SeasonProgress   float64 // week / 18
}

// Predictor estimates recovery time in days with a confidence band.
type Predictor interface {
	Predict(f Features) (days, low, high float64, err error)
}
