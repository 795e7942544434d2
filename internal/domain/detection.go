package domain

// AnomalyState is the outcome of one anomaly check.
type AnomalyState string

const (
	AnomalyOK       AnomalyState = "OK"
	AnomalyDetected AnomalyState = "Anomaly Detected"
)

// Anomalies are four independent binary indicators produced alongside a classification.
type Anomalies struct {
	Oversized AnomalyState `json:"oversized"`
	Damaged   AnomalyState `json:"damaged"`
	Obscene   AnomalyState `json:"obscene"`
	Sensitive AnomalyState `json:"sensitive"`
}

// AnomaliesFor derives the flags a given category implies.
// Obscene content is also flagged as sensitive.
func AnomaliesFor(c Category) Anomalies {
	flag := func(hit bool) AnomalyState {
		if hit {
			return AnomalyDetected
		}
		return AnomalyOK
	}
	return Anomalies{
		Oversized: flag(c == CategoryOversized),
		Damaged:   flag(c == CategoryDamaged),
		Obscene:   flag(c == CategoryObscene),
		Sensitive: flag(c == CategoryObscene),
	}
}

// BoundingBox locates the billboard inside the analysed image, in pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectionResult is what a classifier returns for one image.
type DetectionResult struct {
	Category    Category     `json:"type"`
	Confidence  int          `json:"confidence"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
	Violations  []string     `json:"violations"`
	Anomalies   Anomalies    `json:"anomaly_details"`
	OCRText     string       `json:"ocr_text"`
}

// Authorized is true when the billboard carries no violation.
func (d DetectionResult) Authorized() bool {
	return d.Category == CategoryLegal
}
