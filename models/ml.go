package models

// PredictRequest is the body sent to the inference service's /predict endpoint.
type PredictRequest struct {
	Features  []float64 `json:"features"`
	DeviceID  string    `json:"deviceId"`
	Timestamp int64     `json:"timestamp"`
}

// PredictResponse mirrors the inference service's MLOutput schema.
type PredictResponse struct {
	FreshnessPrediction float64            `json:"freshness_prediction"`
	ShelfLifeHours      float64            `json:"shelf_life_hours"`
	Confidence          float64            `json:"confidence"`
	ModelAccuracy       float64            `json:"model_accuracy"`
	PredictionLabel     string             `json:"prediction_label"`
	FeatureImportance   map[string]float64 `json:"feature_importance,omitempty"`
}
