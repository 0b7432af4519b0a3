package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ScheduleRecommended = "recommended"
	ScheduleManual      = "manual"
)

// Prediction is the output of the recommended (analytic-ensemble) schedule.
type Prediction struct {
	Mean   []float64 `json:"meanPrediction"`
	Lower  []float64 `json:"minPrediction"`
	Upper  []float64 `json:"maxPrediction"`
	Dosage []float64 `json:"dosage"`
}

// ManualPrediction is the output of evaluating a user-entered schedule.
type ManualPrediction struct {
	Median []float64 `json:"meanPrediction"`
	Lower  []float64 `json:"minPrediction"`
	Upper  []float64 `json:"maxPrediction"`
	Dosage []float64 `json:"dosage"`
}

// PredictionResult is a stored prediction for a patient.
type PredictionResult struct {
	ID            string                              `gorm:"column:id;primaryKey" json:"id"`
	PatientID     string                              `gorm:"column:patient_id;index;not null" json:"patient_id"`
	ScheduleType  string                              `gorm:"column:schedule_type;not null" json:"schedule_type"`
	LastParam     datatypes.JSONType[ModelParameters] `gorm:"column:last_param;type:jsonb" json:"last_param"`
	YInit         float64                             `gorm:"column:y_init" json:"y_init"`
	PastOutcomes  datatypes.JSONSlice[float64]        `gorm:"column:past_outcomes;type:jsonb" json:"past_outcomes"`
	PastActions   datatypes.JSONSlice[float64]        `gorm:"column:past_actions;type:jsonb" json:"past_actions"`
	FutureActions datatypes.JSONSlice[float64]        `gorm:"column:future_actions;type:jsonb" json:"future_actions,omitempty"`
	Mean          datatypes.JSONSlice[float64]        `gorm:"column:mean;type:jsonb" json:"meanPrediction"`
	Lower         datatypes.JSONSlice[float64]        `gorm:"column:lower;type:jsonb" json:"minPrediction"`
	Upper         datatypes.JSONSlice[float64]        `gorm:"column:upper;type:jsonb" json:"maxPrediction"`
	Dosage        datatypes.JSONSlice[float64]        `gorm:"column:dosage;type:jsonb" json:"dosage"`
	CreatedAt     time.Time                           `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
}

func (PredictionResult) TableName() string {
	return "prediction_results"
}

// AsPrediction converts a stored recommended result back to a Prediction.
func (r PredictionResult) AsPrediction() Prediction {
	return Prediction{
		Mean:   []float64(r.Mean),
		Lower:  []float64(r.Lower),
		Upper:  []float64(r.Upper),
		Dosage: []float64(r.Dosage),
	}
}

// PredictionResults groups the latest result of each schedule type.
type PredictionResults struct {
	Recommended *PredictionResult `json:"recommended,omitempty"`
	Manual      *PredictionResult `json:"manual,omitempty"`
}
