package domain

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// ModelParameters is one sampled instance of the recovery dynamics model.
type ModelParameters struct {
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	C          float64 `json:"c"`
	NoiseScale float64 `json:"noise_scale"`
	SigSlope   float64 `json:"sig_slope"`
	SigOffset  float64 `json:"sig_offset"`
	ErrorScale float64 `json:"error_scale"`
}

const (
	DefaultParamA          = 0.7
	DefaultParamB          = 0.15
	DefaultParamC          = 1.8
	DefaultParamNoiseScale = 0.3
	DefaultParamSigSlope   = 0.2
	DefaultParamSigOffset  = -3.0
	DefaultParamErrorScale = 0.1
)

func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		A:          DefaultParamA,
		B:          DefaultParamB,
		C:          DefaultParamC,
		NoiseScale: DefaultParamNoiseScale,
		SigSlope:   DefaultParamSigSlope,
		SigOffset:  DefaultParamSigOffset,
		ErrorScale: DefaultParamErrorScale,
	}
}

// legacy aliases used by older model exports
var paramAliases = map[string]string{
	"alpha": "a",
	"beta":  "b",
	"gamma": "c",
}

// NormalizeParams maps a loosely shaped parameter object onto ModelParameters.
// Both the canonical keys and the alpha/beta/gamma naming are accepted; missing or
// non-finite values keep their defaults. Unknown keys are ignored.
func NormalizeParams(raw map[string]float64) ModelParameters {
	p := DefaultModelParameters()
	if len(raw) == 0 {
		return p
	}

	canonical := make(map[string]float64, len(raw))
	for k, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if alias, ok := paramAliases[k]; ok {
			// canonical key wins if both are present
			if _, exists := raw[alias]; exists {
				continue
			}
			k = alias
		}
		canonical[k] = v
	}

	for k, v := range canonical {
		switch k {
		case "a":
			p.A = v
		case "b":
			p.B = v
		case "c":
			p.C = v
		case "noise_scale":
			p.NoiseScale = v
		case "sig_slope":
			p.SigSlope = v
		case "sig_offset":
			p.SigOffset = v
		case "error_scale":
			p.ErrorScale = v
		}
	}

	return p
}

// ModelParamSet is one stored iteration of a patient's parameters.
type ModelParamSet struct {
	ID        uint                                `gorm:"primaryKey" json:"id"`
	PatientID string                              `gorm:"column:patient_id;index;not null" json:"patient_id"`
	ModelID   string                              `gorm:"column:model_id;not null" json:"model_id"`
	Iteration int                                 `gorm:"column:iteration;not null" json:"iteration"`
	Params    datatypes.JSONType[ModelParameters] `gorm:"column:params;type:jsonb" json:"params"`
	CreatedAt time.Time                           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ModelParamSet) TableName() string {
	return "model_param_sets"
}

func NewModelParamSet(patientID, modelID string, iteration int, params ModelParameters) ModelParamSet {
	return ModelParamSet{
		PatientID: patientID,
		ModelID:   modelID,
		Iteration: iteration,
		Params:    datatypes.NewJSONType(params),
	}
}
