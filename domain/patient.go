package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Patient struct {
	ID               string                       `gorm:"column:id;primaryKey" json:"id"`
	Name             string                       `gorm:"column:name;not null" json:"name"`
	Budget           float64                      `gorm:"column:budget" json:"budget"`
	MaxDose          float64                      `gorm:"column:max_dose" json:"maxDose"`
	Age              int                          `gorm:"column:age" json:"age"`
	WeeksSinceStroke int                          `gorm:"column:weeks_since_stroke" json:"weeksSinceStroke"`
	LeftStroke       bool                         `gorm:"column:left_stroke" json:"leftStroke"`
	Male             bool                         `gorm:"column:male" json:"male"`
	Horizon          int                          `gorm:"column:horizon" json:"horizon"`
	Past             bool                         `gorm:"column:past" json:"past"`
	Outcomes         datatypes.JSONSlice[float64] `gorm:"column:outcomes;type:jsonb" json:"outcomes"`
	Actions          datatypes.JSONSlice[float64] `gorm:"column:actions;type:jsonb" json:"actions"`
	BayesianAlias    string                       `gorm:"column:bayesian_alias" json:"-"`
	BayesianURI      string                       `gorm:"column:bayesian_uri" json:"-"`
	SGLDAlias        string                       `gorm:"column:sgld_alias" json:"-"`
	SGLDURI          string                       `gorm:"column:sgld_uri" json:"-"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// LastOutcome is the most recent observed MAL score, or 0 without history.
func (p Patient) LastOutcome() float64 {
	if len(p.Outcomes) == 0 {
		return 0
	}
	return p.Outcomes[len(p.Outcomes)-1]
}

// ModelAlias builds "<id>_Patient_<Name_With_Underscores>_<kind>_version_<n>".
func ModelAlias(id, name, kind string, version int) string {
	return fmt.Sprintf("%s_Patient_%s_%s_version_%d", id, strings.Join(strings.Fields(name), "_"), kind, version)
}

// NextAliasVersion returns the alias with its trailing version number incremented.
// Aliases without a parsable version get "_version_2" appended.
func NextAliasVersion(alias string) string {
	idx := strings.LastIndex(alias, "_version_")
	if idx < 0 {
		return alias + "_version_2"
	}
	var v int
	if _, err := fmt.Sscanf(alias[idx+len("_version_"):], "%d", &v); err != nil {
		return alias + "_version_2"
	}
	return fmt.Sprintf("%s_version_%d", alias[:idx], v+1)
}
