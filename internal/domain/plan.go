package domain

import (
	"time"
)

type PlanType string

const (
	PlanPremium  PlanType = "PREMIUM"
	PlanStandard PlanType = "STANDAR"
	PlanBasic    PlanType = "BASIC"
)

// Plan is a coach-owned pricing tier trainees subscribe to.
type Plan struct {
	ID            string          `bson:"_id,omitempty" json:"_id"`
	Coach         string          `bson:"coach" json:"coach" binding:"required"`
	Type          PlanType        `bson:"type" json:"type" binding:"required"`
	MonthlyPrice  float64         `bson:"monthlyPrice" json:"monthlyPrice"`
	TestLocations []LocationPoint `bson:"testLocations" json:"testLocations,omitempty"`
	RegistryDate  time.Time       `bson:"registryDate,omitempty" json:"registryDate"`
	LastModified  time.Time       `bson:"lastModified,omitempty" json:"lastModified"`
}
