package domain

import (
	"time"
)

// Training is a scheduled session of a trainee with a coach. TrainingBlocks
// stores the ordered ids of the blocks it is made of, not the blocks themselves.
type Training struct {
	ID             string     `bson:"_id" json:"_id"`
	Type           string     `bson:"type" json:"type"`
	Coach          string     `bson:"coach" json:"coach"`
	User           string     `bson:"user" json:"user"`
	Date           *time.Time `bson:"date" json:"date,omitempty"`
	MaxDate        *time.Time `bson:"maxDate" json:"maxDate,omitempty"`
	Description    string     `bson:"description" json:"description,omitempty"`
	TrainingBlocks []string   `bson:"trainingBlocks" json:"trainingBlocks"`
	Completed      bool       `bson:"completed" json:"completed"`
	RegistryDate   time.Time  `bson:"registryDate" json:"registryDate"`
	LastModified   time.Time  `bson:"lastModified" json:"lastModified"`
}

// TrainingInput is the write model of a Training. An empty ID creates a new
// training; Completed stays false on creation unless it is given explicitly.
type TrainingInput struct {
	ID             string     `bson:"_id,omitempty" json:"_id,omitempty"`
	Type           string     `bson:"type" json:"type" binding:"required"`
	Coach          string     `bson:"coach" json:"coach" binding:"required"`
	User           string     `bson:"user" json:"user" binding:"required"`
	Date           *time.Time `bson:"date" json:"date,omitempty"`
	MaxDate        *time.Time `bson:"maxDate" json:"maxDate,omitempty"`
	Description    string     `bson:"description" json:"description,omitempty"`
	TrainingBlocks []string   `bson:"trainingBlocks" json:"trainingBlocks"`
	Completed      *bool      `bson:"completed,omitempty" json:"completed,omitempty"`
}

// TrainingWithBlocks is a Training whose block ids have been replaced by the
// block documents they point to.
type TrainingWithBlocks struct {
	Training
	TrainingBlocks []TrainingBlock `json:"trainingBlocks"`
}

// TrainingBlock is one planned exercise segment, optionally carrying the
// sensor samples recorded while it was performed.
type TrainingBlock struct {
	ID           string         `bson:"_id,omitempty" json:"_id"`
	Coach        string         `bson:"coach" json:"coach" binding:"required"`
	Description  string         `bson:"description" json:"description,omitempty"`
	Distance     *int           `bson:"distance" json:"distance,omitempty"`
	Duration     *int           `bson:"duration" json:"duration,omitempty"`
	MaxHR        *int           `bson:"maxHR" json:"maxHR,omitempty"`
	MinHR        *int           `bson:"minHR" json:"minHR,omitempty"`
	MaxSpeed     *float64       `bson:"maxSpeed" json:"maxSpeed,omitempty"`
	MinSpeed     *float64       `bson:"minSpeed" json:"minSpeed,omitempty"`
	Altitude     *float64       `bson:"altitude" json:"altitude,omitempty"`
	Schema       *bool          `bson:"schema" json:"schema,omitempty"`
	Result       []ResultSample `bson:"result" json:"result"`
	RegistryDate time.Time      `bson:"registryDate,omitempty" json:"registryDate"`
	LastModified time.Time      `bson:"lastModified,omitempty" json:"lastModified"`
}

// ResultSample is a single timestamped sensor reading.
type ResultSample struct {
	Date     time.Time     `bson:"date" json:"date" binding:"required"`
	Distance float64       `bson:"distance" json:"distance"`
	Coords   LocationPoint `bson:"coords" json:"coords"`
	Altitude float64       `bson:"altitude" json:"altitude"`
	HR       float64       `bson:"HR" json:"HR"`
	Course   float64       `bson:"course" json:"course"`
	Speed    float64       `bson:"speed" json:"speed"`
	Gyro     XYZ           `bson:"gyro" json:"gyro"`
	Accel    XYZ           `bson:"accel" json:"accel"`
	Magn     XYZ           `bson:"magn" json:"magn"`
}

// LocationPoint is a GeoJSON-style point.
type LocationPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

type XYZ struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
	Z float64 `bson:"z" json:"z"`
}
