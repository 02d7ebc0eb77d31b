package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GeneCount is the fixed length of every biomorph gene vector.
const GeneCount = 9

// Gene bounds, inclusive. Mutations clamp here, never wrap.
const (
	GeneMin = -10
	GeneMax = 10
)

// Gene vector indices. The position of each gene is fixed; the phenotype
// mapping and the fitness policies both address genes by these indices.
const (
	GeneAngle     = 0
	GeneLength    = 1
	GeneWidth     = 2
	GeneDepth     = 3
	GeneDecay     = 4
	GeneAsymmetry = 5
	GeneHue       = 6
	GeneCurvature = 7
	GeneSplits    = 8
)

// Biomorph is one individual: the 9-gene vector plus identity, lineage and
// cached fitness metadata. Instances are never mutated in place; every
// mutation produces a brand-new record.
type Biomorph struct {
	VersionedRecord
	ID         string         `json:"id"`
	Genes      [GeneCount]int `json:"genes"`
	Generation int            `json:"generation"`
	ParentID   string         `json:"parent_id,omitempty"`
	Fitness    float64        `json:"fitness"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
}

// LineageRecord is the persisted form of one ancestry step.
type LineageRecord struct {
	VersionedRecord
	BiomorphID string  `json:"biomorph_id"`
	ParentID   string  `json:"parent_id,omitempty"`
	Generation int     `json:"generation"`
	Operation  string  `json:"operation"`
	Fitness    float64 `json:"fitness"`
}

// RunRecord summarizes one finished auto-evolution run.
type RunRecord struct {
	VersionedRecord
	ID            string    `json:"id"`
	Policy        string    `json:"policy"`
	Mode          string    `json:"mode"`
	Steps         int       `json:"steps"`
	FinalFitness  float64   `json:"final_fitness"`
	FinalBiomorph Biomorph  `json:"final_biomorph"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	FinishedAt    time.Time `json:"finished_at,omitempty"`
}
