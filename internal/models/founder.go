package models

// FounderProfile is a roster entry used as a candidate for co-founder matching
type FounderProfile struct {
	Name        string    `json:"name"`
	Skills      []string  `json:"skills"`
	Goals       string    `json:"goals"`
	Personality string    `json:"personality"`
	Experience  string    `json:"experience,omitempty"`
	Embedding   []float32 `json:"-"`
}

// Match is one ranked co-founder candidate returned to the caller
type Match struct {
	Name          string   `json:"name"`
	Compatibility int      `json:"compatibility"`
	SharedSkills  []string `json:"sharedSkills"`
	Summary       string   `json:"summary"`
}
