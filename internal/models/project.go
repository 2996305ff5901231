package models

import "time"

// Project is the stored result of a successful generation run
type Project struct {
	ID             string      `json:"id" bson:"_id"`
	Name           string      `json:"name" bson:"name"`
	Tagline        string      `json:"tagline,omitempty" bson:"tagline,omitempty"`
	Summary        string      `json:"summary,omitempty" bson:"summary,omitempty"`
	LaunchChannels []string    `json:"launchChannels,omitempty" bson:"launchChannels,omitempty"`
	ResearchNotes  string      `json:"researchNotes,omitempty" bson:"researchNotes,omitempty"`
	ArchivePath    string      `json:"archivePath,omitempty" bson:"archivePath,omitempty"`
	ArchiveURL     string      `json:"archiveUrl,omitempty" bson:"archiveUrl,omitempty"`
	FileCount      int         `json:"fileCount" bson:"fileCount"`
	Deployment     *Deployment `json:"deployment,omitempty" bson:"deployment,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
}

// ResearchBrief is what the competitor-research collaborator returns
type ResearchBrief struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
}

// GeneratedApp is the parsed output of the code-generation collaborator:
// a project name, marketing copy, and a mapping of relative path -> content
type GeneratedApp struct {
	Name           string            `json:"name"`
	Tagline        string            `json:"tagline,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	LaunchChannels []string          `json:"launchChannels,omitempty"`
	Files          map[string]string `json:"files"`
}

// ArchiveInfo describes a packaged project archive
type ArchiveInfo struct {
	Path      string `json:"path"`
	ObjectKey string `json:"objectKey,omitempty"`
	URL       string `json:"url,omitempty"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Deployment is the result of handing a package to a hosting provider
type Deployment struct {
	Provider  string `json:"provider"`
	ServiceID string `json:"serviceId"`
	URL       string `json:"url"`
}

// BrandingAsset is a generated logo image or promo video
type BrandingAsset struct {
	URL  string `json:"url"`
	Seed int64  `json:"seed,omitempty"`
	NSFW bool   `json:"nsfw"`
}
