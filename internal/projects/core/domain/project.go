package domain

// Project is the tenant read model. Lifecycle management lives elsewhere;
// this service only resolves API keys to projects and reads the
// retention-window attribute that the expiry job consumes.
type Project struct {
	ProjectID     string `json:"project_id"`
	Name          string `json:"name"`
	APIKey        string `json:"api_key"`
	RetentionDays int    `json:"retention_days"`
}
