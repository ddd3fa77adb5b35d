package schema

import "fmt"

// Project is the owning row for a synced document tree. Feature natural
// keys are scoped to a project so multiple roots can share one database.
type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RootPath string `json:"root_path"`
}

// Validate checks if the Project has valid field values.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.RootPath == "" {
		return fmt.Errorf("root_path is required")
	}
	return nil
}
