package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks cross-field constraints that normalize cannot repair.
func (c *Config) Validate() error {
	var problems []string

	for i, group := range c.Groups {
		if group.Dir == "" {
			problems = append(problems, fmt.Sprintf("groups[%d]: dir is required", i))
		}
		if group.CollectorsCSV == "" {
			problems = append(problems, fmt.Sprintf("groups[%d]: collectors_csv is required", i))
		}
		if group.Category == "" {
			problems = append(problems, fmt.Sprintf("groups[%d]: category is required", i))
		}
	}

	switch c.Identity.AccessRecord {
	case "public", "restricted":
	default:
		problems = append(problems, fmt.Sprintf("identity.access_record: unsupported value %q", c.Identity.AccessRecord))
	}
	switch c.Identity.AccessFiles {
	case "public", "restricted":
	default:
		problems = append(problems, fmt.Sprintf("identity.access_files: unsupported value %q", c.Identity.AccessFiles))
	}

	for i, person := range c.Identity.Creators {
		if err := validatePerson(person); err != nil {
			problems = append(problems, fmt.Sprintf("identity.creators[%d]: %v", i, err))
		}
	}
	for i, person := range c.Identity.Contributors {
		if err := validatePerson(person); err != nil {
			problems = append(problems, fmt.Sprintf("identity.contributors[%d]: %v", i, err))
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validatePerson(p Person) error {
	switch p.Type {
	case "personal":
		if strings.TrimSpace(p.FamilyName) == "" {
			return errors.New("family_name is required for personal entries")
		}
	case "organizational":
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("name is required for organizational entries")
		}
	default:
		return fmt.Errorf("type must be personal or organizational, got %q", p.Type)
	}
	return nil
}
