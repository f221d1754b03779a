package chat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed provides the default contacts shown on first launch.
func Seed() []Contact {
	return []Contact{
		{ID: "alice", Name: "Alice", Online: true},
		{ID: "bob", Name: "Bob", Online: false},
		{ID: "charlie", Name: "Charlie", Online: true},
	}
}

type contactsFile struct {
	Contacts []Contact `yaml:"contacts"`
}

// LoadContacts reads seed contacts from a YAML file of the form
//
//	contacts:
//	  - id: alice
//	    name: Alice
//	    online: true
//
// Entries without a name are rejected; a missing id falls back to the
// lower-cased name.
func LoadContacts(path string) ([]Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}
	return ParseContacts(data)
}

// ParseContacts decodes the YAML contacts document used by LoadContacts.
func ParseContacts(data []byte) ([]Contact, error) {
	var file contactsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse contacts file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Contacts))
	contacts := make([]Contact, 0, len(file.Contacts))
	for i, c := range file.Contacts {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("contact #%d has no name", i+1)
		}
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			c.ID = strings.ToLower(strings.ReplaceAll(c.Name, " ", "-"))
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate contact id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		c.Messages = nil
		contacts = append(contacts, c)
	}
	return contacts, nil
}
