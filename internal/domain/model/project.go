package model

import "time"

// Project is a client engagement owned by a single profile.
type Project struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
	Clients   []Client
	Contacts  []Contact
}

// Client is a person the project is delivered for. Email is optional.
type Client struct {
	ID        string
	ProjectID string
	Name      string
	Email     string
}

// Contact is any other party on a project (contractor, supplier, architect).
// Email is optional.
type Contact struct {
	ID        string
	ProjectID string
	Name      string
	Role      string
	Email     string
}

// EmailAddresses returns the non-empty addresses of the project's clients
// followed by those of its contacts, in stored order.
func (p Project) EmailAddresses() []string {
	addrs := make([]string, 0, len(p.Clients)+len(p.Contacts))
	for _, c := range p.Clients {
		if c.Email != "" {
			addrs = append(addrs, c.Email)
		}
	}
	for _, c := range p.Contacts {
		if c.Email != "" {
			addrs = append(addrs, c.Email)
		}
	}
	return addrs
}
