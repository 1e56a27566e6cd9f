package model

import "time"

// Profile is a studio user. Projects and the mailbox credential are owned by
// a profile; Email is the identity supplied by the upstream auth proxy.
type Profile struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
