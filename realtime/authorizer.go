package realtime

import (
	"errors"
	"fmt"
)

// ErrGroupNotFound is returned when a subscription names a group channel
// whose group does not exist. The caller must treat it as a denial.
var ErrGroupNotFound = errors.New("group not found")

// MembershipStore is the slice of the persistence layer the authorizer
// needs. *store.Store satisfies it.
type MembershipStore interface {
	GroupExists(id int64) (bool, error)
	IsMember(groupID, userID int64) (bool, error)
}

// Authorizer decides whether a user may subscribe to a channel. It is pure
// given persisted state and is invoked once per subscription attempt, not
// once per event.
type Authorizer struct {
	groups MembershipStore
}

func NewAuthorizer(groups MembershipStore) *Authorizer {
	return &Authorizer{groups: groups}
}

// Authorize reports whether userID may subscribe to ch.
//
// Direct channels allow a user whose id appears in either position; the two
// symmetric names of a conversation therefore both authorize both
// participants. Group channels require current membership and fail closed
// with ErrGroupNotFound when the group does not exist.
func (a *Authorizer) Authorize(userID int64, ch Channel) (bool, error) {
	switch ch.Kind {
	case KindDirect:
		return userID == ch.A || userID == ch.B, nil

	case KindGroup:
		exists, err := a.groups.GroupExists(ch.Group)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("channel %s: %w", ch, ErrGroupNotFound)
		}
		return a.groups.IsMember(ch.Group, userID)
	}

	return false, ErrBadChannel
}
