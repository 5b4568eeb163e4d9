package realtime

import (
	"errors"
	"strconv"
	"strings"
)

// Channel names used with the broadcast transport:
//
//	chat.<idA>.<idB>  private direct-message channel; every direct message
//	                  is broadcast to both id orderings
//	group.<groupId>   private group channel
const (
	KindDirect = "chat"
	KindGroup  = "group"
)

var ErrBadChannel = errors.New("malformed channel name")

type Channel struct {
	Kind  string
	A, B  int64 // direct participants, Kind == KindDirect
	Group int64 // group id, Kind == KindGroup
}

func DirectChannel(a, b int64) string {
	return KindDirect + "." + strconv.FormatInt(a, 10) + "." + strconv.FormatInt(b, 10)
}

func GroupChannel(groupID int64) string {
	return KindGroup + "." + strconv.FormatInt(groupID, 10)
}

func ParseChannel(name string) (Channel, error) {
	parts := strings.Split(name, ".")

	switch {
	case len(parts) == 3 && parts[0] == KindDirect:
		a, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Channel{}, ErrBadChannel
		}
		b, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Channel{}, ErrBadChannel
		}
		return Channel{Kind: KindDirect, A: a, B: b}, nil

	case len(parts) == 2 && parts[0] == KindGroup:
		g, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Channel{}, ErrBadChannel
		}
		return Channel{Kind: KindGroup, Group: g}, nil
	}

	return Channel{}, ErrBadChannel
}

func (c Channel) String() string {
	if c.Kind == KindGroup {
		return GroupChannel(c.Group)
	}
	return DirectChannel(c.A, c.B)
}
