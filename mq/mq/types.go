package mq

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Action int

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionDelete
	ActionCnt
)

var actionNames = [ActionCnt]string{"create", "update", "delete"}

func (a Action) String() string {
	if a < 0 || a >= ActionCnt {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

func (a Action) MarshalText() ([]byte, error) {
	if a < 0 || a >= ActionCnt {
		return nil, fmt.Errorf("unknown action %d", int(a))
	}
	return []byte(actionNames[a]), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	for i, name := range actionNames {
		if name == string(b) {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", b)
}

// Entity names the kind of row a change touched.
type Entity string

const (
	EntityTrip        Entity = "trip"
	EntityTransaction Entity = "transaction"
	EntityRecurring   Entity = "recurring"
	EntityCategory    Entity = "category"
)

// TripChangeMessage announces that something under a trip changed.
// Changes lists the changed field paths for updates.
type TripChangeMessage struct {
	TripID   uuid.UUID `json:"tripId"`
	Entity   Entity    `json:"entity"`
	Action   Action    `json:"action"`
	EntityID uuid.UUID `json:"entityId"`
	Changes  []string  `json:"changes,omitempty"`
	At       time.Time `json:"at"`
}

func (m TripChangeMessage) GetTopic() uuid.UUID {
	return m.TripID
}

// RoutingKey is trip.<tripID>.<entity>.<action>.
func (m TripChangeMessage) RoutingKey() string {
	return fmt.Sprintf("trip.%s.%s.%s", m.TripID, m.Entity, m.Action)
}
