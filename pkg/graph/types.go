package graph

import (
	"fmt"
	"strconv"
)

// Key identifies a node in the unified person/group key space.
// Positive keys are persons, negative keys are groups.
type Key int64

// PersonKey returns the key for VK user id.
func PersonKey(id int64) Key { return Key(id) }

// GroupKey returns the key for VK group id. The sign of id is ignored:
// the result is always negative (or zero for id 0).
func GroupKey(id int64) Key {
	if id < 0 {
		id = -id
	}
	return Key(-id)
}

// IsGroup reports whether k refers to a group.
func (k Key) IsGroup() bool { return k < 0 }

// SourceID returns the positive id the API assigned to the person or group.
func (k Key) SourceID() int64 {
	if k < 0 {
		return int64(-k)
	}
	return int64(k)
}

func (k Key) String() string { return strconv.FormatInt(int64(k), 10) }

// Identity is a person node. Attributes are advisory and never take part
// in equality; only Key does.
type Identity struct {
	Key      Key    `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Handle   string `json:"screen_name" bson:"screen_name"`
	Sex      int    `json:"sex" bson:"sex"`
	HomeTown string `json:"home_town" bson:"home_town"`
}

// Group is a community node. Key is always negative.
type Group struct {
	Key    Key    `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Handle string `json:"screen_name" bson:"screen_name"`
}

// Relation is the type of a directed edge.
type Relation string

// Relation types.
const (
	// Follow points from a follower to the person being followed.
	Follow Relation = "Follow"
	// Subscribe points from a person to a person or group they subscribe to.
	Subscribe Relation = "Subscribe"
)

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool { return r == Follow || r == Subscribe }

// Edge is a directed, typed relation between two keys.
type Edge struct {
	From     Key      `json:"from" bson:"from"`
	To       Key      `json:"to" bson:"to"`
	Relation Relation `json:"relation" bson:"relation"`
}

// ID returns a stable identifier for the edge, used as a primary key by
// document and relational stores.
func (e Edge) ID() string {
	return fmt.Sprintf("%d:%s:%d", e.From, e.Relation, e.To)
}
