package vk

import (
	"strings"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// userFields is the field list requested from users.get.
const userFields = "screen_name,first_name,last_name,sex,home_town,city"

// Subscription item types returned by users.getSubscriptions with extended=1.
const (
	TypeProfile = "profile"
	TypeGroup   = "group"
)

// User is a users.get result.
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ScreenName  string `json:"screen_name,omitempty"`
	Sex         int    `json:"sex,omitempty"`
	HomeTown    string `json:"home_town,omitempty"`
	City        *City  `json:"city,omitempty"`
	Deactivated string `json:"deactivated,omitempty"`
}

// City is the city object embedded in a user.
type City struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Identity converts u to a graph node. Name is "first last"; the home town
// falls back to the city title.
func (u User) Identity() graph.Identity {
	town := u.HomeTown
	if town == "" && u.City != nil {
		town = u.City.Title
	}
	return graph.Identity{
		Key:      graph.PersonKey(u.ID),
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Handle:   u.ScreenName,
		Sex:      u.Sex,
		HomeTown: town,
	}
}

// Group is a community from a subscription list. ID is the positive id
// assigned by VK.
type Group struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// Node converts g to a graph node with a negated key.
func (g Group) Node() graph.Group {
	return graph.Group{
		Key:    graph.GroupKey(g.ID),
		Name:   g.Name,
		Handle: g.ScreenName,
	}
}

// SubscriptionItem is one entry of an extended subscription list. Profile
// items carry user fields, group items carry community fields.
type SubscriptionItem struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`
	ScreenName string `json:"screen_name,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// Kind returns the lower-cased item type.
func (s SubscriptionItem) Kind() string { return strings.ToLower(s.Type) }

// Group converts a group item to a [Group].
func (s SubscriptionItem) Group() Group {
	return Group{ID: s.ID, Name: s.Name, ScreenName: s.ScreenName}
}

// page is the {count, items} envelope of paginated methods.
type page[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}
