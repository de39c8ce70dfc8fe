package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueType enum
type IssueType string

const (
	Pothole     IssueType = "POTHOLE"
	Streetlight IssueType = "STREETLIGHT"
	Garbage     IssueType = "GARBAGE"
	TrafficSign IssueType = "TRAFFIC_SIGN"
	Sidewalk    IssueType = "SIDEWALK"
	Other       IssueType = "OTHER"
)

// ReportStatus enum
type ReportStatus string

const (
	StatusOpen       ReportStatus = "OPEN"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusResolved   ReportStatus = "RESOLVED"
	StatusRejected   ReportStatus = "REJECTED"
)

// IssueTypes lists every known issue type, in display order.
var IssueTypes = []IssueType{Pothole, Streetlight, Garbage, TrafficSign, Sidewalk, Other}

// ReportStatuses lists every report status.
var ReportStatuses = []ReportStatus{StatusOpen, StatusInProgress, StatusResolved, StatusRejected}

// ValidIssueType reports whether s names a known issue type.
func ValidIssueType(s string) bool {
	switch IssueType(s) {
	case Pothole, Streetlight, Garbage, TrafficSign, Sidewalk, Other:
		return true
	}
	return false
}

// ValidStatus reports whether s names a known report status.
func ValidStatus(s string) bool {
	switch ReportStatus(s) {
	case StatusOpen, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

var (
	// ErrForbidden rejects status changes from non-city-hall actors.
	ErrForbidden = errors.New("only city hall accounts may change report status")
	// ErrStatusUnchanged rejects a transition to the current status.
	ErrStatusUnchanged = errors.New("status unchanged")
	// ErrInvalidTransition rejects any edge outside the transition table.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// AuthorizeTransition decides whether an actor with the given role may move
// a report from one status to another. Role is checked first, then the
// transition table; a nil return means the change is allowed.
func AuthorizeTransition(role UserRole, from, to ReportStatus) error {
	if role != CityHall {
		return ErrForbidden
	}
	if from == to {
		return ErrStatusUnchanged
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// CanTransition reports whether a report may move from one status to
// another. RESOLVED and REJECTED are terminal; a transition to the current
// status is never allowed.
func CanTransition(from, to ReportStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusResolved || to == StatusRejected
	case StatusInProgress:
		return to == StatusResolved || to == StatusRejected
	}
	return false
}

// Comment is embedded in a Report. Author fields are a snapshot taken at
// post time so historical comments keep their display name and role.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	UserRole  UserRole           `bson:"userRole" json:"userRole"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Report represents a citizen-submitted municipal issue
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type        IssueType          `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Location    Location           `bson:"location" json:"location"`
	Photos      []string           `bson:"photos" json:"photos"`
	Status      ReportStatus       `bson:"status" json:"status"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Votes       int64              `bson:"votes" json:"votes"`
	Views       int64              `bson:"views" json:"views"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
