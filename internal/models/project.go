package models

import (
	"time"

	"github.com/hashicorp/go-set/v3"
)

type ProjectStatus string

const (
	ProjectBacklog    ProjectStatus = "backlog"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectReview     ProjectStatus = "review"
	ProjectDone       ProjectStatus = "done"
)

var projectStatuses = set.From([]ProjectStatus{
	ProjectBacklog,
	ProjectInProgress,
	ProjectReview,
	ProjectDone,
})

func (s ProjectStatus) Valid() bool {
	return projectStatuses.Contains(s)
}

// Project is a board card. Status is the board column; Position orders
// cards within a column.
type Project struct {
	ID          uint `gorm:"primarykey"`
	CompanyID   uint `gorm:"index"`
	ClientID    *uint
	Name        string
	Description string
	Status      ProjectStatus
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
