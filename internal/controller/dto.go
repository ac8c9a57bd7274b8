package controller

import (
	"time"

	"github.com/tutorly-app/scheduler/internal/schedule"
)

type createBookingRequest struct {
	TutorID     int64         `json:"tutor_id" binding:"required"`
	StudentID   int64         `json:"student_id" binding:"required"`
	CreatorID   int64         `json:"creator_id" binding:"required"`
	CreatorRole schedule.Role `json:"creator_role" binding:"required"`
	StartTime   time.Time     `json:"start_time" binding:"required"`
	EndTime     time.Time     `json:"end_time" binding:"required"`
	Description string        `json:"description"`
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type createNoteRequest struct {
	CreatorID   int64     `json:"creator_id" binding:"required"`
	TutorIDs    []int64   `json:"tutor_ids" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Description string    `json:"description"`
}

// calendarQuery covers the shared ?role=&id=&from=&to= query shape of the
// list and availability endpoints.
type calendarQuery struct {
	Role schedule.Role `form:"role" binding:"required"`
	ID   int64         `form:"id" binding:"required"`
	From time.Time     `form:"from" binding:"required"`
	To   time.Time     `form:"to" binding:"required"`
}
