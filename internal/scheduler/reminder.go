package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/mailer"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateSweeping
	StateStopped
)

const (
	// Tasks due reminderLookahead from now enter the acceptance window; the
	// window is one sweep interval wide so each hourly pass catches a task
	// exactly once.
	reminderLookahead = 12 * time.Hour
	reminderWindow    = time.Hour
	sweepInterval     = time.Hour
)

// ReminderScheduler periodically emails assignees about soon-due tasks. It
// alternates between Idle and Sweeping until stopped.
type ReminderScheduler struct {
	mailer   mailer.Mailer
	interval time.Duration

	mu    sync.Mutex
	state State

	ctx    context.Context
	cancel context.CancelFunc
}

func NewReminderScheduler(m mailer.Mailer) *ReminderScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReminderScheduler{
		mailer:   m,
		interval: sweepInterval,
		state:    StateStopped,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sweep loop with an immediate first pass. It refuses to
// start when the mail transport is unconfigured.
func (s *ReminderScheduler) Start() {
	if !s.mailer.Enabled() {
		log.Println("Mail transport not configured, reminder scheduler disabled")
		return
	}

	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.mu.Unlock()

	log.Println("Starting reminder scheduler...")

	go func() {
		s.Sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Stop shuts the sweep loop down. Safe to call more than once.
func (s *ReminderScheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		s.state = StateStopped
		log.Println("Reminder scheduler stopped")
	}
}

// State returns the scheduler's current lifecycle state.
func (s *ReminderScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sweep performs one reminder pass. A store failure abandons the pass until
// the next tick; a single failed delivery is logged and skipped without
// aborting the remaining candidates.
func (s *ReminderScheduler) Sweep() {
	s.mu.Lock()
	if s.state == StateStopped && s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.state = StateSweeping
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == StateSweeping {
			s.state = StateIdle
		}
		s.mu.Unlock()
	}()

	now := time.Now()
	windowStart := now.Add(reminderLookahead)
	windowEnd := windowStart.Add(reminderWindow)

	var tasks []models.Task

	err := db.DB.Preload("Assignee").Preload("Project").
		Where("assignee_id IS NOT NULL").
		Where("due_date IS NOT NULL").
		Where("reminder_sent_at IS NULL").
		Where("completed_at IS NULL").
		Where("status <> ?", models.TaskStatusDone).
		Where("due_date >= ? AND due_date < ?", windowStart, windowEnd).
		Find(&tasks).Error

	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		return
	}

	for _, task := range tasks {
		s.remind(task)
	}
}

func (s *ReminderScheduler) remind(task models.Task) {
	if task.Assignee == nil {
		log.Printf("Task %d has no loadable assignee, skipping reminder", task.ID)
		return
	}

	subject := fmt.Sprintf("Reminder: %q is due soon", task.Title)
	body := renderReminder(task)

	meta, _ := json.Marshal(map[string]interface{}{
		"due_date": task.DueDate,
		"project":  task.Project.Name,
	})

	entry := models.ReminderLog{
		TaskID:  task.ID,
		UserID:  *task.AssigneeID,
		Channel: "email",
		Message: subject,
		Meta:    meta,
	}

	if err := s.mailer.Send(task.Assignee.Email, subject, body); err != nil {
		log.Printf("Failed to send reminder for task %d: %v", task.ID, err)
		entry.Status = models.ReminderStatusFailed

		if dbErr := db.DB.Create(&entry).Error; dbErr != nil {
			log.Printf("Failed to record reminder failure for task %d: %v", task.ID, dbErr)
		}
		return
	}

	// The stamp is written after the send, not atomically with it: a crash
	// in between can duplicate a reminder. At-least-once is the contract.
	now := time.Now()

	if err := db.DB.Model(&models.Task{}).Where("id = ?", task.ID).Update("reminder_sent_at", now).Error; err != nil {
		log.Printf("Failed to stamp reminder for task %d: %v", task.ID, err)
	}

	entry.Status = models.ReminderStatusSent
	entry.SentAt = &now

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to record reminder for task %d: %v", task.ID, err)
	}
}

func renderReminder(task models.Task) string {
	due := "soon"

	if task.DueDate != nil {
		due = task.DueDate.Format("Mon, 02 Jan 2006 15:04 MST")
	}

	body := fmt.Sprintf("Hi %s,\n\nYour task %q", task.Assignee.Name, task.Title)

	if task.Project.Name != "" {
		body += fmt.Sprintf(" in project %q", task.Project.Name)
	}

	body += fmt.Sprintf(" is due %s.\n", due)

	if task.Description != "" {
		body += "\n" + task.Description + "\n"
	}

	return body
}
