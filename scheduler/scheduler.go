package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Task is one recurring job. StartDelay defers the first run past process
// start so a concurrently starting dependency (the relational store) is
// ready.
type Task struct {
	Name        string
	Description string
	Every       time.Duration
	StartDelay  time.Duration
	Enabled     bool
	Handler     func() error
}

// SchedulerService manages all scheduled tasks. Tasks run on a single
// cooperative queue; a failing task is logged and never stops the scheduler
// itself.
type SchedulerService struct {
	scheduler       *gocron.Scheduler
	DB              *gorm.DB
	log             *logrus.Logger
	ctx             context.Context
	cancel          context.CancelFunc
	registeredTasks map[string]Task
	notionHost      string
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(DB *gorm.DB, log *logrus.Logger, notionHost string) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &SchedulerService{
		scheduler:       s,
		DB:              DB,
		log:             log,
		ctx:             ctx,
		cancel:          cancel,
		registeredTasks: make(map[string]Task),
		notionHost:      notionHost,
	}
}

// Start begins running the scheduler.
func (s *SchedulerService) Start() {
	s.log.Info("Starting scheduler service...")
	s.scheduler.StartAsync()
}

// Stop halts all scheduled jobs.
func (s *SchedulerService) Stop() {
	s.log.Info("Stopping scheduler service...")
	s.scheduler.Stop()
	s.cancel()
}

// RegisterTasks sets up all scheduled tasks.
func (s *SchedulerService) RegisterTasks() {
	s.registerTaskGroup(SyncTasks(s.DB, s.log, s.notionHost))
	s.log.Infof("Registered %d scheduled tasks", len(s.registeredTasks))
}

func (s *SchedulerService) registerTaskGroup(tasks []Task) {
	for _, task := range tasks {
		if !task.Enabled {
			s.log.Infof("Skipping disabled task: %s", task.Name)
			continue
		}
		s.registerTask(task)
	}
}

func (s *SchedulerService) registerTask(task Task) {
	s.registeredTasks[task.Name] = task

	job, err := s.scheduler.Every(task.Every).
		StartAt(time.Now().Add(task.StartDelay)).
		Do(func() {
			s.log.Infof("Running scheduled task: %s - %s", task.Name, task.Description)

			if err := task.Handler(); err != nil {
				s.log.Errorf("Error in task %s: %v", task.Name, err)
			} else {
				s.log.Infof("Task %s completed successfully", task.Name)
			}
		})
	if err != nil {
		s.log.Errorf("Error scheduling task %s: %v", task.Name, err)
		return
	}

	job.Tag(task.Name)

	s.log.Infof("Registered task: %s (every %s)", task.Name, task.Every)
}

// GetTaskByName returns a task by its name.
func (s *SchedulerService) GetTaskByName(name string) (Task, bool) {
	task, exists := s.registeredTasks[name]
	return task, exists
}

// ListTasks returns all registered tasks.
func (s *SchedulerService) ListTasks() []Task {
	tasks := make([]Task, 0, len(s.registeredTasks))
	for _, task := range s.registeredTasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// RunTaskNow runs a task immediately by name.
func (s *SchedulerService) RunTaskNow(name string) error {
	task, exists := s.registeredTasks[name]
	if !exists {
		return fmt.Errorf("task %s not found", name)
	}
	return task.Handler()
}
