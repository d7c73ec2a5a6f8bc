package core

import "github.com/valter-silva-au/autospark/pkg/models"

// Direction is the way Move shifts a task.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection converts user input ("up"/"down") into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Up:
		return Up, true
	case Down:
		return Down, true
	}
	return "", false
}

// TaskStore is the ordered, mutable sequence of tasks owned by the editing
// layer. It has no side effects beyond its own memory: it never writes files
// or triggers compilation.
type TaskStore interface {
	Add(kind models.Kind, primary, secondary string)
	GetAll() []models.Task
	ReplaceAll(tasks []models.Task)
	Delete(index int) bool
	Move(index int, dir Direction) bool
	Clear()
	IsEmpty() bool
	Count() int
	// Revision increases with every successful mutation.
	Revision() uint64
}

type memoryTaskStore struct {
	tasks    []models.Task
	revision uint64
}

// NewTaskStore creates an empty in-memory TaskStore.
func NewTaskStore() TaskStore {
	return &memoryTaskStore{}
}

func (s *memoryTaskStore) Add(kind models.Kind, primary, secondary string) {
	s.tasks = append(s.tasks, models.Task{Kind: kind, Primary: primary, Secondary: secondary})
	s.revision++
}

func (s *memoryTaskStore) GetAll() []models.Task {
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *memoryTaskStore) ReplaceAll(tasks []models.Task) {
	next := make([]models.Task, len(tasks))
	copy(next, tasks)
	s.tasks = next
	s.revision++
}

func (s *memoryTaskStore) Delete(index int) bool {
	if index < 0 || index >= len(s.tasks) {
		return false
	}
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.revision++
	return true
}

func (s *memoryTaskStore) Move(index int, dir Direction) bool {
	if index < 0 || index >= len(s.tasks) {
		return false
	}
	var other int
	switch dir {
	case Up:
		other = index - 1
	case Down:
		other = index + 1
	default:
		return false
	}
	if other < 0 || other >= len(s.tasks) {
		return false
	}
	s.tasks[index], s.tasks[other] = s.tasks[other], s.tasks[index]
	s.revision++
	return true
}

func (s *memoryTaskStore) Clear() {
	s.tasks = nil
	s.revision++
}

func (s *memoryTaskStore) IsEmpty() bool {
	return len(s.tasks) == 0
}

func (s *memoryTaskStore) Count() int {
	return len(s.tasks)
}

func (s *memoryTaskStore) Revision() uint64 {
	return s.revision
}
