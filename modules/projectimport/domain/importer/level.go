package importer

import (
	"strings"

	"github.com/google/uuid"
)

// EntityType names a persisted table. The set is closed; table names are
// never derived from user input.
type EntityType string

const (
	EntityClients     EntityType = "clients"
	EntityPrograms    EntityType = "programs"
	EntityProjects    EntityType = "projects"
	EntityUsecases    EntityType = "usecases"
	EntityUserstories EntityType = "userstories"
	EntityTasks       EntityType = "tasks"
	EntitySubtasks    EntityType = "subtasks"
	EntityUsers       EntityType = "users"
)

// Level is one sheet of the import hierarchy, in strict parent-to-child order.
type Level int

const (
	LevelProject Level = iota
	LevelUsecase
	LevelUserstory
	LevelTask
	LevelSubtask
)

// Levels returns the hierarchy in dependency order. Later levels reference
// the Excel-local ids registered by earlier ones, so the order is fixed.
func Levels() []Level {
	return []Level{LevelProject, LevelUsecase, LevelUserstory, LevelTask, LevelSubtask}
}

func (l Level) EntityType() EntityType {
	switch l {
	case LevelProject:
		return EntityProjects
	case LevelUsecase:
		return EntityUsecases
	case LevelUserstory:
		return EntityUserstories
	case LevelTask:
		return EntityTasks
	case LevelSubtask:
		return EntitySubtasks
	}
	return ""
}

// SheetName is the canonical workbook sheet for this level.
func (l Level) SheetName() string {
	switch l {
	case LevelProject:
		return "Projects"
	case LevelUsecase:
		return "Usecases"
	case LevelUserstory:
		return "Userstories"
	case LevelTask:
		return "Tasks"
	case LevelSubtask:
		return "Subtasks"
	}
	return ""
}

// SheetAliases lists accepted spellings of the sheet name, matched after
// normalization (lower-case, spaces and underscores stripped).
func (l Level) SheetAliases() []string {
	switch l {
	case LevelUsecase:
		return []string{"Use Cases"}
	case LevelUserstory:
		return []string{"User Stories", "Stories"}
	}
	return nil
}

// Singular names the level in row-scoped messages.
func (l Level) Singular() string {
	switch l {
	case LevelProject:
		return "project"
	case LevelUsecase:
		return "usecase"
	case LevelUserstory:
		return "userstory"
	case LevelTask:
		return "task"
	case LevelSubtask:
		return "subtask"
	}
	return ""
}

// Parent returns the level whose Excel-local ids this level references.
// The second value is false for the top of the hierarchy.
func (l Level) Parent() (Level, bool) {
	if l == LevelProject {
		return 0, false
	}
	return l - 1, true
}

// ParentColumn is the foreign-key column the resolved parent id lands in.
func (l Level) ParentColumn() string {
	switch l {
	case LevelUsecase:
		return "project_id"
	case LevelUserstory:
		return "usecase_id"
	case LevelTask:
		return "userstory_id"
	case LevelSubtask:
		return "task_id"
	}
	return ""
}

// OwnerColumn is the user foreign-key column for this level.
func (l Level) OwnerColumn() string {
	switch l {
	case LevelProject, LevelUsecase:
		return "owner_id"
	default:
		return "assignee_id"
	}
}

var idPrefixes = map[EntityType]string{
	EntityClients:     "CLI",
	EntityPrograms:    "PRG",
	EntityProjects:    "PRJ",
	EntityUsecases:    "UC",
	EntityUserstories: "US",
	EntityTasks:       "TSK",
	EntitySubtasks:    "SUB",
	EntityUsers:       "USR",
}

// NewEntityID generates a short string identifier for a new record,
// e.g. "PRJ-1a2b3c4d".
func NewEntityID(entity EntityType) string {
	prefix, ok := idPrefixes[entity]
	if !ok {
		prefix = "ENT"
	}
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + raw[:8]
}
