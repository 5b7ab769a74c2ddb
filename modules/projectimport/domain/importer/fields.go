package importer

// FieldSpec declares one recognized column of an entity sheet: its canonical
// name, accepted aliases, value kind, and the default applied when the column
// is missing or empty. Columns outside the per-level spec set are reported as
// unmapped, never persisted.
type FieldSpec struct {
	Name    string
	Aliases []string
	Kind    Kind
	Default string // applied as a string value; empty means null
}

func (s FieldSpec) matches(column string) bool {
	if column == s.Name {
		return true
	}
	for _, a := range s.Aliases {
		if column == a {
			return true
		}
	}
	return false
}

var fieldSpecs = map[Level][]FieldSpec{
	LevelProject: {
		{Name: FieldExcelID, Aliases: []string{"id", "project_id", "excel_id"}, Kind: KindString},
		{Name: "name", Aliases: []string{"project_name", "project", "title"}, Kind: KindString},
		{Name: FieldClientName, Aliases: []string{"client", "client_name", "customer"}, Kind: KindString},
		{Name: "short_description", Aliases: []string{"description", "descriptions", "summary"}, Kind: KindString},
		{Name: "status", Kind: KindString, Default: "Planning"},
		{Name: "priority", Kind: KindString, Default: "Medium"},
		{Name: "start_date", Aliases: []string{"start", "begin_date"}, Kind: KindDate},
		{Name: "end_date", Aliases: []string{"end", "finish_date"}, Kind: KindDate},
		{Name: "budget", Aliases: []string{"cost"}, Kind: KindFloat},
		{Name: "percent_complete", Aliases: []string{"progress", "completion", "complete"}, Kind: KindPercent},
		{Name: FieldOwner, Aliases: []string{"owner", "project_manager", "manager", "lead"}, Kind: KindString},
	},
	LevelUsecase: {
		{Name: FieldExcelID, Aliases: []string{"id", "usecase_id", "excel_id"}, Kind: KindString},
		{Name: FieldParentID, Aliases: []string{"project_id", "parent_project", "project"}, Kind: KindString},
		{Name: "name", Aliases: []string{"usecase_name", "use_case_name", "title"}, Kind: KindString},
		{Name: "description", Aliases: []string{"descriptions", "details"}, Kind: KindString},
		{Name: "status", Kind: KindString, Default: "Draft"},
		{Name: "priority", Kind: KindString, Default: "Medium"},
		{Name: FieldOwner, Aliases: []string{"owner", "assigned_to", "assignee"}, Kind: KindString},
	},
	LevelUserstory: {
		{Name: FieldExcelID, Aliases: []string{"id", "userstory_id", "excel_id"}, Kind: KindString},
		{Name: FieldParentID, Aliases: []string{"usecase_id", "use_case_id", "parent_usecase"}, Kind: KindString},
		{Name: "name", Aliases: []string{"userstory_name", "story_name", "story", "title"}, Kind: KindString},
		{Name: "description", Aliases: []string{"descriptions", "details"}, Kind: KindString},
		{Name: "acceptance_criteria", Aliases: []string{"acceptance", "criteria"}, Kind: KindString},
		{Name: "story_points", Aliases: []string{"points", "estimate"}, Kind: KindFloat},
		{Name: "status", Kind: KindString, Default: "Backlog"},
		{Name: "priority", Kind: KindString, Default: "Medium"},
		{Name: FieldOwner, Aliases: []string{"owner", "assigned_to", "assignee"}, Kind: KindString},
	},
	LevelTask: {
		{Name: FieldExcelID, Aliases: []string{"id", "task_id", "excel_id"}, Kind: KindString},
		{Name: FieldParentID, Aliases: []string{"userstory_id", "user_story_id", "story_id", "parent_story"}, Kind: KindString},
		{Name: "name", Aliases: []string{"task_name", "title"}, Kind: KindString},
		{Name: "description", Aliases: []string{"descriptions", "details"}, Kind: KindString},
		{Name: "status", Kind: KindString, Default: "To Do"},
		{Name: "priority", Kind: KindString, Default: "Medium"},
		{Name: "estimated_hours", Aliases: []string{"hours", "estimated_effort", "effort"}, Kind: KindFloat},
		{Name: "due_date", Aliases: []string{"deadline", "due"}, Kind: KindDate},
		{Name: FieldOwner, Aliases: []string{"owner", "assigned_to", "assignee", "responsible"}, Kind: KindString},
	},
	LevelSubtask: {
		{Name: FieldExcelID, Aliases: []string{"id", "subtask_id", "excel_id"}, Kind: KindString},
		{Name: FieldParentID, Aliases: []string{"task_id", "parent_task"}, Kind: KindString},
		{Name: "name", Aliases: []string{"subtask_name", "title"}, Kind: KindString},
		{Name: "description", Aliases: []string{"descriptions", "details"}, Kind: KindString},
		{Name: "status", Kind: KindString, Default: "To Do"},
		{Name: "estimated_hours", Aliases: []string{"hours", "effort"}, Kind: KindFloat},
		{Name: FieldOwner, Aliases: []string{"owner", "assigned_to", "assignee"}, Kind: KindString},
	},
}

// FieldSpecs returns the recognized columns for a level.
func FieldSpecs(level Level) []FieldSpec {
	return fieldSpecs[level]
}
