package services

import (
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
)

// ImportCompletedEvent is published on the process event bus after every
// import run, committed or rolled back.
type ImportCompletedEvent struct {
	Result *importer.Result
}
