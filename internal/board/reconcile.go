package board

import "github.com/fastygo/taskboard/domain"

// Reconcile applies ev to s and returns the next state together with the repository
// writes the event commits. The input state is never modified.
func Reconcile(s State, ev Event) (State, []Call) {
	switch e := ev.(type) {
	case DragStart:
		return dragStart(s, e), nil
	case DragOver:
		return dragOver(s, e), nil
	case DragEnd:
		return dragEnd(s, e)
	case ClickLock:
		return clickLock(s, e)
	default:
		return s, nil
	}
}

func dragStart(s State, e DragStart) State {
	s.ActiveColumn, s.ActiveTask = nil, nil
	switch e.Active.Kind {
	case KindColumn:
		idx := s.ColumnIndex(domain.Status(e.Active.ID))
		if idx < 0 || s.Columns[idx].IsLock {
			return s
		}
		col := s.Columns[idx]
		s.ActiveColumn = &col
	case KindTask:
		idx := s.TaskIndex(e.Active.ID)
		if idx < 0 {
			return s
		}
		task := s.Tasks[idx].Clone()
		s.ActiveTask = &task
	}
	return s
}

func dragOver(s State, e DragOver) State {
	if e.Over == nil || e.Active.Kind != KindTask {
		return s
	}
	activeIdx := s.TaskIndex(e.Active.ID)
	if activeIdx < 0 {
		return s
	}

	switch e.Over.Kind {
	case KindColumn:
		status := domain.Status(e.Over.ID)
		if s.ColumnIndex(status) < 0 {
			return s
		}
		s.Tasks = withStatus(s.Tasks, activeIdx, status)
	case KindTask:
		overIdx := s.TaskIndex(e.Over.ID)
		if overIdx < 0 {
			return s
		}
		tasks := withStatus(s.Tasks, activeIdx, s.Tasks[overIdx].Status)
		s.Tasks = renumberTasks(move(tasks, activeIdx, overIdx))
	}
	return s
}

func dragEnd(s State, e DragEnd) (State, []Call) {
	s.ActiveColumn, s.ActiveTask = nil, nil
	if e.Over == nil {
		return s, nil
	}
	switch e.Active.Kind {
	case KindTask:
		return dropTask(s, e.Active.ID, *e.Over)
	case KindColumn:
		return dropColumn(s, domain.Status(e.Active.ID), *e.Over)
	}
	return s, nil
}

func dropTask(s State, id string, over Item) (State, []Call) {
	activeIdx := s.TaskIndex(id)
	if activeIdx < 0 {
		return s, nil
	}

	var (
		overIdx = -1
		status  domain.Status
	)
	switch over.Kind {
	case KindTask:
		if overIdx = s.TaskIndex(over.ID); overIdx >= 0 {
			status = s.Tasks[overIdx].Status
		}
	case KindColumn:
		status = domain.Status(over.ID)
		if s.ColumnIndex(status) >= 0 {
			overIdx = activeIdx
		}
	}
	if overIdx < 0 {
		return s, nil
	}

	tasks := withStatus(s.Tasks, activeIdx, status)
	s.Tasks = renumberTasks(move(tasks, activeIdx, overIdx))
	return s, []Call{SetTaskStatus{ID: id, Status: status, Index: overIdx}}
}

func dropColumn(s State, active domain.Status, over Item) (State, []Call) {
	target := domain.Status(over.ID)
	if over.Kind == KindTask {
		idx := s.TaskIndex(over.ID)
		if idx < 0 {
			return s, nil
		}
		target = s.Tasks[idx].Status
	}
	if active == target {
		return s, nil
	}

	activeIdx := s.ColumnIndex(active)
	overIdx := s.ColumnIndex(target)
	if activeIdx < 0 || overIdx < 0 {
		return s, nil
	}
	if s.Columns[activeIdx].IsLock || s.Columns[overIdx].IsLock {
		return s, nil
	}

	s.Columns = renumberColumns(move(s.Columns, activeIdx, overIdx))
	order := make([]domain.Status, len(s.Columns))
	for i, col := range s.Columns {
		order[i] = col.Status
	}
	return s, []Call{SetColumnOrder{Order: order}}
}

func clickLock(s State, e ClickLock) (State, []Call) {
	idx := s.ColumnIndex(e.Status)
	if idx < 0 {
		return s, nil
	}
	columns := append([]domain.Column(nil), s.Columns...)
	columns[idx].IsLock = !columns[idx].IsLock
	s.Columns = columns
	return s, []Call{ToggleColumnLock{Status: e.Status}}
}

func withStatus(tasks []domain.Task, idx int, status domain.Status) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	out[idx].Status = status
	return out
}

func renumberTasks(tasks []domain.Task) []domain.Task {
	for i := range tasks {
		tasks[i].Position = i
	}
	return tasks
}

func renumberColumns(columns []domain.Column) []domain.Column {
	for i := range columns {
		columns[i].Position = i
	}
	return columns
}
