package progress

import (
	"math"
	"time"
)

// CourseOutline lists a course's lessons grouped by module, in display order.
type CourseOutline struct {
	CourseID uint
	Modules  []ModuleOutline
}

type ModuleOutline struct {
	ModuleID  uint
	LessonIDs []uint
}

// TotalLessons counts the lessons across all modules.
func (o CourseOutline) TotalLessons() int {
	n := 0
	for _, m := range o.Modules {
		n += len(m.LessonIDs)
	}
	return n
}

// Fact records that a lesson was completed.
type Fact struct {
	LessonID    uint
	CompletedAt time.Time
}

type ModuleResult struct {
	ModuleID  uint `json:"moduleId"`
	Total     int  `json:"totalLessons"`
	Done      int  `json:"completedLessons"`
	Completed bool `json:"completed"`
}

type Result struct {
	Progress         int            `json:"progress"`
	Completed        bool           `json:"completed"`
	CompletedLessons int            `json:"completedLessons"`
	TotalLessons     int            `json:"totalLessons"`
	Modules          []ModuleResult `json:"modules"`
}

// Recompute derives course and module progress from completion facts.
// Facts for lessons outside the outline are ignored and repeated facts
// count once.
func Recompute(outline CourseOutline, facts []Fact) Result {
	done := make(map[uint]struct{}, len(facts))
	for _, f := range facts {
		done[f.LessonID] = struct{}{}
	}

	res := Result{Modules: make([]ModuleResult, 0, len(outline.Modules))}
	for _, m := range outline.Modules {
		mr := ModuleResult{ModuleID: m.ModuleID, Total: len(m.LessonIDs)}
		for _, id := range m.LessonIDs {
			if _, ok := done[id]; ok {
				mr.Done++
			}
		}
		mr.Completed = mr.Total > 0 && mr.Done == mr.Total
		res.TotalLessons += mr.Total
		res.CompletedLessons += mr.Done
		res.Modules = append(res.Modules, mr)
	}

	res.Progress = percent(res.CompletedLessons, res.TotalLessons)
	res.Completed = res.Progress == 100
	return res
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
