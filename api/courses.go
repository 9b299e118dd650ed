package api

import (
	"fmt"
	"net/http"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// Courses lists published courses matching f.
func (s *Service) Courses(f CourseFilter) *codelearn.Query[Page[Course]] {
	return query[Page[Course]](s, CourseListKey(f), "/courses/courses/", &codelearn.RequestConfig{Query: f.Values()})
}

// Course returns one course with its modules.
func (s *Service) Course(id int) *codelearn.Query[Course] {
	return query[Course](s, CourseKey(id), fmt.Sprintf("/courses/courses/%d/", id), nil)
}

// CourseModules returns the modules of a course.
func (s *Service) CourseModules(id int) *codelearn.Query[Page[Module]] {
	return query[Page[Module]](s, CourseModulesKey(id), fmt.Sprintf("/courses/courses/%d/modules/", id), nil)
}

// CourseProgress returns the user's progress on a course. A course never
// started reports zero progress.
func (s *Service) CourseProgress(id int) *codelearn.Query[CourseProgress] {
	return query[CourseProgress](s, CourseProgressKey(id), fmt.Sprintf("/courses/courses/%d/progress/", id), nil)
}

// UpdateProgress records progress on a course and refreshes the course
// progress and the dashboard.
func (s *Service) UpdateProgress() *codelearn.Mutation[ProgressUpdate, CourseProgress] {
	return mutation[ProgressUpdate, CourseProgress](s, call[ProgressUpdate]{
		method: http.MethodPost,
		path: func(in ProgressUpdate) string {
			return fmt.Sprintf("/courses/courses/%d/update_progress/", in.CourseID)
		},
		body: payload[ProgressUpdate],
		invalidates: func(in ProgressUpdate) []codelearn.QueryKey {
			return []codelearn.QueryKey{CourseProgressKey(in.CourseID)}
		},
	}, KeyDashboard)
}

// LearningPaths lists learning paths.
func (s *Service) LearningPaths() *codelearn.Query[Page[LearningPath]] {
	return query[Page[LearningPath]](s, KeyLearningPaths, "/courses/learning-paths/", nil)
}

// LearningPath returns one learning path with its ordered courses.
func (s *Service) LearningPath(id int) *codelearn.Query[LearningPath] {
	return query[LearningPath](s, LearningPathKey(id), fmt.Sprintf("/courses/learning-paths/%d/", id), nil)
}

// LearningPathCourses returns the published courses of a learning path.
func (s *Service) LearningPathCourses(id int) *codelearn.Query[Page[Course]] {
	return query[Page[Course]](s, LearningPathCoursesKey(id), fmt.Sprintf("/courses/learning-paths/%d/courses/", id), nil)
}
