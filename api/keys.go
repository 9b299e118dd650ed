package api

import (
	"net/url"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// Query keys shared by queries and the mutations that invalidate them.
var (
	KeyCourses       = codelearn.Key("courses")
	KeyLearningPaths = codelearn.Key("learning-paths")
	KeyProfile       = codelearn.Key("profile")
	KeyDashboard     = codelearn.Key("dashboard")
	KeyPlans         = codelearn.Key("plans")
	KeyPayments      = codelearn.Key("payments")
	KeySubscriptions = codelearn.Key("subscriptions")
	KeyCertificates  = codelearn.Key("certificates")

	KeyAdmin             = codelearn.Key("admin")
	KeyAdminUsers        = codelearn.Key("admin", "users")
	KeyAdminCourses      = codelearn.Key("admin", "courses")
	KeyAdminCertificates = codelearn.Key("admin", "certificates")
	KeyAdminDashboard    = codelearn.Key("admin", "dashboard")
)

// CourseFilter narrows the course list. Empty fields are not sent.
type CourseFilter struct {
	Language string
	Level    Level
	Search   string
}

// Values encodes the filter as query parameters.
func (f CourseFilter) Values() url.Values {
	v := url.Values{}
	if f.Language != "" {
		v.Set("language", f.Language)
	}
	if f.Level != "" {
		v.Set("level", string(f.Level))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

// CourseListKey addresses one filtered course list.
func CourseListKey(f CourseFilter) codelearn.QueryKey {
	return codelearn.Key("courses", "list", f.Values().Encode())
}

// CourseKey addresses a single course.
func CourseKey(id int) codelearn.QueryKey {
	return codelearn.Key("courses", id)
}

// CourseProgressKey addresses the user's progress on a course.
func CourseProgressKey(id int) codelearn.QueryKey {
	return codelearn.Key("courses", id, "progress")
}

// CourseModulesKey addresses the modules of a course.
func CourseModulesKey(id int) codelearn.QueryKey {
	return codelearn.Key("courses", id, "modules")
}

// LearningPathKey addresses a single learning path.
func LearningPathKey(id int) codelearn.QueryKey {
	return codelearn.Key("learning-paths", id)
}

// LearningPathCoursesKey addresses the courses of a learning path.
func LearningPathCoursesKey(id int) codelearn.QueryKey {
	return codelearn.Key("learning-paths", id, "courses")
}

// CertificateKey addresses a single certificate.
func CertificateKey(id int) codelearn.QueryKey {
	return codelearn.Key("certificates", id)
}

// VerificationKey addresses the verification of a certificate.
func VerificationKey(id int) codelearn.QueryKey {
	return codelearn.Key("certificates", id, "verify")
}

// PublicVerificationKey addresses the public verification of a certificate
// reference.
func PublicVerificationKey(certificateID string) codelearn.QueryKey {
	return codelearn.Key("certificates", "public", certificateID)
}
