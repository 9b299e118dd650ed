package api

import (
	"fmt"
	"net/http"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// AdminUsers lists every account.
func (s *Service) AdminUsers() *codelearn.Query[Page[AdminUser]] {
	return query[Page[AdminUser]](s, KeyAdminUsers, "/users/", nil)
}

// AdminCourses lists every course.
func (s *Service) AdminCourses() *codelearn.Query[Page[Course]] {
	return query[Page[Course]](s, KeyAdminCourses, "/courses/courses/", nil)
}

// AdminCertificates lists every certificate.
func (s *Service) AdminCertificates() *codelearn.Query[Page[Certificate]] {
	return query[Page[Certificate]](s, KeyAdminCertificates, "/certificates/", nil)
}

// AdminDashboard returns the platform totals.
func (s *Service) AdminDashboard() *codelearn.Query[Dashboard] {
	return query[Dashboard](s, KeyAdminDashboard, "/users/admin/dashboard/", nil)
}

func adminAction[Out any](s *Service, format, success string, invalidates codelearn.QueryKey) *codelearn.Mutation[int, Out] {
	return mutation[int, Out](s, call[int]{
		method:  http.MethodPost,
		path:    func(id int) string { return fmt.Sprintf(format, id) },
		success: success,
	}, invalidates)
}

// TogglePremium flips the premium status of a user.
func (s *Service) TogglePremium() *codelearn.Mutation[int, AdminUser] {
	return adminAction[AdminUser](s, "/users/%d/toggle_premium/",
		"The user's premium status has been changed.", KeyAdminUsers)
}

// ToggleAdmin flips the administrator status of a user.
func (s *Service) ToggleAdmin() *codelearn.Mutation[int, AdminUser] {
	return adminAction[AdminUser](s, "/users/%d/toggle_admin/",
		"The user's administrator status has been changed.", KeyAdminUsers)
}

// ValidateCertificate marks a certificate valid.
func (s *Service) ValidateCertificate() *codelearn.Mutation[int, Certificate] {
	return adminAction[Certificate](s, "/certificates/%d/validate/",
		"The certificate has been validated.", KeyAdminCertificates)
}

// InvalidateCertificate marks a certificate invalid.
func (s *Service) InvalidateCertificate() *codelearn.Mutation[int, Certificate] {
	return adminAction[Certificate](s, "/certificates/%d/invalidate/",
		"The certificate has been invalidated.", KeyAdminCertificates)
}
