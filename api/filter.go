package api

import "strings"

// FilterUsers keeps the users whose email, username, first or last name
// contains term, ignoring case. An empty term keeps everything.
func FilterUsers(users []AdminUser, term string) []AdminUser {
	return filter(users, term, func(u AdminUser) []string {
		return []string{u.Email, u.Username, u.FirstName, u.LastName}
	})
}

// FilterCourses keeps the courses whose title or description contains term.
func FilterCourses(courses []Course, term string) []Course {
	return filter(courses, term, func(c Course) []string {
		return []string{c.Title, c.Description}
	})
}

// FilterCertificates keeps the certificates whose title or reference
// contains term.
func FilterCertificates(certs []Certificate, term string) []Certificate {
	return filter(certs, term, func(c Certificate) []string {
		return []string{c.Title, c.CertificateID}
	})
}

func filter[T any](items []T, term string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return items
	}

	var out []T
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
