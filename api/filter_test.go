package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterUsers(t *testing.T) {
	users := []AdminUser{
		{User: User{ID: 1, Username: "ada", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}},
		{User: User{ID: 2, Username: "grace", Email: "grace@navy.mil", FirstName: "Grace", LastName: "Hopper"}},
		{User: User{ID: 3, Username: "linus", Email: "linus@example.org", FirstName: "Linus", LastName: "Torvalds"}},
	}

	tests := []struct {
		term     string
		expected []int
	}{
		{"", []int{1, 2, 3}},
		{"   ", []int{1, 2, 3}},
		{"example", []int{1, 3}},
		{"HOPPER", []int{2}},
		{"lin", []int{3}},
		{"ada lovelace", nil},
		{"nobody", nil},
	}

	for _, tt := range tests {
		var ids []int
		for _, u := range FilterUsers(users, tt.term) {
			ids = append(ids, u.ID)
		}
		assert.Equal(t, tt.expected, ids, "term %q", tt.term)
	}
}

func TestFilterCourses(t *testing.T) {
	courses := []Course{
		{ID: 1, Title: "Go basics", Description: "Types and functions"},
		{ID: 2, Title: "Concurrency", Description: "Goroutines and channels in Go"},
		{ID: 3, Title: "Python", Description: "Scripting"},
	}

	assert.Len(t, FilterCourses(courses, "go"), 2)
	assert.Len(t, FilterCourses(courses, "SCRIPT"), 1)
	assert.Len(t, FilterCourses(courses, ""), 3)
	assert.Empty(t, FilterCourses(courses, "rust"))
}

func TestFilterCertificates(t *testing.T) {
	certs := []Certificate{
		{ID: 1, Title: "Go basics", CertificateID: "CL-1A2B3C4D"},
		{ID: 2, Title: "Concurrency", CertificateID: "CL-99887766"},
	}

	found := FilterCertificates(certs, "cl-1a2b")
	if assert.Len(t, found, 1) {
		assert.Equal(t, 1, found[0].ID)
	}
	assert.Len(t, FilterCertificates(certs, "concurrency"), 1)
	assert.Len(t, FilterCertificates(certs, "CL-"), 2)
}
