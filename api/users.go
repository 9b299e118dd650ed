package api

import (
	"net/http"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// Login exchanges credentials for a token. Storing the token is up to the
// caller.
func (s *Service) Login() *codelearn.Mutation[Credentials, AuthResponse] {
	return mutation[Credentials, AuthResponse](s, call[Credentials]{
		method: http.MethodPost,
		path:   fixed[Credentials]("/users/login/"),
		body:   payload[Credentials],
	}, KeyProfile)
}

// Register creates an account and returns its token.
func (s *Service) Register() *codelearn.Mutation[Registration, AuthResponse] {
	return mutation[Registration, AuthResponse](s, call[Registration]{
		method:  http.MethodPost,
		path:    fixed[Registration]("/users/register/"),
		body:    payload[Registration],
		success: "Your account has been created.",
	}, KeyProfile)
}

// Logout revokes the current token on the server.
func (s *Service) Logout() *codelearn.Mutation[struct{}, StatusMessage] {
	return mutation[struct{}, StatusMessage](s, call[struct{}]{
		method: http.MethodPost,
		path:   fixed[struct{}]("/users/logout/"),
	}, KeyProfile)
}

// Profile returns the signed-in user.
func (s *Service) Profile() *codelearn.Query[User] {
	return query[User](s, KeyProfile, "/users/profile/", nil)
}

// UpdateProfile saves the editable profile fields.
func (s *Service) UpdateProfile() *codelearn.Mutation[ProfileUpdate, User] {
	return mutation[ProfileUpdate, User](s, call[ProfileUpdate]{
		method:  http.MethodPut,
		path:    fixed[ProfileUpdate]("/users/profile/"),
		body:    payload[ProfileUpdate],
		success: "Your profile has been updated.",
	}, KeyProfile)
}

// Progress lists the user's progress on every started course.
func (s *Service) Progress() *codelearn.Query[Page[CourseProgress]] {
	return query[Page[CourseProgress]](s, KeyDashboard, "/users/progress/", nil)
}
