package api

import (
	"fmt"
	"net/http"
	"net/url"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

type generateRequest struct {
	CourseID int `json:"course_id" validate:"gt=0"`
}

// Certificates lists the user's certificates.
func (s *Service) Certificates() *codelearn.Query[Page[Certificate]] {
	return query[Page[Certificate]](s, KeyCertificates, "/certificates/certificates/", nil)
}

// Certificate returns one certificate.
func (s *Service) Certificate(id int) *codelearn.Query[Certificate] {
	return query[Certificate](s, CertificateKey(id), fmt.Sprintf("/certificates/certificates/%d/", id), nil)
}

// GenerateCertificate issues the certificate of a completed course. Asking
// twice returns the existing certificate.
func (s *Service) GenerateCertificate() *codelearn.Mutation[int, Certificate] {
	return mutation[int, Certificate](s, call[int]{
		method: http.MethodPost,
		path:   fixed[int]("/certificates/certificates/generate/"),
		body: func(courseID int) any {
			return generateRequest{CourseID: courseID}
		},
		success: "Your certificate is ready.",
	}, KeyCertificates, KeyAdminCertificates)
}

// VerifyCertificate checks a certificate of the user. An invalid
// certificate is reported as a failed query carrying the server message.
func (s *Service) VerifyCertificate(id int) *codelearn.Query[Verification] {
	return query[Verification](s, VerificationKey(id), fmt.Sprintf("/certificates/certificates/%d/verify/", id), nil)
}

// PublicVerify checks a certificate by its public reference, such as
// CL-1A2B3C4D.
func (s *Service) PublicVerify(certificateID string) *codelearn.Query[Verification] {
	path := "/certificates/certificates/" + url.PathEscape(certificateID) + "/public-verify/"
	return query[Verification](s, PublicVerificationKey(certificateID), path, nil)
}
